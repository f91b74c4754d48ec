package scheduletext

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

var parser = participle.MustBuild[Program](
	participle.Lexer(scheduleLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses a schedule literal's source text into a Program of
// directives, ready for Apply.
func Parse(source string) (*Program, error) {
	prog, err := parser.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("scheduletext: %w", err)
	}
	return prog, nil
}
