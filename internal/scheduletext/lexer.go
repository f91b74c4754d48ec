package scheduletext

import "github.com/alecthomas/participle/v2/lexer"

// scheduleLexer tokenizes schedule literals, grounded on the teacher's
// grammar/lexer.go stateful-lexer shape but with a much smaller token
// set: this surface has no comments, strings, or nested blocks, only
// identifiers, integers, and a handful of punctuation marks.
var scheduleLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Int", `[0-9]+`, nil},
		{"Punctuation", `[(),@]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
