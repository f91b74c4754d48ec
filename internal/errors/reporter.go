package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a diagnostic.
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// Location pins a diagnostic to a producer and stage in the pipeline
// being realized — there is no source span, since front-end expression
// construction is out of scope (§1); this is the addressable unit the
// realizer's components report against.
type Location struct {
	Producer string
	Stage    int
	Dim      string // optional, set when the diagnostic names a specific dim
}

func (l Location) String() string {
	s := l.Producer
	if l.Stage > 0 {
		s += fmt.Sprintf(".update(%d)", l.Stage-1)
	}
	if l.Dim != "" {
		s += "." + l.Dim
	}
	return s
}

// CompilerError is a structured diagnostic with suggestions and context,
// the realizer's equivalent of a user-facing compile error.
type CompilerError struct {
	Level       ErrorLevel
	Code        string
	Message     string
	At          Location
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

func (e CompilerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s[%s]: %s (at %s)", e.Level, e.Code, e.Message, e.At)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Level, e.Message, e.At)
}

// Suggestion is a suggested fix attached to a CompilerError.
type Suggestion struct {
	Message     string
	Replacement string
}

// ErrorReporter formats CompilerErrors for terminal display, grouped by
// compilation context (one reporter per Realize call; see internal/realizer).
type ErrorReporter struct {
	pipelineName string
}

// NewErrorReporter creates a reporter labeling diagnostics with the
// pipeline name being realized.
func NewErrorReporter(pipelineName string) *ErrorReporter {
	return &ErrorReporter{pipelineName: pipelineName}
}

// Format renders one CompilerError in the banner style used throughout
// the CLI: a colored level/code header, a location line, and any
// suggestions, notes, and help text.
func (er *ErrorReporter) Format(err CompilerError) string {
	var result strings.Builder

	levelColor := er.levelColor(err.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		result.WriteString(fmt.Sprintf("%s[%s]: %s\n",
			levelColor(string(err.Level)), err.Code, bold(err.Message)))
	} else {
		result.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(err.Level)), bold(err.Message)))
	}

	result.WriteString(fmt.Sprintf("  %s %s :: %s\n", dim("-->"), er.pipelineName, err.At))

	if len(err.Suggestions) > 0 {
		helpColor := color.New(color.FgCyan).SprintFunc()
		for i, s := range err.Suggestions {
			if i == 0 {
				result.WriteString(fmt.Sprintf("  %s %s: %s\n", helpColor("help"), helpColor("try"), s.Message))
			} else {
				result.WriteString(fmt.Sprintf("       %s\n", s.Message))
			}
			if s.Replacement != "" {
				result.WriteString(fmt.Sprintf("       %s\n", helpColor(s.Replacement)))
			}
		}
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		result.WriteString(fmt.Sprintf("  %s %s\n", noteColor("note:"), note))
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		result.WriteString(fmt.Sprintf("  %s %s\n", helpColor("help:"), err.HelpText))
	}

	if d := Describe(err.Code); d != "" {
		result.WriteString(fmt.Sprintf("  %s %s\n", dim("="), dim(d)))
	}

	return result.String()
}

func (er *ErrorReporter) levelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
