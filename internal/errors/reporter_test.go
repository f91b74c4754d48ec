package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterFormatsErrorWithCodeAndLocation(t *testing.T) {
	reporter := NewErrorReporter("blur_pipeline")

	err := CyclicPipeline("blur_y")
	formatted := reporter.Format(err)

	assert.Contains(t, formatted, "error["+ErrorCyclicPipeline+"]")
	assert.Contains(t, formatted, "cycle reaching back to")
	assert.Contains(t, formatted, "blur_y")
	assert.Contains(t, formatted, "blur_pipeline")
}

func TestReporterFormatsWarning(t *testing.T) {
	reporter := NewErrorReporter("blur_pipeline")

	err := UnscheduledUpdateWarning("hist", 1)
	formatted := reporter.Format(err)

	assert.Contains(t, formatted, "warning["+WarningUnscheduledUpdate+"]")
	assert.Contains(t, formatted, "no explicit schedule")
}

func TestReporterIncludesSuggestionsAndHelp(t *testing.T) {
	reporter := NewErrorReporter("p")

	err := OutputNotRoot("output")
	formatted := reporter.Format(err)
	assert.Contains(t, formatted, "help")
	assert.Contains(t, formatted, "output.compute_root()")

	err = ExternInputInline("warp_table", "input")
	formatted = reporter.Format(err)
	assert.Contains(t, formatted, "help:")
}

func TestOutputNotRootError(t *testing.T) {
	err := OutputNotRoot("result")
	assert.Equal(t, ErrorOutputNotRoot, err.Code)
	assert.Contains(t, err.Message, "result")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "compute_root")
}

func TestDuplicateFusedPairError(t *testing.T) {
	err := DuplicateFusedPair("f", 0, "g", 0, "x")
	assert.Equal(t, ErrorDuplicateFusedPair, err.Code)
	assert.Contains(t, err.Message, "f.s0")
	assert.Contains(t, err.Message, "g.s0")
}

func TestIsWarningDistinguishesWarningCodes(t *testing.T) {
	assert.True(t, IsWarning(WarningUnscheduledUpdate))
	assert.False(t, IsWarning(ErrorCyclicPipeline))
}

func TestDescribeKnownAndUnknownCodes(t *testing.T) {
	assert.NotEmpty(t, Describe(ErrorFusedPairCycle))
	assert.Empty(t, Describe("S9999"))
}

func TestCompilerErrorSatisfiesErrorInterface(t *testing.T) {
	var err error = CyclicPipeline("f")
	assert.Contains(t, err.Error(), "S0001")
}
