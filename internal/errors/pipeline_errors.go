package errors

import "fmt"

// PipelineErrorBuilder provides a fluent interface for constructing
// CompilerErrors, mirrored on the original semantic-error builder but
// addressed by Location (producer/stage) rather than source position.
type PipelineErrorBuilder struct {
	err CompilerError
}

// NewPipelineError creates a new error builder at the given location.
func NewPipelineError(code, message string, at Location) *PipelineErrorBuilder {
	return &PipelineErrorBuilder{err: CompilerError{Level: Error, Code: code, Message: message, At: at}}
}

// NewPipelineWarning creates a new warning builder at the given location.
func NewPipelineWarning(code, message string, at Location) *PipelineErrorBuilder {
	return &PipelineErrorBuilder{err: CompilerError{Level: Warning, Code: code, Message: message, At: at}}
}

func (b *PipelineErrorBuilder) WithSuggestion(message string) *PipelineErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *PipelineErrorBuilder) WithNote(note string) *PipelineErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *PipelineErrorBuilder) WithHelp(help string) *PipelineErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *PipelineErrorBuilder) Build() CompilerError { return b.err }

// Constructors for every user error named in the error taxonomy (§7).
// Each returns the built CompilerError itself; callers tell the kinds
// apart by its Code, and the same value is what ErrorReporter formats.

func CyclicPipeline(producer string) CompilerError {
	return NewPipelineError(ErrorCyclicPipeline,
		fmt.Sprintf("pipeline has a cycle reaching back to %q", producer),
		Location{Producer: producer}).
		WithHelp("producers may only call producers realized earlier, except a stage may call its own prior iteration").
		Build()
}

func FuseDependencyCycle(func1, func2 string) CompilerError {
	return NewPipelineError(ErrorFuseDependencyCycle,
		fmt.Sprintf("%q and %q cannot be fused: one already calls the other", func1, func2),
		Location{Producer: func2}).
		WithSuggestion("remove the compute_with request, or break the direct call dependency first").
		Build()
}

func FusedPairCycle(producer string) CompilerError {
	return NewPipelineError(ErrorFusedPairCycle,
		fmt.Sprintf("compute_with requests form a cycle reaching back to %q", producer),
		Location{Producer: producer}).
		Build()
}

func NonContiguousFuseGroup(members []string) CompilerError {
	return NewPipelineError(ErrorNonContiguousFuseGroup,
		fmt.Sprintf("fused group %v is not realized contiguously", members),
		Location{Producer: members[0]}).
		WithNote("another producer's realization falls between two fused members").
		Build()
}

func DuplicateFusedPair(func1 string, stage1 int, func2 string, stage2 int, varName string) CompilerError {
	return NewPipelineError(ErrorDuplicateFusedPair,
		fmt.Sprintf("fused pair (%s.s%d, %s.s%d, %s) is declared more than once", func1, stage1, func2, stage2, varName),
		Location{Producer: func2, Stage: stage2}).
		Build()
}

func InvalidFuseMember(member, reason string) CompilerError {
	return NewPipelineError(ErrorInvalidFuseMember,
		fmt.Sprintf("%q cannot be a member of a fused group: %s", member, reason),
		Location{Producer: member}).
		Build()
}

func MismatchedFusedDims(a, b, dim string) CompilerError {
	return NewPipelineError(ErrorMismatchedFusedDims,
		fmt.Sprintf("%q and %q disagree on the type or device of shared dim %q", a, b, dim),
		Location{Producer: a, Dim: dim}).
		WithSuggestion("give the fused members matching loop types and devices on the shared dims").
		Build()
}

func UnscheduledUpdateWarning(producer string, stage int) CompilerError {
	return NewPipelineWarning(WarningUnscheduledUpdate,
		fmt.Sprintf("update(%d) of %q has no explicit schedule; reusing its initial definition's", stage-1, producer),
		Location{Producer: producer, Stage: stage}).
		WithSuggestion("schedule the update explicitly if it should differ from the initial definition").
		Build()
}

func IllegalSite(producer string, stage int, site string) CompilerError {
	return NewPipelineError(ErrorIllegalSite,
		fmt.Sprintf("%s is not reachable from any of %q's callers' loop nests", site, producer),
		Location{Producer: producer, Stage: stage}).
		WithHelp("a compute or store site must name a loop that encloses every call site of this producer").
		Build()
}

func StoreOutsideCompute(producer string) CompilerError {
	return NewPipelineError(ErrorStoreOutsideCompute,
		fmt.Sprintf("%q's store level is nested inside its compute level", producer),
		Location{Producer: producer}).
		WithHelp("store_at must name a loop at or outside compute_at").
		Build()
}

func RaceBetweenStoreAndCompute(a, b string) CompilerError {
	return NewPipelineError(ErrorRaceBetweenStoreAndCompute,
		fmt.Sprintf("%q and %q may race on shared storage at their compute sites", a, b),
		Location{Producer: a}).
		Build()
}

func OutputNotRoot(producer string) CompilerError {
	return NewPipelineError(ErrorOutputNotRoot,
		fmt.Sprintf("pipeline output %q must be computed at root", producer),
		Location{Producer: producer}).
		WithSuggestion(fmt.Sprintf("%s.compute_root()", producer)).
		Build()
}

func InlineWithSpecialization(producer string, stage int) CompilerError {
	return NewPipelineError(ErrorInlineWithSpecialization,
		fmt.Sprintf("%q is inline but declares a specialization", producer),
		Location{Producer: producer, Stage: stage}).
		WithHelp("an inline definition has no call site to wrap in if/else; schedule it compute_root or compute_at first").
		Build()
}

func UnsupportedDevice(producer, dim, api string) CompilerError {
	return NewPipelineError(ErrorUnsupportedDevice,
		fmt.Sprintf("%q requests device API %q on dim %q, which the target does not support", producer, api, dim),
		Location{Producer: producer, Dim: dim}).
		Build()
}

func ExternInputInline(producer, input string) CompilerError {
	return NewPipelineError(ErrorExternInputInline,
		fmt.Sprintf("extern stage %q cannot take inline input %q", producer, input),
		Location{Producer: input}).
		WithSuggestion(fmt.Sprintf("%s.compute_root()", input)).
		WithHelp("an external routine can only be handed a materialized buffer").
		Build()
}

func BadSplitFactor(producer string, stage int, dim string, factor int64) CompilerError {
	return NewPipelineError(ErrorBadSplitFactor,
		fmt.Sprintf("split factor %d for dim %q of %q must be positive", factor, dim, producer),
		Location{Producer: producer, Stage: stage, Dim: dim}).
		Build()
}

func InvalidTailStrategyForUpdate(producer string, stage int, strategy string) CompilerError {
	return NewPipelineError(ErrorInvalidTailStrategyForUpdate,
		fmt.Sprintf("tail strategy %q is not valid on update(%d) of %q", strategy, stage-1, producer),
		Location{Producer: producer, Stage: stage}).
		WithHelp("ShiftInwards and RoundUp change which input iterations are read; only GuardWithIf is safe on an update").
		Build()
}
