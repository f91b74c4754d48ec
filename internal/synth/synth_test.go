package synth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/ir"
	"loom/internal/pipeline"
	"loom/internal/synth"
)

func TestBuildStageNestWrapsDimsInnermostFirst(t *testing.T) {
	sched := pipeline.NewScheduleBuilder("x", "y").ComputeRoot().Finalize()
	def := &pipeline.Definition{
		Values:   []ir.Expr{ir.NewInt(0)},
		Args:     []ir.Expr{ir.NewVar("x"), ir.NewVar("y")},
		Schedule: sched,
	}
	body := synth.BuildStageBody("f", def, 1)
	nest := synth.BuildStageNest(def, sched, &synth.BoundsEnv{}, body)

	printed := ir.Print(nest)
	// y (outermost, since Dims is innermost-first: x, y, __outermost)
	// must enclose x must enclose the provide.
	yIdx := strings.Index(printed, "for y")
	xIdx := strings.Index(printed, "for x")
	provideIdx := strings.Index(printed, "f(x, y)")
	require.True(t, yIdx >= 0 && xIdx >= 0 && provideIdx >= 0)
	assert.True(t, yIdx < xIdx, "y loop should enclose x loop:\n%s", printed)
	assert.True(t, xIdx < provideIdx, "x loop should enclose the provide:\n%s", printed)
}

func TestBuildStageNestAppliesSplitBinding(t *testing.T) {
	builder := pipeline.NewScheduleBuilder("x").ComputeRoot()
	builder.Split("x", "xo", "xi", 4, pipeline.TailRoundUp)
	sched := builder.Finalize()
	def := &pipeline.Definition{
		Values:   []ir.Expr{ir.NewVar("x")},
		Args:     []ir.Expr{ir.NewVar("x")},
		Schedule: sched,
	}
	body := synth.BuildStageBody("f", def, 1)
	nest := synth.BuildStageNest(def, sched, &synth.BoundsEnv{}, body)
	printed := ir.Print(nest)
	assert.Contains(t, printed, "for xo")
	assert.Contains(t, printed, "for xi")
	assert.Contains(t, printed, "let x =")
}

func TestInlineProducerSubstitutesCallSite(t *testing.T) {
	f := &pipeline.Definition{Values: []ir.Expr{ir.Add(ir.NewVar("x"), ir.NewInt(1))}, Args: []ir.Expr{ir.NewVar("x")}}
	consumer := &ir.Provide{
		Name:   "g",
		Values: []ir.Expr{&ir.Call{Kind: ir.CallProducer, Name: "f", Args: []ir.Expr{ir.NewVar("i")}}},
		Args:   []ir.Expr{ir.NewVar("i")},
	}
	got := synth.InlineProducer(consumer, "f", f)
	printed := ir.Print(got)
	assert.Contains(t, printed, "(i + 1)")
	assert.NotContains(t, printed, "f(")
}

func TestInjectAtLevelSplicesIntoMatchingLoop(t *testing.T) {
	inner := &ir.Provide{Name: "g", Args: []ir.Expr{ir.NewVar("x")}, Values: []ir.Expr{ir.NewInt(1)}}
	tree := &ir.For{Var: "y", Min: ir.NewInt(0), Extent: ir.NewInt(8), Body: &ir.For{
		Var: "x", Min: ir.NewInt(0), Extent: ir.NewInt(8), Body: inner,
	}}
	producerBody := &ir.Evaluate{Value: ir.NewVar("marker")}
	injected := synth.InjectAtLevel(tree, pipeline.At("g", 0, "x"), producerBody)
	printed := ir.Print(injected)
	assert.Contains(t, printed, "marker")
	xIdx := strings.Index(printed, "for x")
	markerIdx := strings.Index(printed, "marker")
	provideIdx := strings.Index(printed, "g(x)")
	assert.True(t, xIdx < markerIdx && markerIdx < provideIdx)
}

func TestStripRootAndOutermostCollapsesSentinelLoops(t *testing.T) {
	inner := &ir.Evaluate{Value: ir.NewInt(1)}
	outermost := &ir.For{Var: pipeline.OutermostSentinel, Min: ir.NewInt(0), Extent: ir.NewInt(1), Body: inner}
	tree := &ir.For{Var: pipeline.RootSentinel, Min: ir.NewInt(0), Extent: ir.NewInt(1), Body: outermost}
	got := synth.StripRootAndOutermost(tree)
	assert.Same(t, ir.Stmt(inner), got)
}

func TestStripRootAndOutermostSubstitutesSentinelMin(t *testing.T) {
	body := &ir.Evaluate{Value: ir.NewVar(pipeline.OutermostSentinel)}
	outermost := &ir.For{Var: pipeline.OutermostSentinel, Min: ir.NewInt(7), Extent: ir.NewInt(1), Body: body}
	got := synth.StripRootAndOutermost(outermost)
	ev, ok := got.(*ir.Evaluate)
	require.True(t, ok)
	imm, ok := ev.Value.(*ir.IntImm)
	require.True(t, ok)
	assert.Equal(t, int64(7), imm.Value)
}

func TestBuildExternRealizationOrdersMsanAnnotations(t *testing.T) {
	p := &pipeline.Producer{
		Name: "warp",
		Extern: &pipeline.ExternSpec{
			Symbol: "warp_extern",
			Args: []pipeline.ExternArg{
				{Kind: pipeline.ExternArgProducerInput, ProducerName: "input", BufferName: "input_buf"},
				{Kind: pipeline.ExternArgBoundBuffer, BufferName: "warp_buf"},
			},
		},
		Init: &pipeline.Definition{},
	}
	target := &pipeline.StaticTarget{Features: map[pipeline.Feature]bool{pipeline.FeatureMSAN: true}}
	got := synth.BuildExternRealization(p, target)
	printed := ir.Print(got)

	initIdx := strings.Index(printed, "halide_msan_annotate_memory_is_initialized")
	callIdx := strings.Index(printed, "warp_extern")
	assertIdx := strings.Index(printed, "ExternStageFailed")
	checkIdx := strings.Index(printed, "halide_msan_annotate_buffer_is_initialized")
	require.True(t, initIdx >= 0 && callIdx >= 0 && assertIdx >= 0 && checkIdx >= 0)
	assert.True(t, initIdx < callIdx, "output annotation must precede the call")
	assert.True(t, callIdx < checkIdx, "input annotation must follow the call")
	assert.Contains(t, printed, "warp.extern_result")
}
