package scheduletext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/pipeline"
	"loom/internal/scheduletext"
)

func TestParseAndApplySplitParallelComputeRoot(t *testing.T) {
	prog, err := scheduletext.Parse(`
		split x into (xo, xi) factor 8 tail_strategy guard_with_if
		parallel xo
		compute_root
	`)
	require.NoError(t, err)

	builder := pipeline.NewScheduleBuilder("x", "y")
	require.NoError(t, scheduletext.Apply(builder, prog, "f", 0))
	sched := builder.Finalize()

	assert.Equal(t, pipeline.Root(), sched.ComputeLevel)
	assert.Equal(t, pipeline.Root(), sched.StoreLevel)

	var sawSplit bool
	for _, s := range sched.Splits {
		if s.Kind == pipeline.SplitKindSplit && s.Old == "x" && s.Outer == "xo" && s.Inner == "xi" && s.Factor == 8 {
			sawSplit = true
			assert.Equal(t, pipeline.TailGuardWithIf, s.Tail)
		}
	}
	assert.True(t, sawSplit, "expected a split directive on x")

	var sawParallel bool
	for _, d := range sched.Dims {
		if d.Name == "xo" {
			sawParallel = d.Type.String() == "parallel"
		}
	}
	assert.True(t, sawParallel, "xo should be marked parallel")
}

func TestParseAndApplyComputeWithRecordsFusedPairOnSelf(t *testing.T) {
	prog, err := scheduletext.Parse(`compute_with(g, 0, x)`)
	require.NoError(t, err)

	builder := pipeline.NewScheduleBuilder("x", "y")
	require.NoError(t, scheduletext.Apply(builder, prog, "f", 1))
	sched := builder.Finalize()

	require.Len(t, sched.FusedPairs, 1)
	pair := sched.FusedPairs[0]
	assert.Equal(t, "g", pair.Func1)
	assert.Equal(t, 0, pair.Stage1)
	assert.Equal(t, "f", pair.Func2)
	assert.Equal(t, 1, pair.Stage2)
	assert.Equal(t, "x", pair.VarName)
}

func TestApplyRejectsUnknownTailStrategy(t *testing.T) {
	prog, err := scheduletext.Parse(`split x into (xo, xi) factor 4 tail_strategy bogus`)
	require.NoError(t, err)
	builder := pipeline.NewScheduleBuilder("x")
	err = scheduletext.Apply(builder, prog, "f", 0)
	assert.Error(t, err)
}

func TestParseComputeAtAndStoreAt(t *testing.T) {
	prog, err := scheduletext.Parse(`
		compute_at(g, 0, y)
		store_at(g, 0, y)
	`)
	require.NoError(t, err)
	builder := pipeline.NewScheduleBuilder("x", "y")
	require.NoError(t, scheduletext.Apply(builder, prog, "f", 0))
	sched := builder.Finalize()
	assert.Equal(t, pipeline.At("g", 0, "y"), sched.ComputeLevel)
	assert.Equal(t, pipeline.At("g", 0, "y"), sched.StoreLevel)
}
