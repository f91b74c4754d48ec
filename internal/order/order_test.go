package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/ir"
	"loom/internal/order"
	"loom/internal/pipeline"
)

func leaf(name string) *pipeline.Producer {
	return &pipeline.Producer{
		Name: name,
		Args: []string{"x"},
		Init: &pipeline.Definition{
			Values:   []ir.Expr{ir.NewInt(0)},
			Args:     []ir.Expr{ir.NewVar("x")},
			Schedule: pipeline.NewScheduleBuilder("x").Finalize(),
		},
	}
}

func caller(name string, callee string) *pipeline.Producer {
	return &pipeline.Producer{
		Name: name,
		Args: []string{"x"},
		Init: &pipeline.Definition{
			Values:   []ir.Expr{&ir.Call{Kind: ir.CallProducer, Name: callee, Args: []ir.Expr{ir.NewVar("x")}}},
			Args:     []ir.Expr{ir.NewVar("x")},
			Schedule: pipeline.NewScheduleBuilder("x").Finalize(),
		},
	}
}

func TestComputeLinearChain(t *testing.T) {
	env := pipeline.NewEnvironment(leaf("f"), caller("g", "f"))
	res, err := order.Compute(env, []string{"g"})
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "g"}, res.Order)
	assert.Empty(t, res.Pairs)
}

func TestComputeRejectsCyclicPipeline(t *testing.T) {
	a := caller("a", "b")
	b := caller("b", "a")
	env := pipeline.NewEnvironment(a, b)
	_, err := order.Compute(env, []string{"a"})
	require.Error(t, err)
}

func TestComputeFusedPairOrdersChildBeforeParent(t *testing.T) {
	f := leaf("f")
	g := leaf("g")
	// g fuses into f's x loop: FusedPair{Func1: f, Func2: g}, so g must
	// be realized no later than f. Neither calls the other directly.
	g.Init.Schedule = pipeline.NewScheduleBuilder("x").
		ComputeWith("g", 0, "f", 0, "x").
		Finalize()
	env := pipeline.NewEnvironment(f, g)
	res, err := order.Compute(env, []string{"f", "g"})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, 2, len(res.Groups[res.GroupOf["f"]].Members))
	gi, fi := indexOf(res.Order, "g"), indexOf(res.Order, "f")
	assert.True(t, gi < fi, "expected g before f, got %v", res.Order)
}

func TestComputeDetectsDuplicateFusedPair(t *testing.T) {
	f := leaf("f")
	g := caller("g", "f")
	builder := pipeline.NewScheduleBuilder("x").
		ComputeWith("g", 0, "f", 0, "x")
	g.Init.Schedule = builder.ComputeWith("g", 0, "f", 0, "x").Finalize()
	env := pipeline.NewEnvironment(f, g)
	_, err := order.Compute(env, []string{"f"})
	require.Error(t, err)
	var dup *order.DuplicateFusedPairError
	require.ErrorAs(t, err, &dup)
}

func TestComputeRejectsFuseDependencyCycle(t *testing.T) {
	f := leaf("f")
	g := caller("g", "f")
	// g already calls f directly; fusing them together violates
	// FuseDependencyCycle since a real call dependency already exists.
	g.Init.Schedule = pipeline.NewScheduleBuilder("x").
		ComputeWith("g", 0, "f", 0, "x").
		Finalize()
	env := pipeline.NewEnvironment(f, g)
	_, err := order.Compute(env, []string{"g"})
	require.Error(t, err)
	var dep *order.FuseDependencyCycleError
	require.ErrorAs(t, err, &dep)
}

func TestComputeDiscardsFusedPairWithAbsentTarget(t *testing.T) {
	g := caller("g", "nonexistent")
	g.Init.Schedule = pipeline.NewScheduleBuilder("x").
		ComputeWith("g", 0, "missing", 0, "x").
		Finalize()
	env := pipeline.NewEnvironment(g)
	res, err := order.Compute(env, []string{"g"})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
