package callgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/callgraph"
	"loom/internal/ir"
	"loom/internal/pipeline"
)

func producerCall(name string, args ...ir.Expr) *ir.Call {
	return &ir.Call{Kind: ir.CallProducer, Name: name, Args: args}
}

func simpleProducer(name string, calls ...string) *pipeline.Producer {
	var values []ir.Expr
	for _, c := range calls {
		values = append(values, producerCall(c, ir.NewVar("x")))
	}
	if len(values) == 0 {
		values = []ir.Expr{ir.NewInt(0)}
	}
	return &pipeline.Producer{
		Name: name,
		Args: []string{"x"},
		Init: &pipeline.Definition{Values: values, Args: []ir.Expr{ir.NewVar("x")}},
	}
}

func TestDirectCallsDeduplicatesAndPreservesOrder(t *testing.T) {
	p := simpleProducer("g", "f", "f", "h")
	assert.Equal(t, []string{"f", "h"}, callgraph.DirectCalls(p))
}

func TestDirectCallsWalksUpdatesAndReductions(t *testing.T) {
	p := simpleProducer("g")
	p.Updates = []*pipeline.Definition{{
		Values: []ir.Expr{producerCall("k", ir.NewVar("r"))},
		Args:   []ir.Expr{ir.NewVar("r")},
		Reduction: &pipeline.ReductionDomain{
			Vars:       []pipeline.ReductionVar{{Name: "r", Min: ir.NewInt(0), Extent: producerCall("bound")}},
			Predicates: []ir.Expr{producerCall("guard")},
		},
	}}
	got := callgraph.DirectCalls(p)
	assert.ElementsMatch(t, []string{"k", "bound", "guard"}, got)
}

func TestTransitiveCallsFollowsChain(t *testing.T) {
	env := pipeline.NewEnvironment(
		simpleProducer("a", "b"),
		simpleProducer("b", "c"),
		simpleProducer("c"),
	)
	got, err := callgraph.TransitiveCalls(env, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestTransitiveCallsSelfLoopPermitted(t *testing.T) {
	f := simpleProducer("f")
	f.Updates = []*pipeline.Definition{{Values: []ir.Expr{producerCall("f", ir.NewVar("x"))}, Args: []ir.Expr{ir.NewVar("x")}}}
	env := pipeline.NewEnvironment(f)
	got, err := callgraph.TransitiveCalls(env, "f")
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, got)
}

func TestTransitiveCallsDetectsCycle(t *testing.T) {
	env := pipeline.NewEnvironment(
		simpleProducer("a", "b"),
		simpleProducer("b", "a"),
	)
	_, err := callgraph.TransitiveCalls(env, "a")
	require.Error(t, err)
	var cyc *callgraph.CyclicPipelineError
	require.ErrorAs(t, err, &cyc)
}
