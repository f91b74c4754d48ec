// Package callgraph implements §4.2: direct and transitive callee
// extraction over a producer environment, via explicit-color DFS rather
// than the source's virtual-dispatch call-graph walk (§9 "Cyclic and
// back-reference graphs": node arenas keyed by name, adjacency as sets,
// explicit DFS with white/grey/black coloring).
package callgraph

import (
	"fmt"

	"loom/internal/ir"
	"loom/internal/pipeline"
)

// CyclicPipelineError is the user error raised when the direct-call graph
// (ignoring self-loops on update stages) contains a cycle.
type CyclicPipelineError struct {
	Producer string
}

func (e *CyclicPipelineError) Error() string {
	return fmt.Sprintf("CyclicPipeline: pipeline has a cycle reaching back to %q; "+
		"perhaps this pipeline has a loop?", e.Producer)
}

// DirectCalls returns, in first-appearance order, every producer name
// that appears as a producer-reference call anywhere in p's definitions:
// initial, updates, specialization bodies, and reduction-domain bounds
// and predicates (§4.2).
func DirectCalls(p *pipeline.Producer) []string {
	seen := map[string]bool{}
	var order []string
	record := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	var walkExpr func(ir.Expr)
	walkExpr = func(e ir.Expr) {
		if e == nil {
			return
		}
		switch x := e.(type) {
		case *ir.Call:
			if x.Kind == ir.CallProducer {
				record(x.Name)
			}
			for _, a := range x.Args {
				walkExpr(a)
			}
		case *ir.BinaryExpr:
			walkExpr(x.A)
			walkExpr(x.B)
		case *ir.Not:
			walkExpr(x.A)
		case *ir.Select:
			walkExpr(x.Cond)
			walkExpr(x.T)
			walkExpr(x.F)
		case *ir.Likely:
			walkExpr(x.A)
		}
	}
	var walkDef func(*pipeline.Definition)
	walkDef = func(d *pipeline.Definition) {
		if d == nil {
			return
		}
		for _, v := range d.Values {
			walkExpr(v)
		}
		for _, a := range d.Args {
			walkExpr(a)
		}
		if d.Reduction != nil {
			for _, rv := range d.Reduction.Vars {
				walkExpr(rv.Min)
				walkExpr(rv.Extent)
			}
			for _, pred := range d.Reduction.Predicates {
				walkExpr(pred)
			}
		}
		for _, spec := range d.Specializations {
			walkExpr(spec.Condition)
			walkDef(spec.Body)
		}
	}
	walkDef(p.Init)
	for _, u := range p.Updates {
		walkDef(u)
	}
	return order
}

type color int

const (
	white color = iota
	grey
	black
)

// TransitiveCalls returns the reflexive transitive closure of DirectCalls
// starting at p, in the environment env, memoized per call. It fails with
// *CyclicPipelineError if a back-edge (grey-on-grey) is encountered that
// is not a self-loop on an update stage — but TransitiveCalls itself has
// no notion of "update stage"; the self-loop exemption only matters for
// realization ordering (§4.3), which calls this with that caveat already
// accounted for via direct-call adjacency. Here, a cycle is a cycle.
func TransitiveCalls(env *pipeline.Environment, start string) ([]string, error) {
	colors := map[string]color{}
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		colors[name] = grey
		p := env.Lookup(name)
		if p == nil {
			colors[name] = black
			return nil
		}
		for _, callee := range DirectCalls(p) {
			if callee == name {
				continue // self-loop, always permitted here
			}
			switch colors[callee] {
			case white:
				if err := visit(callee); err != nil {
					return err
				}
			case grey:
				return &CyclicPipelineError{Producer: callee}
			}
		}
		colors[name] = black
		order = append(order, name)
		return nil
	}
	if err := visit(start); err != nil {
		return nil, err
	}
	return order, nil
}

// TransitiveCallSet is TransitiveCalls collected into a set, for the
// reachability checks the fused-pair validator needs (§4.3 step 2: "for
// distinct producers, reject ... if either is transitively in the
// other's call set").
func TransitiveCallSet(env *pipeline.Environment, start string) (map[string]bool, error) {
	names, err := TransitiveCalls(env, start)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}
