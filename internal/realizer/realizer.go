// Package realizer is the top-level entry point (§6): it wires
// callgraph, order, validate, and synth together into the single
// Realize call a front end makes once a pipeline's producers and their
// schedules are finalized.
package realizer

import (
	"github.com/segmentio/ksuid"

	cerrors "loom/internal/errors"
	"loom/internal/ir"
	"loom/internal/order"
	"loom/internal/pipeline"
	"loom/internal/synth"
	"loom/internal/validate"
)

// Context is a per-compilation handle: an identifier for correlating
// diagnostics and log lines across one Realize call, plus a counter for
// any fresh names synthesis needs to invent (Design Notes, "Global
// mutable state scoped to a compilation" — nothing here is package-level).
type Context struct {
	ID       string
	counter  int
	Reporter *cerrors.ErrorReporter
}

// NewContext stamps a fresh per-compilation context with a ksuid so
// concurrent Realize calls never share mutable state (§5 concurrency).
func NewContext(pipelineName string) *Context {
	return &Context{ID: ksuid.New().String(), Reporter: cerrors.NewErrorReporter(pipelineName)}
}

// FreshName returns a new name derived from base, unique within this
// compilation. Realize and the synth package do not call it: every
// variable they emit is named after a producer, dim, or buffer.
func (c *Context) FreshName(base string) string {
	c.counter++
	return base + "$" + itoa(c.counter)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// Result is the output of a successful Realize call: the synthesized
// statement tree and any non-fatal warnings collected along the way.
type Result struct {
	Stmt     ir.Stmt
	Warnings []cerrors.CompilerError
	Order    []string
}

// Realize runs the full realization pipeline against env for the given
// required outputs and target: compute realization order and fuse
// groups (§4.3), validate schedule legality (§4.4), then synthesize and
// inject every producer's loop nest (§4.5), finishing with the outer
// driver's cleanup pass (§4.6).
func Realize(ctx *Context, env *pipeline.Environment, outputs []string, target pipeline.Target) (*Result, error) {
	res, err := order.Compute(env, outputs)
	if err != nil {
		return nil, err
	}

	warnings, err := validate.Validate(env, res, outputs, target)
	if err != nil {
		return nil, err
	}

	tree := buildTree(env, res, outputs, target)
	tree = synth.InlinePureSingletons(tree, env, res)
	tree = synth.StripRootAndOutermost(tree)

	return &Result{Stmt: tree, Warnings: warnings.Items, Order: res.Order}, nil
}

// buildTree assembles every producer's realization and injects it at
// its declared compute/store site, processing the realization order
// back-to-front so each producer's consumers already exist in the tree
// by the time it is spliced in (§4.5.3, §4.5.4).
func buildTree(env *pipeline.Environment, res *order.Result, outputs []string, target pipeline.Target) ir.Stmt {
	var tree ir.Stmt = &ir.For{
		Var: pipeline.RootSentinel, Min: ir.NewInt(0), Extent: ir.NewInt(1),
		Body: outputsBlock(outputs),
	}

	emitted := map[int]bool{}
	for i := len(res.Order) - 1; i >= 0; i-- {
		name := res.Order[i]
		p := env.Lookup(name)
		if p == nil {
			continue
		}
		groupID := res.GroupOf[name]
		if len(res.Groups[groupID].Members) > 1 {
			if emitted[groupID] {
				continue
			}
			emitted[groupID] = true
			tree = placeRealization(tree, env, res.Groups[groupID].Members[0], synth.BuildFusedGroupRealization(env, res.Groups[groupID]), env.Lookup(res.Groups[groupID].Members[0]))
			continue
		}

		if p.Init.Schedule != nil && p.Init.Schedule.ComputeLevel.Kind == pipeline.LevelInline {
			continue // handled by InlinePureSingletons / per-call-site inlining
		}

		var realization ir.Stmt
		if p.IsExtern() {
			realization = synth.BuildExternRealization(p, target)
		} else {
			realization = synth.BuildProducerRealization(p, &synth.BoundsEnv{})
		}
		tree = placeRealization(tree, env, name, realization, p)
	}

	return tree
}

func placeRealization(tree ir.Stmt, env *pipeline.Environment, name string, realization ir.Stmt, p *pipeline.Producer) ir.Stmt {
	sched := p.Init.Schedule
	if sched == nil {
		return ir.NewBlock(realization, tree)
	}
	bounds := allocationBounds(p)
	if sched.ComputeLevel.Kind == pipeline.LevelRoot {
		wrapped := ir.Stmt(&ir.Realize{Name: name, Bounds: bounds, Body: tree})
		return ir.NewBlock(realization, wrapped)
	}
	tree = synth.InjectAtLevel(tree, sched.ComputeLevel, realization)
	tree = synth.WrapRealizeAtLevel(tree, sched.StoreLevel, name, bounds)
	return tree
}

func allocationBounds(p *pipeline.Producer) []ir.RealizeBound {
	bounds := make([]ir.RealizeBound, 0, len(p.Args))
	for _, arg := range p.Args {
		bounds = append(bounds, ir.RealizeBound{Arg: arg, Min: ir.NewVar(arg + ".min"), Extent: ir.NewVar(arg + ".extent")})
	}
	return bounds
}

func outputsBlock(outputs []string) ir.Stmt {
	stmts := make([]ir.Stmt, len(outputs))
	for i, name := range outputs {
		stmts[i] = &ir.ProducerConsumer{Name: name, IsProducer: false, Body: ir.NewBlock()}
	}
	return ir.NewBlock(stmts...)
}
