// Package synth implements §4.5: per-stage loop-nest synthesis,
// producer/extern production, injection into the consumer's statement
// tree, fused-group injection, and the outer driver pass.
package synth

import (
	"loom/internal/ir"
	"loom/internal/pipeline"
)

// BoundsEnv resolves the (min, extent) a dim should iterate over when no
// more specific source (a ReductionVar or BoundsHint) names it. The
// default implementation hands back symbolic "<dim>.min"/"<dim>.extent"
// variables — placeholders for the bounds a separate inference pass
// would otherwise solve for; full bounds inference is out of scope
// (spec.md §1 Non-goals), so loop extents here are named, not computed.
type BoundsEnv struct {
	Overrides map[string][2]ir.Expr // dim name -> [min, extent]
}

func (b *BoundsEnv) resolve(name string) (min, extent ir.Expr) {
	if b != nil && b.Overrides != nil {
		if mx, ok := b.Overrides[name]; ok {
			return mx[0], mx[1]
		}
	}
	return ir.NewVar(name + ".min"), ir.NewVar(name + ".extent")
}

// BuildStageNest constructs the full loop nest for one stage of a
// producer, wrapping innerBody (the stage's compute step, typically a
// Provide) in: split/fuse/rename var bindings (§4.5.1 step 3), the
// dim's For loops from innermost to outermost (step 4, respecting
// Dims' innermost-first order and each dim's declared LoopType/Device),
// reduction-domain predicates (step on reduction stages), and
// specializations as a chain of if/else (step "Specializations").
func BuildStageNest(def *pipeline.Definition, sched *pipeline.StageSchedule, bounds *BoundsEnv, innerBody ir.Stmt) ir.Stmt {
	body := innerBody

	if def.Reduction != nil {
		for i := len(def.Reduction.Predicates) - 1; i >= 0; i-- {
			body = &ir.IfThenElse{Cond: ir.MakeLikely(def.Reduction.Predicates[i]), Then: body}
		}
	}

	reductionBounds := map[string][2]ir.Expr{}
	if def.Reduction != nil {
		for _, rv := range def.Reduction.Vars {
			reductionBounds[rv.Name] = [2]ir.Expr{rv.Min, rv.Extent}
		}
	}
	hintExtent := map[string]ir.Expr{}
	for _, h := range sched.BoundsHints {
		if h.Extent != nil {
			hintExtent[h.Name] = h.Extent
		}
	}

	for _, dim := range sched.Dims {
		min, extent := dimBounds(dim.Name, reductionBounds, hintExtent, bounds)
		body = wrapSplitBindings(sched, dim.Name, body)
		body = &ir.For{
			Var:      dim.Name,
			Min:      min,
			Extent:   extent,
			LoopType: dim.Type,
			Device:   string(dim.Device),
			Body:     body,
		}
	}

	for i := len(def.Specializations) - 1; i >= 0; i-- {
		spec := def.Specializations[i]
		specBody := BuildStageNest(spec.Body, sched, bounds, innerBody)
		body = &ir.IfThenElse{Cond: spec.Condition, Then: specBody, Else: body}
	}

	return body
}

func dimBounds(name string, reductionBounds map[string][2]ir.Expr, hintExtent map[string]ir.Expr, bounds *BoundsEnv) (min, extent ir.Expr) {
	if name == pipeline.OutermostSentinel {
		return ir.NewInt(0), ir.NewInt(1)
	}
	if mx, ok := reductionBounds[name]; ok {
		return mx[0], mx[1]
	}
	min, extent = bounds.resolve(name)
	if e, ok := hintExtent[name]; ok {
		extent = e
	}
	return min, extent
}

// wrapSplitBindings emits the let-binding(s) a split/fuse/rename
// directive targeting dim requires, so that references to the
// directive's source var (Old, or Inner/Outer for a fuse) resolve
// in terms of the vars actually looping (§4.5.1 step 3). A split's
// binding is placed inside the innermost of its two output loops. Tail
// strategy GuardWithIf additionally wraps the body, inside that binding,
// in a bounds check; ShiftInwards clamps the outer start to Old's extent
// minus the factor so the last tile ends at that extent; RoundUp and
// Auto apply no adjustment.
func wrapSplitBindings(sched *pipeline.StageSchedule, dim string, body ir.Stmt) ir.Stmt {
	for i := len(sched.Splits) - 1; i >= 0; i-- {
		split := sched.Splits[i]
		switch split.Kind {
		case pipeline.SplitKindSplit:
			first := split.Inner
			for _, d := range sched.Dims {
				if d.Name == split.Inner || d.Name == split.Outer {
					first = d.Name
					break
				}
			}
			if first != dim {
				continue
			}
			base := ir.Expr(ir.Mul(ir.NewVar(split.Outer), ir.NewInt(split.Factor)))
			if split.Tail == pipeline.TailShiftInwards {
				base = ir.MinE(base, ir.Sub(ir.NewVar(split.Old+".extent"), ir.NewInt(split.Factor)))
			}
			inner := body
			if split.Tail == pipeline.TailGuardWithIf {
				guard := ir.LT(ir.NewVar(split.Old), ir.NewVar(split.Old+".extent"))
				inner = &ir.IfThenElse{Cond: ir.MakeLikely(guard), Then: body}
			}
			body = &ir.LetStmt{Var: split.Old, Value: ir.Add(base, ir.NewVar(split.Inner)), Body: inner}
		case pipeline.SplitKindFuse:
			if split.Old != dim {
				continue
			}
			body = &ir.LetStmt{Var: split.Outer, Value: ir.Div(ir.NewVar(split.Old), ir.NewInt(fuseDivisor(sched, split))), Body: body}
			body = &ir.LetStmt{Var: split.Inner, Value: ir.Mod(ir.NewVar(split.Old), ir.NewInt(fuseDivisor(sched, split))), Body: body}
		case pipeline.SplitKindRename:
			if split.Outer != dim {
				continue
			}
			body = &ir.LetStmt{Var: split.Old, Value: ir.NewVar(split.Outer), Body: body}
		}
	}
	return body
}

// fuseDivisor recovers the inner extent a fuse directive needs to
// decompose the combined index; callers that care about exact inner
// extents record it via a BoundsHint on Inner, defaulting to 1 when
// absent (degenerate fuse of a unit dim).
func fuseDivisor(sched *pipeline.StageSchedule, split pipeline.SplitDirective) int64 {
	if split.Factor > 0 {
		return split.Factor
	}
	for _, h := range sched.BoundsHints {
		if v, ok := h.Extent.(*ir.IntImm); ok && h.Name == split.Inner && v.Value > 0 {
			return v.Value
		}
	}
	return 1
}
