package synth

import (
	"loom/internal/ir"
	"loom/internal/order"
	"loom/internal/pipeline"
)

// BuildFusedGroupRealization builds the shared realization for an
// entire fuse group (§4.5.4): the group anchor — the one member with no
// FuseLevel, whose own compute site the others share — gets its normal
// per-stage nest; every other member's full nest is injected into that
// anchor nest at the shared loop its FuseLevel names. Shared outer dims
// get the union of every member's bounds (extract_bounds) so the merged
// loop iterates a region valid for all participants.
func BuildFusedGroupRealization(env *pipeline.Environment, group order.FuseGroup) ir.Stmt {
	if len(group.Members) == 0 {
		return ir.NewBlock()
	}

	shared := unionSharedBounds(env, group)

	var anchor *pipeline.Producer
	for _, name := range group.Members {
		p := env.Lookup(name)
		if p == nil {
			continue
		}
		if !hasFuseLevel(p) {
			anchor = p
			break
		}
	}
	if anchor == nil {
		anchor = env.Lookup(group.Members[0])
	}

	bounds := &BoundsEnv{Overrides: shared}
	tree := BuildProducerRealization(anchor, bounds)

	for _, name := range group.Members {
		if anchor != nil && name == anchor.Name {
			continue
		}
		member := env.Lookup(name)
		if member == nil {
			continue
		}
		memberTree := BuildProducerRealization(member, bounds)
		level := memberFuseLevel(member)
		tree = InjectAtLevel(tree, level, memberTree)
	}

	return tree
}

func hasFuseLevel(p *pipeline.Producer) bool {
	return memberFuseLevel(p).Kind == pipeline.LevelLoop
}

// memberFuseLevel returns the first FuseLevel found across a
// producer's stages — fusion is declared per-stage, but a producer
// only ever participates in one fuse group at a time, so the first
// stage that names one is authoritative.
func memberFuseLevel(p *pipeline.Producer) pipeline.LoopLevel {
	for i := 0; i < p.NumStages(); i++ {
		sched := p.Stage(i).Schedule
		if sched != nil && sched.FuseLevel.Kind == pipeline.LevelLoop {
			return sched.FuseLevel
		}
	}
	return pipeline.LoopLevel{}
}

// unionSharedBounds computes, for every dim in the run from each
// member's StartFuseIndex outward (read from each member's initial
// definition schedule only; update-stage schedules are not consulted),
// the union of min/extent across all members that declare it —
// extract_bounds (§4.5.4): min is the minimum of every participant's
// min, extent is stretched so the region covers every participant's
// [min, min+extent).
func unionSharedBounds(env *pipeline.Environment, group order.FuseGroup) map[string][2]ir.Expr {
	shared := map[string][2]ir.Expr{}
	for _, name := range group.Members {
		p := env.Lookup(name)
		if p == nil || p.Init.Schedule == nil {
			continue
		}
		sched := p.Init.Schedule
		start := sched.StartFuseIndex()
		if start < 0 {
			continue
		}
		for _, dim := range sched.Dims[start:] {
			min := ir.NewVar(dim.Name + ".min")
			extent := ir.NewVar(dim.Name + ".extent")
			if cur, ok := shared[dim.Name]; ok {
				lo := ir.MinE(cur[0], min)
				hi := ir.MaxE(ir.Add(cur[0], cur[1]), ir.Add(min, extent))
				shared[dim.Name] = [2]ir.Expr{lo, ir.Sub(hi, lo)}
			} else {
				shared[dim.Name] = [2]ir.Expr{min, extent}
			}
		}
	}
	return shared
}
