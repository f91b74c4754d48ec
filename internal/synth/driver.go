package synth

import (
	"loom/internal/ir"
	"loom/internal/order"
	"loom/internal/pipeline"
)

// StripRootAndOutermost strips the pipeline.RootSentinel loop the
// statement tree is seeded with (at the top, or wherever root-level
// placements have left it nested), then deletes every remaining For loop
// over pipeline.OutermostSentinel whose extent simplifies to 1,
// substituting its Min for its loop variable in Body first — the final
// cleanup step §4.6 describes: "strip the outer root loop and delete
// every __outermost loop whose extent simplifies to 1 (substituting its
// min for the variable)."
func StripRootAndOutermost(tree ir.Stmt) ir.Stmt {
	if root, ok := tree.(*ir.For); ok && root.Var == pipeline.RootSentinel {
		tree = root.Body
	}
	return rewriteStmt(tree, func(s ir.Stmt) ir.Stmt {
		f, ok := s.(*ir.For)
		if ok && f.Var == pipeline.RootSentinel {
			return f.Body
		}
		if !ok || f.Var != pipeline.OutermostSentinel {
			return s
		}
		if imm, ok := ir.Simplify(f.Extent).(*ir.IntImm); !ok || imm.Value != 1 {
			return s
		}
		return ir.SubstituteStmt(f.Var, f.Min, f.Body)
	})
}

// InlinePureSingletons substitutes away every producer that is pure
// (no updates, not extern), scheduled inline, and not a member of any
// multi-producer fuse group — the outer driver's cleanup pass for
// trivial producers that were never given their own realization
// (§4.6). It must run after every consumer's tree has already been
// built, since it rewrites call sites directly.
func InlinePureSingletons(tree ir.Stmt, env *pipeline.Environment, res *order.Result) ir.Stmt {
	for _, name := range env.Names() {
		p := env.Lookup(name)
		if !isInlineSingleton(p, res) {
			continue
		}
		tree = InlineProducer(tree, name, p.Init)
	}
	return tree
}

func isInlineSingleton(p *pipeline.Producer, res *order.Result) bool {
	if !p.IsPure() {
		return false
	}
	if p.Init.Schedule == nil || p.Init.Schedule.ComputeLevel.Kind != pipeline.LevelInline {
		return false
	}
	if id, ok := res.GroupOf[p.Name]; ok && len(res.Groups[id].Members) > 1 {
		return false
	}
	return true
}
