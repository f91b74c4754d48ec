package synth

import (
	"loom/internal/ir"
	"loom/internal/pipeline"
)

// InjectAtLevel walks tree looking for the For loop named by level (a
// LevelLoop LoopLevel) and splices inject as the first statement
// executed inside that loop's body — the deepest point still outside
// every one of the producer's call sites, by construction, since the
// validator already confirmed level names a loop on a direct caller
// (§4.5.3 "producer-consumer injection"). If level is not a LevelLoop or
// no matching loop is found, tree is returned unchanged and inject is
// dropped (callers handle root placement themselves).
func InjectAtLevel(tree ir.Stmt, level pipeline.LoopLevel, inject ir.Stmt) ir.Stmt {
	if level.Kind != pipeline.LevelLoop {
		return tree
	}
	injected := false
	result := rewriteStmt(tree, func(s ir.Stmt) ir.Stmt {
		f, ok := s.(*ir.For)
		if !ok || f.Var != level.Dim || injected {
			return s
		}
		injected = true
		return &ir.For{Var: f.Var, Min: f.Min, Extent: f.Extent, LoopType: f.LoopType, Device: f.Device,
			Body: ir.NewBlock(inject, f.Body)}
	})
	return result
}

// WrapRealizeAtLevel wraps the body of the For loop named by level in
// name's storage bracket, recording bounds (§4.5.3 "Realize bracket
// placement"), so the allocation lives for one iteration of that loop.
// At root level the caller wraps the whole tree directly instead of
// calling this.
func WrapRealizeAtLevel(tree ir.Stmt, level pipeline.LoopLevel, name string, bounds []ir.RealizeBound) ir.Stmt {
	if level.Kind != pipeline.LevelLoop {
		return tree
	}
	wrapped := false
	return rewriteStmt(tree, func(s ir.Stmt) ir.Stmt {
		f, ok := s.(*ir.For)
		if !ok || f.Var != level.Dim || wrapped {
			return s
		}
		wrapped = true
		return &ir.For{Var: f.Var, Min: f.Min, Extent: f.Extent, LoopType: f.LoopType, Device: f.Device,
			Body: &ir.Realize{Name: name, Bounds: bounds, Body: f.Body}}
	})
}

// InlineProducer substitutes every call to producerName anywhere in
// tree's expressions with def's value expression, with def's pure args
// substituted for the call's actual argument expressions (§4.5.3
// "Inline substitution"). Multi-value producers substitute by Channel;
// single-value producers ignore Channel. A call found inside a
// vectorized or unrolled loop is substituted exactly like any other —
// the source's special-case there exists only to avoid re-deriving
// per-lane bounds on every lane, which bounds inference (out of scope
// here, §1) would otherwise need to repeat.
func InlineProducer(tree ir.Stmt, producerName string, def *pipeline.Definition) ir.Stmt {
	return rewriteStmtExprs(tree, func(e ir.Expr) ir.Expr {
		return inlineExpr(e, producerName, def)
	})
}

func inlineExpr(e ir.Expr, producerName string, def *pipeline.Definition) ir.Expr {
	return ir.MapExpr(e, func(e ir.Expr) ir.Expr {
		call, ok := e.(*ir.Call)
		if !ok || call.Kind != ir.CallProducer || call.Name != producerName {
			return e
		}
		channel := call.Channel
		if channel < 0 || channel >= len(def.Values) {
			channel = 0
		}
		value := def.Values[channel]
		for i, argExpr := range def.Args {
			v, ok := argExpr.(*ir.Var)
			if !ok || i >= len(call.Args) {
				continue
			}
			value = ir.Substitute(v.Name, call.Args[i], value)
		}
		return value
	})
}

// rewriteStmt performs a bottom-up rebuild of a Stmt tree, applying fn
// to every node after its children have already been rewritten — the
// Stmt analogue of ir.MapExpr, scoped to this package since no other
// component needs generic statement rewriting.
func rewriteStmt(s ir.Stmt, fn func(ir.Stmt) ir.Stmt) ir.Stmt {
	if s == nil {
		return nil
	}
	switch x := s.(type) {
	case *ir.For:
		return fn(&ir.For{Var: x.Var, Min: x.Min, Extent: x.Extent, LoopType: x.LoopType, Device: x.Device,
			Body: rewriteStmt(x.Body, fn)})
	case *ir.LetStmt:
		return fn(&ir.LetStmt{Var: x.Var, Value: x.Value, Body: rewriteStmt(x.Body, fn)})
	case *ir.IfThenElse:
		return fn(&ir.IfThenElse{Cond: x.Cond, Then: rewriteStmt(x.Then, fn), Else: rewriteStmt(x.Else, fn)})
	case *ir.Block:
		stmts := make([]ir.Stmt, len(x.Stmts))
		for i, c := range x.Stmts {
			stmts[i] = rewriteStmt(c, fn)
		}
		return fn(ir.NewBlock(stmts...))
	case *ir.ProducerConsumer:
		return fn(&ir.ProducerConsumer{Name: x.Name, IsProducer: x.IsProducer, Body: rewriteStmt(x.Body, fn)})
	case *ir.Realize:
		return fn(&ir.Realize{Name: x.Name, Bounds: x.Bounds, Body: rewriteStmt(x.Body, fn)})
	default:
		return fn(s)
	}
}

// rewriteStmtExprs rewrites every Expr reachable from s (loop bounds,
// let values, conditions, provide values/args, assert conditions,
// evaluate values) with fn, leaving the statement shape untouched.
func rewriteStmtExprs(s ir.Stmt, fn func(ir.Expr) ir.Expr) ir.Stmt {
	return rewriteStmt(s, func(s ir.Stmt) ir.Stmt {
		switch x := s.(type) {
		case *ir.For:
			return &ir.For{Var: x.Var, Min: fn(x.Min), Extent: fn(x.Extent), LoopType: x.LoopType, Device: x.Device, Body: x.Body}
		case *ir.LetStmt:
			return &ir.LetStmt{Var: x.Var, Value: fn(x.Value), Body: x.Body}
		case *ir.IfThenElse:
			return &ir.IfThenElse{Cond: fn(x.Cond), Then: x.Then, Else: x.Else}
		case *ir.Provide:
			values := make([]ir.Expr, len(x.Values))
			for i, v := range x.Values {
				values[i] = fn(v)
			}
			args := make([]ir.Expr, len(x.Args))
			for i, a := range x.Args {
				args[i] = fn(a)
			}
			return &ir.Provide{Name: x.Name, Channel: x.Channel, Values: values, Args: args}
		case *ir.Assert:
			return &ir.Assert{Cond: fn(x.Cond), Kind: x.Kind, Message: x.Message}
		case *ir.Evaluate:
			return &ir.Evaluate{Value: fn(x.Value)}
		default:
			return s
		}
	})
}
