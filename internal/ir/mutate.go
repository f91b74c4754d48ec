package ir

// MapExpr rebuilds e bottom-up, calling fn on every node after its
// children have already been rebuilt. fn is free to return its argument
// unchanged (by returning the same pointer) — MapExpr only allocates a
// new parent node when at least one child's pointer actually changed, so
// an all-unchanged tree costs nothing beyond the traversal itself. This is
// the "structural-rebuilding fold" the source's visitor/mutator
// infrastructure is recast as (§9 design notes).
func MapExpr(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	var rebuilt Expr
	switch x := e.(type) {
	case *Var, *IntImm:
		rebuilt = e
	case *BinaryExpr:
		a := MapExpr(x.A, fn)
		b := MapExpr(x.B, fn)
		if a == x.A && b == x.B {
			rebuilt = x
		} else {
			rebuilt = &BinaryExpr{Op: x.Op, A: a, B: b}
		}
	case *Not:
		a := MapExpr(x.A, fn)
		if a == x.A {
			rebuilt = x
		} else {
			rebuilt = &Not{A: a}
		}
	case *Select:
		c := MapExpr(x.Cond, fn)
		t := MapExpr(x.T, fn)
		f := MapExpr(x.F, fn)
		if c == x.Cond && t == x.T && f == x.F {
			rebuilt = x
		} else {
			rebuilt = &Select{Cond: c, T: t, F: f}
		}
	case *Likely:
		a := MapExpr(x.A, fn)
		if a == x.A {
			rebuilt = x
		} else {
			rebuilt = &Likely{A: a}
		}
	case *Call:
		changed := false
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			na := MapExpr(a, fn)
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			rebuilt = x
		} else {
			rebuilt = &Call{Kind: x.Kind, Name: x.Name, Args: args, Channel: x.Channel}
		}
	default:
		rebuilt = e
	}
	return fn(rebuilt)
}

// Substitute replaces every free occurrence of variable name in e with
// value. Expressions never bind variables, so there is no shadowing to
// account for here — see SubstituteStmt for the statement-tree version,
// which must stop at rebinding for-loops and lets.
func Substitute(name string, value Expr, e Expr) Expr {
	return MapExpr(e, func(n Expr) Expr {
		if v, ok := n.(*Var); ok && v.Name == name {
			return value
		}
		return n
	})
}

// ExprUsesVar reports whether e contains a free reference to name.
func ExprUsesVar(e Expr, name string) bool {
	used := false
	MapExpr(e, func(n Expr) Expr {
		if v, ok := n.(*Var); ok && v.Name == name {
			used = true
		}
		return n
	})
	return used
}

// SubstituteStmt replaces free occurrences of name within a statement
// tree, stopping at any For or LetStmt that rebinds the same name (the
// binding's own Min/Extent/Value expressions, evaluated in the enclosing
// scope, are still substituted).
func SubstituteStmt(name string, value Expr, s Stmt) Stmt {
	if s == nil {
		return nil
	}
	switch x := s.(type) {
	case *For:
		min := Substitute(name, value, x.Min)
		ext := Substitute(name, value, x.Extent)
		body := x.Body
		if x.Var != name {
			body = SubstituteStmt(name, value, x.Body)
		}
		if min == x.Min && ext == x.Extent && body == x.Body {
			return x
		}
		return &For{Var: x.Var, Min: min, Extent: ext, LoopType: x.LoopType, Device: x.Device, Body: body}
	case *LetStmt:
		val := Substitute(name, value, x.Value)
		body := x.Body
		if x.Var != name {
			body = SubstituteStmt(name, value, x.Body)
		}
		if val == x.Value && body == x.Body {
			return x
		}
		return &LetStmt{Var: x.Var, Value: val, Body: body}
	case *IfThenElse:
		cond := Substitute(name, value, x.Cond)
		then := SubstituteStmt(name, value, x.Then)
		var els Stmt
		if x.Else != nil {
			els = SubstituteStmt(name, value, x.Else)
		}
		if cond == x.Cond && then == x.Then && els == x.Else {
			return x
		}
		return &IfThenElse{Cond: cond, Then: then, Else: els}
	case *Block:
		changed := false
		stmts := make([]Stmt, len(x.Stmts))
		for i, inner := range x.Stmts {
			ns := SubstituteStmt(name, value, inner)
			stmts[i] = ns
			if ns != inner {
				changed = true
			}
		}
		if !changed {
			return x
		}
		return &Block{Stmts: stmts}
	case *Provide:
		changed := false
		values := make([]Expr, len(x.Values))
		for i, v := range x.Values {
			nv := Substitute(name, value, v)
			values[i] = nv
			if nv != v {
				changed = true
			}
		}
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			na := Substitute(name, value, a)
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return x
		}
		return &Provide{Name: x.Name, Channel: x.Channel, Values: values, Args: args}
	case *Assert:
		cond := Substitute(name, value, x.Cond)
		if cond == x.Cond {
			return x
		}
		return &Assert{Cond: cond, Kind: x.Kind, Message: x.Message}
	case *ProducerConsumer:
		body := SubstituteStmt(name, value, x.Body)
		if body == x.Body {
			return x
		}
		return &ProducerConsumer{Name: x.Name, IsProducer: x.IsProducer, Body: body}
	case *Realize:
		changed := false
		bounds := make([]RealizeBound, len(x.Bounds))
		for i, b := range x.Bounds {
			nb := RealizeBound{Arg: b.Arg, Min: Substitute(name, value, b.Min), Extent: Substitute(name, value, b.Extent)}
			bounds[i] = nb
			if nb.Min != b.Min || nb.Extent != b.Extent {
				changed = true
			}
		}
		body := SubstituteStmt(name, value, x.Body)
		if body != x.Body {
			changed = true
		}
		if !changed {
			return x
		}
		return &Realize{Name: x.Name, Bounds: bounds, Body: body}
	case *Evaluate:
		v := Substitute(name, value, x.Value)
		if v == x.Value {
			return x
		}
		return &Evaluate{Value: v}
	default:
		return s
	}
}

// StmtUsesVar reports whether any expression reachable in s (without
// descending past a rebinding of name) references name freely. Used by
// the loop-nest synthesizer to decide how far a let or predicate guard
// may be sorted outward (§4.5.1 step 4: "a let may move out past any
// wrapper that does not bind a free variable of its value").
func StmtUsesVar(s Stmt, name string) bool {
	used := false
	var walk func(Stmt)
	walk = func(s Stmt) {
		if s == nil || used {
			return
		}
		switch x := s.(type) {
		case *For:
			if ExprUsesVar(x.Min, name) || ExprUsesVar(x.Extent, name) {
				used = true
				return
			}
			if x.Var != name {
				walk(x.Body)
			}
		case *LetStmt:
			if ExprUsesVar(x.Value, name) {
				used = true
				return
			}
			if x.Var != name {
				walk(x.Body)
			}
		case *IfThenElse:
			if ExprUsesVar(x.Cond, name) {
				used = true
				return
			}
			walk(x.Then)
			walk(x.Else)
		case *Block:
			for _, inner := range x.Stmts {
				walk(inner)
			}
		case *Provide:
			for _, v := range x.Values {
				if ExprUsesVar(v, name) {
					used = true
					return
				}
			}
			for _, a := range x.Args {
				if ExprUsesVar(a, name) {
					used = true
					return
				}
			}
		case *Assert:
			if ExprUsesVar(x.Cond, name) {
				used = true
			}
		case *ProducerConsumer:
			walk(x.Body)
		case *Realize:
			for _, b := range x.Bounds {
				if ExprUsesVar(b.Min, name) || ExprUsesVar(b.Extent, name) {
					used = true
					return
				}
			}
			walk(x.Body)
		case *Evaluate:
			if ExprUsesVar(x.Value, name) {
				used = true
			}
		}
	}
	walk(s)
	return used
}
