package ir

// Equal reports whether two expressions are structurally identical. It is
// used by idempotence checks (§8 "round-trip") and by the fused-group
// injector's dim-matching ("pointwise equal" invariant in §3).
func Equal(a, b Expr) bool {
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Name == y.Name
	case *IntImm:
		y, ok := b.(*IntImm)
		return ok && x.Value == y.Value
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && Equal(x.A, y.A) && Equal(x.B, y.B)
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.A, y.A)
	case *Select:
		y, ok := b.(*Select)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.T, y.T) && Equal(x.F, y.F)
	case *Likely:
		y, ok := b.(*Likely)
		return ok && Equal(x.A, y.A)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Kind != y.Kind || x.Name != y.Name || x.Channel != y.Channel || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EqualStmt reports whether two statement trees are structurally
// identical. Used by the idempotence property in §8: re-scheduling an
// already root/root pipeline must reproduce a structurally equal tree.
func EqualStmt(a, b Stmt) bool {
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *For:
		y, ok := b.(*For)
		return ok && x.Var == y.Var && x.LoopType == y.LoopType && x.Device == y.Device &&
			Equal(x.Min, y.Min) && Equal(x.Extent, y.Extent) && EqualStmt(x.Body, y.Body)
	case *LetStmt:
		y, ok := b.(*LetStmt)
		return ok && x.Var == y.Var && Equal(x.Value, y.Value) && EqualStmt(x.Body, y.Body)
	case *IfThenElse:
		y, ok := b.(*IfThenElse)
		if !ok || !Equal(x.Cond, y.Cond) || !EqualStmt(x.Then, y.Then) {
			return false
		}
		if (x.Else == nil) != (y.Else == nil) {
			return false
		}
		return x.Else == nil || EqualStmt(x.Else, y.Else)
	case *Block:
		y, ok := b.(*Block)
		if !ok || len(x.Stmts) != len(y.Stmts) {
			return false
		}
		for i := range x.Stmts {
			if !EqualStmt(x.Stmts[i], y.Stmts[i]) {
				return false
			}
		}
		return true
	case *Provide:
		y, ok := b.(*Provide)
		if !ok || x.Name != y.Name || x.Channel != y.Channel || len(x.Values) != len(y.Values) || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Values {
			if !Equal(x.Values[i], y.Values[i]) {
				return false
			}
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Assert:
		y, ok := b.(*Assert)
		return ok && x.Kind == y.Kind && x.Message == y.Message && Equal(x.Cond, y.Cond)
	case *ProducerConsumer:
		y, ok := b.(*ProducerConsumer)
		return ok && x.Name == y.Name && x.IsProducer == y.IsProducer && EqualStmt(x.Body, y.Body)
	case *Realize:
		y, ok := b.(*Realize)
		if !ok || x.Name != y.Name || len(x.Bounds) != len(y.Bounds) {
			return false
		}
		for i := range x.Bounds {
			if x.Bounds[i].Arg != y.Bounds[i].Arg ||
				!Equal(x.Bounds[i].Min, y.Bounds[i].Min) ||
				!Equal(x.Bounds[i].Extent, y.Bounds[i].Extent) {
				return false
			}
		}
		return EqualStmt(x.Body, y.Body)
	case *Evaluate:
		y, ok := b.(*Evaluate)
		return ok && Equal(x.Value, y.Value)
	default:
		return false
	}
}
