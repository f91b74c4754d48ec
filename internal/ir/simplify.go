package ir

// Simplify folds constants and normalizes pure-integer arithmetic and
// logical identities (§4.1 contract). It is a single bottom-up pass:
// because MapExpr applies the folding rule to a node only after its
// children have already been folded, the result is already a fixed
// point — Simplify(Simplify(e)) rebuilds no further nodes, satisfying
// the idempotence property in §8.
func Simplify(e Expr) Expr {
	return MapExpr(e, foldOnce)
}

func asInt(e Expr) (int64, bool) {
	if v, ok := e.(*IntImm); ok {
		return v.Value, true
	}
	return 0, false
}

func foldOnce(e Expr) Expr {
	switch x := e.(type) {
	case *Not:
		if v, ok := asInt(x.A); ok {
			if v == 0 {
				return NewInt(1)
			}
			return NewInt(0)
		}
		if inner, ok := x.A.(*Not); ok {
			return inner.A
		}
		return x
	case *Select:
		if v, ok := asInt(x.Cond); ok {
			if v != 0 {
				return x.T
			}
			return x.F
		}
		return x
	case *Likely:
		return x
	case *BinaryExpr:
		return foldBinary(x)
	default:
		return e
	}
}

func foldBinary(x *BinaryExpr) Expr {
	av, aok := asInt(x.A)
	bv, bok := asInt(x.B)
	if aok && bok {
		switch x.Op {
		case OpAdd:
			return NewInt(av + bv)
		case OpSub:
			return NewInt(av - bv)
		case OpMul:
			return NewInt(av * bv)
		case OpDiv:
			if bv != 0 {
				return NewInt(floorDiv(av, bv))
			}
		case OpMod:
			if bv != 0 {
				return NewInt(floorMod(av, bv))
			}
		case OpMin:
			if av < bv {
				return NewInt(av)
			}
			return NewInt(bv)
		case OpMax:
			if av > bv {
				return NewInt(av)
			}
			return NewInt(bv)
		case OpEQ:
			return boolExpr(av == bv)
		case OpNE:
			return boolExpr(av != bv)
		case OpLT:
			return boolExpr(av < bv)
		case OpLE:
			return boolExpr(av <= bv)
		case OpGT:
			return boolExpr(av > bv)
		case OpGE:
			return boolExpr(av >= bv)
		case OpAnd:
			return boolExpr(av != 0 && bv != 0)
		case OpOr:
			return boolExpr(av != 0 || bv != 0)
		}
	}

	// (k mod m) becomes 0 when m divides k, even when k is not itself a
	// literal: a product that carries m as a factor is divisible by m.
	if x.Op == OpMod && bok && bv != 0 {
		if k, ok := divisibleFactor(x.A); ok && k%bv == 0 {
			return NewInt(0)
		}
	}

	// Identities.
	switch x.Op {
	case OpAdd:
		if aok && av == 0 {
			return x.B
		}
		if bok && bv == 0 {
			return x.A
		}
	case OpSub:
		if bok && bv == 0 {
			return x.A
		}
		if Equal(x.A, x.B) {
			return NewInt(0)
		}
	case OpMul:
		if aok && av == 1 {
			return x.B
		}
		if bok && bv == 1 {
			return x.A
		}
		if (aok && av == 0) || (bok && bv == 0) {
			return NewInt(0)
		}
	case OpDiv:
		if bok && bv == 1 {
			return x.A
		}
	case OpMin, OpMax:
		if Equal(x.A, x.B) {
			return x.A
		}
	case OpAnd:
		if aok && av == 0 {
			return NewInt(0)
		}
		if bok && bv == 0 {
			return NewInt(0)
		}
		if aok && av != 0 {
			return x.B
		}
		if bok && bv != 0 {
			return x.A
		}
	case OpOr:
		if aok && av != 0 {
			return NewInt(1)
		}
		if bok && bv != 0 {
			return NewInt(1)
		}
		if aok && av == 0 {
			return x.B
		}
		if bok && bv == 0 {
			return x.A
		}
	}
	return x
}

// divisibleFactor reports a constant k such that e is known to be an
// exact multiple of k, e.g. Mul(a, IntImm{7}) is a multiple of 7
// regardless of a.
func divisibleFactor(e Expr) (int64, bool) {
	if b, ok := e.(*BinaryExpr); ok && b.Op == OpMul {
		if v, ok := asInt(b.A); ok {
			return v, true
		}
		if v, ok := asInt(b.B); ok {
			return v, true
		}
	}
	return 0, false
}

func boolExpr(v bool) *IntImm {
	if v {
		return NewInt(1)
	}
	return NewInt(0)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}
