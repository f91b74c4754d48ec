package ir

// PurityOracle answers whether a named producer is pure, i.e. has no
// update definitions and is not extern. The IR layer has no notion of
// the producer environment itself (§1: the environment is an external
// collaborator of this layer); callers hand in a closure over whatever
// environment they hold.
type PurityOracle func(producerName string) bool

// ContainsImpureCall reports whether e contains any call whose callee is
// not pure: every extern call is impure by construction; a producer call
// is impure iff isPure says so; intrinsics are always pure (they are
// compiler-introduced and side-effect-free by the time they reach this
// layer — MSan annotation calls are emitted as Evaluate statements,
// never as sub-expressions).
func ContainsImpureCall(e Expr, isPure PurityOracle) bool {
	found := false
	var walk func(Expr)
	walk = func(e Expr) {
		if e == nil || found {
			return
		}
		switch x := e.(type) {
		case *Call:
			switch x.Kind {
			case CallExtern:
				found = true
				return
			case CallProducer:
				if isPure == nil || !isPure(x.Name) {
					found = true
					return
				}
			}
			for _, a := range x.Args {
				walk(a)
			}
		case *BinaryExpr:
			walk(x.A)
			walk(x.B)
		case *Not:
			walk(x.A)
		case *Select:
			walk(x.Cond)
			walk(x.T)
			walk(x.F)
		case *Likely:
			walk(x.A)
		}
	}
	walk(e)
	return found
}
