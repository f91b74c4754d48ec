package ir

// Expr is a pure, value-typed node in the expression tree: variables,
// integer constants, arithmetic, comparisons, min/max, select, logical
// connectives, and the three flavors of call (producer, intrinsic,
// extern). Every concrete type is a pointer so that Map can detect an
// unchanged subtree by pointer equality.
type Expr interface {
	isExpr()
}

// Stmt is a node in the imperative statement tree the synthesizer emits:
// for-loops, let-bindings, if/else, blocks, provide (store), assert,
// producer-consumer brackets, realize (allocation) brackets, and evaluate.
type Stmt interface {
	isStmt()
}

// --- Expressions ---------------------------------------------------------

// Var is a free or bound variable reference.
type Var struct {
	Name string
}

// IntImm is an integer constant.
type IntImm struct {
	Value int64
}

// BinOp is the operator of a BinaryExpr.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpEQ
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpAnd
	OpOr
)

// BinaryExpr covers arithmetic, comparison, min/max and logical and/or.
type BinaryExpr struct {
	Op   BinOp
	A, B Expr
}

// Not is logical negation.
type Not struct {
	A Expr
}

// Select is a ternary: Cond ? T : F, evaluated eagerly (both branches are
// pure subexpressions by construction, so eager evaluation is safe).
type Select struct {
	Cond, T, F Expr
}

// Likely wraps a condition with a branch-prediction hint. It is emitted
// around predicate guards (tail-strategy guards, reduction-domain
// predicates, fused-dim bound checks) and is transparent to simplify,
// substitute and use-analysis — it changes nothing but how the guard is
// lowered downstream.
type Likely struct {
	A Expr
}

// CallKind distinguishes the three call flavors named in §4.1.
type CallKind int

const (
	// CallProducer references another producer's output by name.
	CallProducer CallKind = iota
	// CallIntrinsic is a call to a primitive the synthesizer itself
	// introduces (create_buffer_t, halide_msan_annotate_*, likely, ...).
	CallIntrinsic
	// CallExtern is a call across the extern-stage ABI boundary.
	CallExtern
)

// Call is a call of one of the three flavors. Producer calls additionally
// carry the stage's output channel index (0 for single-output producers).
type Call struct {
	Kind    CallKind
	Name    string
	Args    []Expr
	Channel int
}

func (*Var) isExpr()        {}
func (*IntImm) isExpr()     {}
func (*BinaryExpr) isExpr() {}
func (*Not) isExpr()        {}
func (*Select) isExpr()     {}
func (*Likely) isExpr()     {}
func (*Call) isExpr()       {}

// --- Statements -----------------------------------------------------------

// LoopType is the decoration requested on a for-loop by the stage schedule.
type LoopType int

const (
	LoopSerial LoopType = iota
	LoopParallel
	LoopVectorized
	LoopUnrolled
	LoopGPUBlock
	LoopGPUThread
)

func (lt LoopType) String() string {
	switch lt {
	case LoopParallel:
		return "parallel"
	case LoopVectorized:
		return "vectorized"
	case LoopUnrolled:
		return "unrolled"
	case LoopGPUBlock:
		return "gpu_block"
	case LoopGPUThread:
		return "gpu_thread"
	default:
		return "serial"
	}
}

// IsParallelOrVectorized reports whether the race check in §4.4 must
// reject this loop type between a store and a compute bracket.
func (lt LoopType) IsParallelOrVectorized() bool {
	return lt == LoopParallel || lt == LoopVectorized
}

// For is an integer for-loop: `for Var in [Min, Min+Extent)`, decorated
// with the requested loop type and device.
type For struct {
	Var      string
	Min      Expr
	Extent   Expr
	LoopType LoopType
	Device   string
	Body     Stmt
}

// LetStmt binds Var to Value for the scope of Body.
type LetStmt struct {
	Var   string
	Value Expr
	Body  Stmt
}

// IfThenElse is a conditional statement; Else may be nil.
type IfThenElse struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// Block sequences statements. An empty block is a no-op.
type Block struct {
	Stmts []Stmt
}

// Provide stores a stage's output values at the given per-argument index
// expressions. Channel selects which output channel this Provide targets
// when a stage writes its channels with separate Provide nodes; -1 means
// Values holds one expression per channel written together.
type Provide struct {
	Name    string
	Channel int
	Values  []Expr
	Args    []Expr
}

// ErrorKind names a runtime assertion's failure classification (§7
// "Runtime errors emitted into the produced IR").
type ErrorKind string

const (
	ErrorExternStageFailed      ErrorKind = "ExternStageFailed"
	ErrorExplicitBoundsTooSmall ErrorKind = "ExplicitBoundsTooSmall"
)

// Assert lowers to a runtime check; Cond false triggers ErrorKind with Message.
type Assert struct {
	Cond    Expr
	Kind    ErrorKind
	Message string
}

// ProducerConsumer brackets the production (IsProducer true) or
// consumption (IsProducer false) region of a named producer.
type ProducerConsumer struct {
	Name       string
	IsProducer bool
	Body       Stmt
}

// RealizeBound names the realized min/extent of one pure argument
// dimension of a producer's allocation.
type RealizeBound struct {
	Arg    string
	Min    Expr
	Extent Expr
}

// Realize declares the lifetime and bounds of a producer's storage.
type Realize struct {
	Name   string
	Bounds []RealizeBound
	Body   Stmt
}

// Evaluate runs an expression purely for its side effect (extern calls).
type Evaluate struct {
	Value Expr
}

func (*For) isStmt()              {}
func (*LetStmt) isStmt()          {}
func (*IfThenElse) isStmt()       {}
func (*Block) isStmt()            {}
func (*Provide) isStmt()          {}
func (*Assert) isStmt()           {}
func (*ProducerConsumer) isStmt() {}
func (*Realize) isStmt()          {}
func (*Evaluate) isStmt()         {}

// --- Constructors (light normalization only; no folding) ------------------

func NewVar(name string) *Var { return &Var{Name: name} }
func NewInt(v int64) *IntImm  { return &IntImm{Value: v} }

func NewBin(op BinOp, a, b Expr) *BinaryExpr { return &BinaryExpr{Op: op, A: a, B: b} }
func Add(a, b Expr) *BinaryExpr              { return NewBin(OpAdd, a, b) }
func Sub(a, b Expr) *BinaryExpr              { return NewBin(OpSub, a, b) }
func Mul(a, b Expr) *BinaryExpr              { return NewBin(OpMul, a, b) }
func Div(a, b Expr) *BinaryExpr              { return NewBin(OpDiv, a, b) }
func Mod(a, b Expr) *BinaryExpr              { return NewBin(OpMod, a, b) }
func MinE(a, b Expr) *BinaryExpr             { return NewBin(OpMin, a, b) }
func MaxE(a, b Expr) *BinaryExpr             { return NewBin(OpMax, a, b) }
func LT(a, b Expr) *BinaryExpr               { return NewBin(OpLT, a, b) }
func LE(a, b Expr) *BinaryExpr               { return NewBin(OpLE, a, b) }
func GT(a, b Expr) *BinaryExpr               { return NewBin(OpGT, a, b) }
func GE(a, b Expr) *BinaryExpr               { return NewBin(OpGE, a, b) }
func EQ(a, b Expr) *BinaryExpr               { return NewBin(OpEQ, a, b) }
func NE(a, b Expr) *BinaryExpr               { return NewBin(OpNE, a, b) }
func And(a, b Expr) *BinaryExpr              { return NewBin(OpAnd, a, b) }
func Or(a, b Expr) *BinaryExpr               { return NewBin(OpOr, a, b) }

func MakeLikely(a Expr) *Likely { return &Likely{A: a} }

func NewBlock(stmts ...Stmt) *Block {
	flat := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		if s == nil {
			continue
		}
		if b, ok := s.(*Block); ok {
			flat = append(flat, b.Stmts...)
			continue
		}
		flat = append(flat, s)
	}
	return &Block{Stmts: flat}
}
