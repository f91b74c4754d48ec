package pipeline

import "loom/internal/ir"

// ReductionDomain is the set of reduction variables a definition's update
// enumerates, plus optional guard predicates (§3).
type ReductionDomain struct {
	Vars       []ReductionVar
	Predicates []ir.Expr
}

// Specialization is a condition-guarded alternate body for a definition.
// The realizer builds the nested Definition and wraps it in an
// if/else (§4.5.1 "Specializations").
type Specialization struct {
	Condition ir.Expr
	Body      *Definition
}

// Definition is one stage of a producer: the initial definition (stage
// 0) or one update definition (stage k, k>=1) (§3).
type Definition struct {
	Values          []ir.Expr
	Args            []ir.Expr
	Reduction       *ReductionDomain
	Specializations []Specialization
	Schedule        *StageSchedule
}

// ExternArgKind distinguishes the four argument shapes an extern stage's
// declared argument list may contain (§4.5.2).
type ExternArgKind int

const (
	ExternArgScalar ExternArgKind = iota
	ExternArgProducerInput
	ExternArgBoundBuffer
	ExternArgImageParam
)

// ExternArg is one entry of an extern producer's declared argument list.
type ExternArg struct {
	Kind         ExternArgKind
	Scalar       ir.Expr // ExternArgScalar
	ProducerName string  // ExternArgProducerInput
	BufferName   string  // ExternArgBoundBuffer, ExternArgImageParam
	Channels     int     // ExternArgProducerInput: number of output channels
}

// ExternSpec marks a producer as computed by calling an external routine
// instead of a defined expression (§3 "extern attribute").
type ExternSpec struct {
	Symbol      string
	Args        []ExternArg
	CppMangled  bool
}

// Producer is a named pure function: its pure dimension args, its
// initial definition, zero or more update definitions, its output
// element types, and an optional extern spec (§3).
type Producer struct {
	Name        string
	Args        []string
	Init        *Definition
	Updates     []*Definition
	OutputTypes []string
	Extern      *ExternSpec
}

// IsExtern reports whether this producer is computed by an external
// routine rather than a defined expression.
func (p *Producer) IsExtern() bool { return p.Extern != nil }

// IsPure reports whether a producer has no update definitions and is not
// extern — the condition under which the outer driver (§4.6) may inline
// it at a singleton, inline compute-level fuse group.
func (p *Producer) IsPure() bool {
	return !p.IsExtern() && len(p.Updates) == 0
}

// NumStages returns the number of definitions: 1 (init) plus len(Updates).
func (p *Producer) NumStages() int { return 1 + len(p.Updates) }

// Stage returns the definition for stage index k (0 = init, k = update k-1).
func (p *Producer) Stage(k int) *Definition {
	if k == 0 {
		return p.Init
	}
	return p.Updates[k-1]
}
