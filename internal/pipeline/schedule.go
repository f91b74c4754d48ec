package pipeline

import "loom/internal/ir"

// TailStrategy is the policy for handling a split's remainder when the
// old dim's extent is not a multiple of the split factor.
type TailStrategy int

const (
	TailAuto TailStrategy = iota
	TailGuardWithIf
	TailShiftInwards
	TailRoundUp
)

func (t TailStrategy) String() string {
	switch t {
	case TailGuardWithIf:
		return "guard_with_if"
	case TailShiftInwards:
		return "shift_inwards"
	case TailRoundUp:
		return "round_up"
	default:
		return "auto"
	}
}

// SplitKind distinguishes the three loop transforms a StageSchedule's
// Splits list may contain (§4.5.1 step 3).
type SplitKind int

const (
	// SplitKindSplit partitions Old into Outer, Inner by Factor.
	SplitKindSplit SplitKind = iota
	// SplitKindFuse combines Inner, Outer into Old.
	SplitKindFuse
	// SplitKindRename is a straight rename (or purify) Old -> Outer.
	SplitKindRename
)

// SplitDirective is one entry of a stage schedule's ordered split list.
// The field in play depends on Kind: Split reads Old/writes Outer,Inner;
// Fuse reads Inner,Outer/writes Old; Rename reads Old/writes Outer.
type SplitDirective struct {
	Kind   SplitKind
	Old    string
	Outer  string
	Inner  string
	Factor int64
	Tail   TailStrategy
}

// BoundsHint records a user-supplied extent and/or modulus constraint on
// a named dim. The synthesizer uses Extent as that dim's loop extent, as
// the divisor of a fuse whose Inner it names, and, on extern stages, as
// the bound of an ExplicitBoundsTooSmall assertion; Modulus is recorded
// but not read.
type BoundsHint struct {
	Name    string
	Extent  ir.Expr
	Modulus ir.Expr
}

// ReductionVar is one axis of a reduction domain, with its min/extent
// expressed in terms of the enclosing pure args.
type ReductionVar struct {
	Name   string
	Min    ir.Expr
	Extent ir.Expr
}

// LoopLevelKind distinguishes the three kinds of compute/store/fuse
// level a stage schedule can name (§3 "Loop level").
type LoopLevelKind int

const (
	LevelInline LoopLevelKind = iota
	LevelRoot
	LevelLoop
)

// LoopLevel names where a producer (or one of its stages) is computed,
// stored, or fused. A LevelLoop names a loop in some producer's nest by
// (producer, stage, dim).
type LoopLevel struct {
	Kind     LoopLevelKind
	Producer string
	Stage    int
	Dim      string
}

func Inline() LoopLevel { return LoopLevel{Kind: LevelInline} }
func Root() LoopLevel   { return LoopLevel{Kind: LevelRoot} }
func At(producer string, stage int, dim string) LoopLevel {
	return LoopLevel{Kind: LevelLoop, Producer: producer, Stage: stage, Dim: dim}
}

// Match reports whether two loop levels name the same site. Root levels
// for different producers are still considered equal as sites ("root" is
// a single global site), matching the source's LoopLevel::match, which
// compares kind and (for Loop levels) producer/stage/dim only.
func (l LoopLevel) Match(o LoopLevel) bool {
	if l.Kind != o.Kind {
		return false
	}
	if l.Kind != LevelLoop {
		return true
	}
	return l.Producer == o.Producer && l.Stage == o.Stage && l.Dim == o.Dim
}

func (l LoopLevel) String() string {
	switch l.Kind {
	case LevelInline:
		return "inline"
	case LevelRoot:
		return "root"
	default:
		return l.Producer + ".s" + itoa(l.Stage) + "." + l.Dim
	}
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// FusedPair is a directed compute_with request: stage (Func2, Stage2) is
// co-scheduled with (Func1, Stage1), sharing outer loops from VarName
// outward. Func1 is the target named in the compute_with call and
// supplies the shared outer-loop bounds; Func2 is the stage declaring
// compute_with and is realized no later than Func1 (§4.3 step 2). A
// builder appends the pair to Func2's own StageSchedule.FusedPairs, so
// ComputeWith(G, stage, parent, parentStage, dim) called on G's stage
// schedule builder records FusedPair{Func1: parent, Func2: G, ...} there.
type FusedPair struct {
	Func1   string
	Stage1  int
	Func2   string
	Stage2  int
	VarName string
}

// StageSchedule is the full set of scheduling directives for one
// definition (§3). Dims is ordered innermost first and, once normalized,
// always ends with the OutermostSentinel dim.
type StageSchedule struct {
	Dims          []Dim
	Splits        []SplitDirective
	BoundsHints   []BoundsHint
	ReductionVars []ReductionVar
	FusedPairs    []FusedPair
	FuseLevel     LoopLevel
	ComputeLevel  LoopLevel
	StoreLevel    LoopLevel
}

// StartFuseIndex returns the index into Dims (innermost-first) of the
// dim the FuseLevel names, or -1 if this stage is not fused into a
// parent. Dims from this index outward are the shared outer loops whose
// iteration space must be unified with the parent's (§4.5.1 step 2).
func (s *StageSchedule) StartFuseIndex() int {
	if s.FuseLevel.Kind != LevelLoop {
		return -1
	}
	for i, d := range s.Dims {
		if d.Name == s.FuseLevel.Dim {
			return i
		}
	}
	return -1
}

// DimExtentAlignment records, per dim name, the alignment factor proven
// for a split's output — used by downstream bounds inference to avoid
// redundant modulus checks. Nothing in this module populates or reads
// it; the synthesizer does not track split alignment.
type DimExtentAlignment map[string]int64
