package errors

// Error codes for the schedule realizer.
//
// Code ranges:
// S0001-S0099: call-graph and fusion errors (§4.2, §4.3)
// S0100-S0199: schedule legality errors (§4.4)
// S0200-S0299: loop-nest synthesis errors (§4.5)
// W0001-W0099: warnings

const (
	// S0001: the direct call graph (ignoring self-loops on updates)
	// contains a cycle.
	ErrorCyclicPipeline = "S0001"

	// S0002: a fused pair connects two producers already linked by a
	// real call dependency.
	ErrorFuseDependencyCycle = "S0002"

	// S0003: the fuse edges themselves close a cycle absent from the
	// plain call graph.
	ErrorFusedPairCycle = "S0003"

	// S0004: a fuse group's members are not realized as a contiguous
	// run of the final order.
	ErrorNonContiguousFuseGroup = "S0004"

	// S0005: the same fused-pair tuple was declared more than once.
	ErrorDuplicateFusedPair = "S0005"

	// S0006: a fuse group member is extern, inline, or specialized, its
	// fuse level names a dim its stage lacks, or its compute site differs
	// from the other members' (see InvalidFuseMember, §4.4 step "fuse
	// group checks").
	ErrorInvalidFuseMember = "S0006"

	// S0007: two co-scheduled members disagree on the type or device of
	// a shared outer dim.
	ErrorMismatchedFusedDims = "S0007"

	// S0100: a stage's compute or store level is not reachable from
	// any caller's declared loop nest.
	ErrorIllegalSite = "S0100"

	// S0101: a producer's store level is nested inside its compute
	// level instead of enclosing or equal to it.
	ErrorStoreOutsideCompute = "S0101"

	// S0102: two producers' compute sites can legally race for the same
	// storage.
	ErrorRaceBetweenStoreAndCompute = "S0102"

	// S0103: a pipeline output is not scheduled compute_root.
	ErrorOutputNotRoot = "S0103"

	// S0104: an inline producer declares a specialization, which has no
	// inline call site to wrap.
	ErrorInlineWithSpecialization = "S0104"

	// S0105: a stage names a device API the target does not support.
	ErrorUnsupportedDevice = "S0105"

	// S0106: an extern stage's input producer is scheduled inline,
	// which an external routine cannot call back into.
	ErrorExternInputInline = "S0106"

	// S0200: a split factor is non-positive.
	ErrorBadSplitFactor = "S0200"

	// S0201: a tail strategy requiring a predictable extent
	// (ShiftInwards, RoundUp) is used on an update stage, where
	// reordering or widening iterations would change the result.
	ErrorInvalidTailStrategyForUpdate = "S0201"

	// W0001: an update definition has no explicit schedule; it inherits
	// its initial definition's, which may not be what was intended.
	WarningUnscheduledUpdate = "W0001"
)

// descriptions gives a one-line human-readable gloss for each code,
// appended by ErrorReporter.Format as the last line of a diagnostic.
var descriptions = map[string]string{
	ErrorCyclicPipeline:              "pipeline has a cycle in its call graph",
	ErrorFuseDependencyCycle:         "fused producers are already linked by a call dependency",
	ErrorFusedPairCycle:              "compute_with requests form a cycle",
	ErrorNonContiguousFuseGroup:      "fused group is not realized contiguously",
	ErrorDuplicateFusedPair:          "the same fused pair is declared more than once",
	ErrorInvalidFuseMember:           "fuse group member cannot be co-scheduled",
	ErrorMismatchedFusedDims:         "co-scheduled members disagree on a shared dim",
	ErrorIllegalSite:                 "compute or store site is unreachable from its callers",
	ErrorStoreOutsideCompute:         "store level must enclose or equal compute level",
	ErrorRaceBetweenStoreAndCompute:  "storage is shared by racing compute sites",
	ErrorOutputNotRoot:               "pipeline output must be computed at root",
	ErrorInlineWithSpecialization:    "inline producer cannot carry a specialization",
	ErrorUnsupportedDevice:           "target does not support the requested device API",
	ErrorExternInputInline:           "extern stage input cannot be scheduled inline",
	ErrorBadSplitFactor:              "split factor must be positive",
	ErrorInvalidTailStrategyForUpdate: "tail strategy is not valid on an update stage",
	WarningUnscheduledUpdate:         "update definition has no explicit schedule",
}

// Describe returns the one-line description registered for code, or the
// empty string if code is unknown.
func Describe(code string) string { return descriptions[code] }

// IsWarning reports whether code denotes a warning rather than an error.
func IsWarning(code string) bool { return len(code) > 0 && code[0] == 'W' }
