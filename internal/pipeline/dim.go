// Package pipeline holds the frozen, immutable data model a front end
// hands to the realizer: producers, their definitions, and their stage
// schedules (§3). Nothing here mutates after a ScheduleBuilder finalizes —
// producer records are referenced by name everywhere else in this module,
// never by pointer into mutable shared state (§9 "shared ownership").
package pipeline

import "loom/internal/ir"

// Device names the execution target a dim's loop runs on. The empty
// string means host/CPU.
type Device string

const (
	DeviceHost Device = ""
)

// Dim is one named loop axis of a stage.
type Dim struct {
	Name   string
	Type   ir.LoopType
	Device Device
}

// OutermostSentinel is the name of the synthetic dim every normalized
// stage schedule carries as the last entry of its innermost-first Dims
// list, i.e. its outermost loop. It always has extent 1 and is removed
// by the final cleanup pass (§3).
const OutermostSentinel = "__outermost"

// RootSentinel names the unit loop the statement tree begins life as
// before any producer is injected, per §3 "Lifecycle": "The statement
// tree begins as a single unit loop named '<root>'... stripped as the
// final step" (§4.6).
const RootSentinel = "<root>"

// SameDim reports whether two dims match pointwise: same name, loop
// type, and device — the equality the fused-pair invariant in §3 and the
// per-group validator in §4.4 both require.
func SameDim(a, b Dim) bool {
	return a.Name == b.Name && a.Type == b.Type && a.Device == b.Device
}
