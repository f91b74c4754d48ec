package pipeline

import "loom/internal/ir"

// ScheduleBuilder accumulates scheduling directives for one stage and
// produces an immutable *StageSchedule on Finalize (Design Notes,
// "Builder-style chained scheduling"). It replaces the source's mutable,
// self-referencing Schedule object: nothing reachable from a finalized
// StageSchedule is ever mutated again.
type ScheduleBuilder struct {
	dims          []Dim
	splits        []SplitDirective
	boundsHints   []BoundsHint
	reductionVars []ReductionVar
	fusedPairs    []FusedPair
	fuseLevel     LoopLevel
	computeLevel  LoopLevel
	storeLevel    LoopLevel
}

// NewScheduleBuilder seeds a builder with a stage's pure and reduction
// dims, innermost first, each defaulting to serial host execution.
func NewScheduleBuilder(dimNames ...string) *ScheduleBuilder {
	b := &ScheduleBuilder{
		computeLevel: Inline(),
		storeLevel:   Inline(),
	}
	for _, n := range dimNames {
		b.dims = append(b.dims, Dim{Name: n, Type: ir.LoopSerial})
	}
	return b
}

func (b *ScheduleBuilder) dimIndex(name string) int {
	for i, d := range b.dims {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Split replaces Old with Outer, Inner at the given factor and tail
// strategy (§4.5.1 step 3). Outer takes Old's position; Inner is
// inserted directly inside it.
func (b *ScheduleBuilder) Split(old, outer, inner string, factor int64, tail TailStrategy) *ScheduleBuilder {
	i := b.dimIndex(old)
	if i < 0 {
		panic("pipeline: split of unknown dim " + old)
	}
	replacement := []Dim{{Name: inner, Type: b.dims[i].Type, Device: b.dims[i].Device}, {Name: outer, Type: b.dims[i].Type, Device: b.dims[i].Device}}
	b.dims = spliceDims(b.dims, i, replacement)
	b.splits = append(b.splits, SplitDirective{Kind: SplitKindSplit, Old: old, Outer: outer, Inner: inner, Factor: factor, Tail: tail})
	return b
}

// Fuse combines Inner and Outer (adjacent or not) back into a single dim
// Old, recording the inverse of Split in the split list.
func (b *ScheduleBuilder) Fuse(inner, outer, old string) *ScheduleBuilder {
	oi := b.dimIndex(outer)
	ii := b.dimIndex(inner)
	if oi < 0 || ii < 0 {
		panic("pipeline: fuse of unknown dim")
	}
	kept := oi
	if ii < kept {
		kept = ii
	}
	removed := removeDims(b.dims, oi, ii)
	dims := make([]Dim, 0, len(removed)+1)
	dims = append(dims, removed[:kept]...)
	dims = append(dims, Dim{Name: old, Type: b.dims[oi].Type, Device: b.dims[oi].Device})
	dims = append(dims, removed[kept:]...)
	b.dims = dims
	b.splits = append(b.splits, SplitDirective{Kind: SplitKindFuse, Old: old, Outer: outer, Inner: inner})
	return b
}

// Rename renames Old to Outer without changing the loop's position or
// extent; also used to "purify" a reduction var into a pure one.
func (b *ScheduleBuilder) Rename(old, newName string) *ScheduleBuilder {
	i := b.dimIndex(old)
	if i < 0 {
		panic("pipeline: rename of unknown dim " + old)
	}
	b.dims[i].Name = newName
	b.splits = append(b.splits, SplitDirective{Kind: SplitKindRename, Old: old, Outer: newName})
	return b
}

// Reorder permutes Dims to the given order (innermost first), which must
// be a permutation of the current dim names.
func (b *ScheduleBuilder) Reorder(order ...string) *ScheduleBuilder {
	reordered := make([]Dim, 0, len(order))
	for _, name := range order {
		i := b.dimIndex(name)
		if i < 0 {
			panic("pipeline: reorder references unknown dim " + name)
		}
		reordered = append(reordered, b.dims[i])
	}
	if len(reordered) != len(b.dims) {
		panic("pipeline: reorder must name every dim")
	}
	b.dims = reordered
	return b
}

func (b *ScheduleBuilder) setLoopType(name string, t ir.LoopType, device Device) *ScheduleBuilder {
	i := b.dimIndex(name)
	if i < 0 {
		panic("pipeline: loop-type directive on unknown dim " + name)
	}
	b.dims[i].Type = t
	b.dims[i].Device = device
	return b
}

func (b *ScheduleBuilder) Parallel(name string) *ScheduleBuilder  { return b.setLoopType(name, ir.LoopParallel, DeviceHost) }
func (b *ScheduleBuilder) Vectorize(name string) *ScheduleBuilder { return b.setLoopType(name, ir.LoopVectorized, DeviceHost) }
func (b *ScheduleBuilder) Unroll(name string) *ScheduleBuilder    { return b.setLoopType(name, ir.LoopUnrolled, DeviceHost) }
func (b *ScheduleBuilder) GPUBlocks(name string, device Device) *ScheduleBuilder {
	return b.setLoopType(name, ir.LoopGPUBlock, device)
}
func (b *ScheduleBuilder) GPUThreads(name string, device Device) *ScheduleBuilder {
	return b.setLoopType(name, ir.LoopGPUThread, device)
}

// BoundsHint records a user-asserted extent and/or modulus on a dim.
func (b *ScheduleBuilder) BoundsHint(name string, extent, modulus ir.Expr) *ScheduleBuilder {
	b.boundsHints = append(b.boundsHints, BoundsHint{Name: name, Extent: extent, Modulus: modulus})
	return b
}

// Reduce appends a reduction-domain axis.
func (b *ScheduleBuilder) Reduce(name string, min, extent ir.Expr) *ScheduleBuilder {
	b.reductionVars = append(b.reductionVars, ReductionVar{Name: name, Min: min, Extent: extent})
	return b
}

// ComputeAt sets the compute site; the store site defaults to the same
// loop unless StoreAt is called afterward to widen it (§3 "Loop level":
// store_at defaults to compute_at).
func (b *ScheduleBuilder) ComputeAt(producer string, stage int, dim string) *ScheduleBuilder {
	b.computeLevel = At(producer, stage, dim)
	b.storeLevel = b.computeLevel
	return b
}
func (b *ScheduleBuilder) StoreAt(producer string, stage int, dim string) *ScheduleBuilder {
	b.storeLevel = At(producer, stage, dim)
	return b
}
func (b *ScheduleBuilder) ComputeRoot() *ScheduleBuilder {
	b.computeLevel, b.storeLevel = Root(), Root()
	return b
}
func (b *ScheduleBuilder) ComputeInline() *ScheduleBuilder {
	b.computeLevel, b.storeLevel = Inline(), Inline()
	return b
}

// ComputeWith fuses this stage into parent/parentStage's loop nest from
// dim outward: the shared outer loops of both stages are unified into
// one nest (§3 "Fused pair", §4.5.4). See FusedPair's doc comment for
// the Func1/Func2 convention this records.
func (b *ScheduleBuilder) ComputeWith(selfName string, selfStage int, parent string, parentStage int, dim string) *ScheduleBuilder {
	b.fuseLevel = At(parent, parentStage, dim)
	b.fusedPairs = append(b.fusedPairs, FusedPair{
		Func1: parent, Stage1: parentStage,
		Func2: selfName, Stage2: selfStage,
		VarName: dim,
	})
	return b
}

// Finalize produces the immutable StageSchedule. The dims list is
// normalized to always end with OutermostSentinel, matching the
// source's synthetic outermost loop (§3, §4.6).
func (b *ScheduleBuilder) Finalize() *StageSchedule {
	dims := make([]Dim, len(b.dims), len(b.dims)+1)
	copy(dims, b.dims)
	if len(dims) == 0 || dims[len(dims)-1].Name != OutermostSentinel {
		dims = append(dims, Dim{Name: OutermostSentinel, Type: ir.LoopSerial})
	}
	return &StageSchedule{
		Dims:          dims,
		Splits:        append([]SplitDirective(nil), b.splits...),
		BoundsHints:   append([]BoundsHint(nil), b.boundsHints...),
		ReductionVars: append([]ReductionVar(nil), b.reductionVars...),
		FusedPairs:    append([]FusedPair(nil), b.fusedPairs...),
		FuseLevel:     b.fuseLevel,
		ComputeLevel:  b.computeLevel,
		StoreLevel:    b.storeLevel,
	}
}

func spliceDims(dims []Dim, at int, replacement []Dim) []Dim {
	out := make([]Dim, 0, len(dims)-1+len(replacement))
	out = append(out, dims[:at]...)
	out = append(out, replacement...)
	out = append(out, dims[at+1:]...)
	return out
}

func removeDims(dims []Dim, a, b int) []Dim {
	if a > b {
		a, b = b, a
	}
	out := make([]Dim, 0, len(dims)-2)
	out = append(out, dims[:a]...)
	out = append(out, dims[a+1:b]...)
	out = append(out, dims[b+1:]...)
	return out
}
