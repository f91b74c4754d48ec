// Package validate implements §4.4: schedule legality checking, run
// after realization order (§4.3) and before loop-nest synthesis (§4.5).
package validate

import (
	"loom/internal/callgraph"
	cerrors "loom/internal/errors"
	"loom/internal/order"
	"loom/internal/pipeline"
)

// Warnings carries non-fatal diagnostics collected during validation;
// the caller decides whether to surface them.
type Warnings struct {
	Items []cerrors.CompilerError
}

func (w *Warnings) add(e cerrors.CompilerError) { w.Items = append(w.Items, e) }

// Validate runs every per-producer and per-group check in §4.4 against
// the realization-order result. outputs names the pipeline's required
// outputs, which must be computed at root (§4.4 "Output constraint").
func Validate(env *pipeline.Environment, res *order.Result, outputs []string, target pipeline.Target) (*Warnings, error) {
	warnings := &Warnings{}

	outputSet := map[string]bool{}
	for _, o := range outputs {
		outputSet[o] = true
	}

	for _, name := range env.Names() {
		p := env.Lookup(name)
		if err := validateProducer(env, p, outputSet[name], target, warnings); err != nil {
			return nil, err
		}
	}

	for _, g := range res.Groups {
		if len(g.Members) < 2 {
			continue
		}
		if err := validateFuseGroup(env, g); err != nil {
			return nil, err
		}
	}

	return warnings, nil
}

func validateProducer(env *pipeline.Environment, p *pipeline.Producer, isOutput bool, target pipeline.Target, warnings *Warnings) error {
	for stageIdx := 0; stageIdx < p.NumStages(); stageIdx++ {
		def := p.Stage(stageIdx)
		if def.Schedule == nil {
			if stageIdx > 0 {
				warnings.add(cerrors.UnscheduledUpdateWarning(p.Name, stageIdx))
			}
			continue
		}
		sched := def.Schedule

		if isOutput && stageIdx == 0 && sched.ComputeLevel.Kind != pipeline.LevelRoot {
			return cerrors.OutputNotRoot(p.Name)
		}

		if sched.ComputeLevel.Kind == pipeline.LevelInline && len(def.Specializations) > 0 {
			return cerrors.InlineWithSpecialization(p.Name, stageIdx)
		}

		if err := checkStoreOutsideCompute(env, p.Name, sched); err != nil {
			return err
		}

		if err := checkSiteLegality(env, p.Name, stageIdx, sched); err != nil {
			return err
		}

		for _, dim := range sched.Dims {
			if dim.Device != pipeline.DeviceHost && !target.SupportsDeviceAPI(string(dim.Device)) {
				return cerrors.UnsupportedDevice(p.Name, dim.Name, string(dim.Device))
			}
		}

		for _, split := range sched.Splits {
			if split.Kind == pipeline.SplitKindSplit && split.Factor <= 0 {
				return cerrors.BadSplitFactor(p.Name, stageIdx, split.Old, split.Factor)
			}
			if stageIdx > 0 && (split.Tail == pipeline.TailShiftInwards || split.Tail == pipeline.TailRoundUp) {
				return cerrors.InvalidTailStrategyForUpdate(p.Name, stageIdx, split.Tail.String())
			}
		}
	}

	if p.IsExtern() {
		for _, arg := range p.Extern.Args {
			if arg.Kind != pipeline.ExternArgProducerInput {
				continue
			}
			input := env.Lookup(arg.ProducerName)
			if input == nil || input.Init.Schedule == nil {
				continue
			}
			if input.Init.Schedule.ComputeLevel.Kind == pipeline.LevelInline {
				return cerrors.ExternInputInline(p.Name, arg.ProducerName)
			}
		}
	}

	return nil
}

// checkStoreOutsideCompute enforces that a producer's store level
// encloses (or equals) its compute level (§4.4 "store/compute nesting").
func checkStoreOutsideCompute(env *pipeline.Environment, name string, sched *pipeline.StageSchedule) error {
	store, compute := sched.StoreLevel, sched.ComputeLevel
	switch {
	case compute.Kind == pipeline.LevelInline:
		if store.Kind != pipeline.LevelInline {
			return cerrors.StoreOutsideCompute(name)
		}
	case compute.Kind == pipeline.LevelRoot:
		if store.Kind != pipeline.LevelRoot {
			return cerrors.StoreOutsideCompute(name)
		}
	case compute.Kind == pipeline.LevelLoop:
		if store.Kind == pipeline.LevelInline {
			return cerrors.StoreOutsideCompute(name)
		}
		caller := env.Lookup(compute.Producer)
		if store.Kind == pipeline.LevelLoop && store.Producer == compute.Producer && store.Stage == compute.Stage &&
			caller != nil && compute.Stage >= 0 && compute.Stage < caller.NumStages() && caller.Stage(compute.Stage).Schedule != nil {
			callerSched := caller.Stage(compute.Stage).Schedule
			storeIdx, computeIdx := dimIndex(callerSched, store.Dim), dimIndex(callerSched, compute.Dim)
			if storeIdx >= 0 && computeIdx >= 0 && storeIdx < computeIdx {
				return cerrors.StoreOutsideCompute(name)
			}
		}
	}
	return nil
}

func dimIndex(sched *pipeline.StageSchedule, name string) int {
	for i, d := range sched.Dims {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// checkSiteLegality verifies a non-inline, non-root compute/store level
// names a loop that actually exists on one of this producer's direct
// callers — the static approximation of "reachable from every call
// site" available before loop nests are synthesized (§9 "conservative
// by construction": this validator errs toward rejecting schedules
// whose legality can't be confirmed without building the nest).
func checkSiteLegality(env *pipeline.Environment, name string, stageIdx int, sched *pipeline.StageSchedule) error {
	for _, level := range []pipeline.LoopLevel{sched.ComputeLevel, sched.StoreLevel} {
		if level.Kind != pipeline.LevelLoop {
			continue
		}
		caller := env.Lookup(level.Producer)
		if caller == nil {
			return cerrors.IllegalSite(name, stageIdx, level.String())
		}
		if !callsName(caller, level.Stage, name) {
			return cerrors.IllegalSite(name, stageIdx, level.String())
		}
		callerSched := caller.Stage(level.Stage).Schedule
		if callerSched == nil || dimIndex(callerSched, level.Dim) < 0 {
			return cerrors.IllegalSite(name, stageIdx, level.String())
		}
	}
	return nil
}

func callsName(caller *pipeline.Producer, stage int, name string) bool {
	for _, c := range callgraph.DirectCalls(caller.Stage(stage)) {
		if c == name {
			return true
		}
	}
	return false
}

func validateFuseGroup(env *pipeline.Environment, g order.FuseGroup) error {
	var refStage *pipeline.StageSchedule
	var refStart int
	var computeLevel pipeline.LoopLevel
	first := true

	for _, name := range g.Members {
		p := env.Lookup(name)
		if p == nil {
			continue
		}
		if p.IsExtern() {
			return cerrors.InvalidFuseMember(name, "extern stages cannot be fused")
		}
		for stageIdx := 0; stageIdx < p.NumStages(); stageIdx++ {
			def := p.Stage(stageIdx)
			sched := def.Schedule
			if sched == nil || sched.FuseLevel.Kind != pipeline.LevelLoop {
				continue
			}
			if sched.ComputeLevel.Kind == pipeline.LevelInline {
				return cerrors.InvalidFuseMember(name, "inline stages cannot be fused")
			}
			if len(def.Specializations) > 0 {
				return cerrors.InvalidFuseMember(name, "a fused stage cannot declare a specialization")
			}

			start := sched.StartFuseIndex()
			if start < 0 {
				return cerrors.InvalidFuseMember(name, "fuse level names a dim absent from this stage")
			}

			if first {
				refStage, refStart, computeLevel, first = sched, start, sched.ComputeLevel, false
				continue
			}
			if !sched.ComputeLevel.Match(computeLevel) {
				return cerrors.InvalidFuseMember(name, "fused members must share one compute site")
			}
			if err := comparePointwise(name, sched, start, refStage, refStart); err != nil {
				return err
			}
		}
	}
	return nil
}

func comparePointwise(name string, sched *pipeline.StageSchedule, start int, ref *pipeline.StageSchedule, refStart int) error {
	a, b := sched.Dims[start:], ref.Dims[refStart:]
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].Type != b[i].Type || a[i].Device != b[i].Device {
			return cerrors.MismatchedFusedDims(name, "<fused parent>", a[i].Name)
		}
	}
	return nil
}
