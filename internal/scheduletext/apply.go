package scheduletext

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"loom/internal/ir"
	"loom/internal/pipeline"
)

// Apply executes every directive in prog against builder in sequence,
// returning the first error encountered (an unknown tail-strategy
// keyword, or an empty directive). Producer/dim identifiers are
// canonicalized with strcase, matching pipeline.CanonicalLabel's
// convention, before being handed to the builder. selfName/selfStage
// identify the producer and stage this schedule belongs to, needed to
// record the Func2 side of a compute_with directive's FusedPair.
func Apply(builder *pipeline.ScheduleBuilder, prog *Program, selfName string, selfStage int) error {
	for _, d := range prog.Directives {
		if err := applyOne(builder, d, selfName, selfStage); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(b *pipeline.ScheduleBuilder, d *Directive, selfName string, selfStage int) error {
	switch {
	case d.Split != nil:
		tail, err := tailStrategy(d.Split.Tail)
		if err != nil {
			return err
		}
		b.Split(dim(d.Split.Old), dim(d.Split.Outer), dim(d.Split.Inner), d.Split.Factor, tail)
	case d.Fuse != nil:
		b.Fuse(dim(d.Fuse.Inner), dim(d.Fuse.Outer), dim(d.Fuse.Old))
	case d.Rename != nil:
		b.Rename(dim(d.Rename.Old), dim(d.Rename.New))
	case d.Reorder != nil:
		dims := make([]string, len(d.Reorder.Dims))
		for i, n := range d.Reorder.Dims {
			dims[i] = dim(n)
		}
		b.Reorder(dims...)
	case d.Parallel != nil:
		b.Parallel(dim(d.Parallel.Dim))
	case d.Vectorize != nil:
		b.Vectorize(dim(d.Vectorize.Dim))
	case d.Unroll != nil:
		b.Unroll(dim(d.Unroll.Dim))
	case d.GPUBlocks != nil:
		b.GPUBlocks(dim(d.GPUBlocks.Dim), pipeline.Device(d.GPUBlocks.Device))
	case d.GPUThreads != nil:
		b.GPUThreads(dim(d.GPUThreads.Dim), pipeline.Device(d.GPUThreads.Device))
	case d.Bound != nil:
		var modulus ir.Expr
		if d.Bound.Modulus != nil {
			modulus = ir.NewInt(*d.Bound.Modulus)
		}
		b.BoundsHint(dim(d.Bound.Dim), ir.NewInt(d.Bound.Extent), modulus)
	case d.Reduce != nil:
		b.Reduce(dim(d.Reduce.Name), ir.NewInt(d.Reduce.Min), ir.NewInt(d.Reduce.Extent))
	case d.ComputeAt != nil:
		b.ComputeAt(dim(d.ComputeAt.Producer), int(d.ComputeAt.Stage), dim(d.ComputeAt.Dim))
	case d.StoreAt != nil:
		b.StoreAt(dim(d.StoreAt.Producer), int(d.StoreAt.Stage), dim(d.StoreAt.Dim))
	case d.ComputeRoot:
		b.ComputeRoot()
	case d.ComputeInline:
		b.ComputeInline()
	case d.ComputeWith != nil:
		b.ComputeWith(selfName, selfStage, dim(d.ComputeWith.Parent), int(d.ComputeWith.ParentStage), dim(d.ComputeWith.Dim))
	default:
		return fmt.Errorf("scheduletext: empty directive")
	}
	return nil
}

func dim(name string) string {
	return strcase.ToSnake(name)
}

func tailStrategy(s *string) (pipeline.TailStrategy, error) {
	if s == nil {
		return pipeline.TailAuto, nil
	}
	switch *s {
	case "auto":
		return pipeline.TailAuto, nil
	case "guard_with_if":
		return pipeline.TailGuardWithIf, nil
	case "shift_inwards":
		return pipeline.TailShiftInwards, nil
	case "round_up":
		return pipeline.TailRoundUp, nil
	default:
		return 0, fmt.Errorf("scheduletext: unknown tail_strategy %q", *s)
	}
}
