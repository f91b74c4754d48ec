package synth

import (
	"loom/internal/ir"
	"loom/internal/pipeline"
)

// BuildStageBody constructs the core compute step for one non-extern
// definition: a Provide per output channel, storing Values at Args
// (§3 "Definition"). Single-channel producers get one Provide with
// Channel -1 (all channels written together); multi-output producers
// get one Provide per channel so each can be scheduled independently
// downstream.
func BuildStageBody(producerName string, def *pipeline.Definition, numChannels int) ir.Stmt {
	if numChannels <= 1 {
		return &ir.Provide{Name: producerName, Channel: -1, Values: def.Values, Args: def.Args}
	}
	stmts := make([]ir.Stmt, numChannels)
	for c := 0; c < numChannels; c++ {
		stmts[c] = &ir.Provide{Name: producerName, Channel: c, Values: []ir.Expr{def.Values[c]}, Args: def.Args}
	}
	return ir.NewBlock(stmts...)
}

// BuildProducerRealization builds the full produce region for a
// non-extern producer: every stage's loop nest, each bracketed in its
// own ProducerConsumer(IsProducer: true) region and sequenced stage 0
// (init) through the last update (§4.5.2).
func BuildProducerRealization(p *pipeline.Producer, bounds *BoundsEnv) ir.Stmt {
	stmts := make([]ir.Stmt, 0, p.NumStages())
	for stageIdx := 0; stageIdx < p.NumStages(); stageIdx++ {
		def := p.Stage(stageIdx)
		body := BuildStageBody(p.Name, def, len(p.OutputTypes))
		sched := def.Schedule
		if sched == nil {
			sched = pipeline.NewScheduleBuilder().Finalize()
		}
		nest := BuildStageNest(def, sched, bounds, body)
		stmts = append(stmts, &ir.ProducerConsumer{Name: p.Name, IsProducer: true, Body: nest})
	}
	return ir.NewBlock(stmts...)
}

// BuildExternRealization builds the produce region for an extern
// producer: a single call across the ABI boundary, its result bound to
// a fresh variable and asserted zero (ErrorExternStageFailed), and
// optionally bracketed with memory-sanitizer annotation calls when the
// target requests FeatureMSAN (§4.5.2, supplemented from the source's
// extern-stage lowering). Annotation order is significant: outputs are
// annotated "initialized" before the call (so the external routine's
// writes are the ones MSan tracks), then each non-image-param input's
// contents are annotated "initialized" after the call returns — image
// params are excluded because their contents are assumed already
// tracked by the caller that bound them.
func BuildExternRealization(p *pipeline.Producer, target pipeline.Target) ir.Stmt {
	args := externCallArgs(p)
	call := &ir.Call{Kind: ir.CallExtern, Name: p.Extern.Symbol, Args: args}
	resultVar := p.Name + ".extern_result"

	var pre []ir.Stmt
	var post []ir.Stmt
	msan := target != nil && target.HasFeature(pipeline.FeatureMSAN)

	if msan {
		pre = append(pre, msanAnnotate("halide_msan_annotate_memory_is_initialized", p.Name))
	}
	post = append(post, &ir.Assert{
		Cond:    ir.EQ(ir.NewVar(resultVar), ir.NewInt(0)),
		Kind:    ir.ErrorExternStageFailed,
		Message: "extern call to " + p.Extern.Symbol + " for " + p.Name + " returned nonzero",
	})
	if msan {
		for _, arg := range p.Extern.Args {
			if arg.Kind == pipeline.ExternArgProducerInput {
				post = append(post, msanAnnotate("halide_msan_annotate_buffer_is_initialized", arg.ProducerName))
			}
		}
	}

	stmts := append(pre, &ir.LetStmt{Var: resultVar, Value: call, Body: ir.NewBlock(post...)})
	body := ir.NewBlock(stmts...)
	assertion := explicitBoundsAssertion(p)
	if assertion != nil && (target == nil || !target.HasFeature(pipeline.FeatureNoAsserts)) {
		body = ir.NewBlock(assertion, body)
	}
	return &ir.ProducerConsumer{Name: p.Name, IsProducer: true, Body: body}
}

func externCallArgs(p *pipeline.Producer) []ir.Expr {
	args := make([]ir.Expr, 0, len(p.Extern.Args))
	for _, a := range p.Extern.Args {
		switch a.Kind {
		case pipeline.ExternArgScalar:
			args = append(args, a.Scalar)
		case pipeline.ExternArgProducerInput, pipeline.ExternArgBoundBuffer, pipeline.ExternArgImageParam:
			args = append(args, ir.NewVar(a.BufferName))
		}
	}
	return args
}

func msanAnnotate(intrinsic, bufferName string) ir.Stmt {
	return &ir.Evaluate{Value: &ir.Call{Kind: ir.CallIntrinsic, Name: intrinsic, Args: []ir.Expr{ir.NewVar(bufferName)}}}
}

// explicitBoundsAssertion emits the ExplicitBoundsTooSmall runtime
// assertion an extern stage with user-asserted output bounds needs
// (§7 "Runtime errors baked into IR"): if the caller's bounds hint is
// narrower than what was computed, fail at runtime rather than silently
// truncate the extern call's output.
func explicitBoundsAssertion(p *pipeline.Producer) ir.Stmt {
	sched := p.Init.Schedule
	if sched == nil {
		return nil
	}
	for _, h := range sched.BoundsHints {
		if h.Extent == nil {
			continue
		}
		cond := ir.GE(h.Extent, ir.NewVar(h.Name+".extent"))
		return &ir.Assert{
			Cond:    cond,
			Kind:    ir.ErrorExplicitBoundsTooSmall,
			Message: "explicit bounds for " + h.Name + " are smaller than the computed region of " + p.Name,
		}
	}
	return nil
}
