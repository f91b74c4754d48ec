package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "loom/internal/errors"
	"loom/internal/ir"
	"loom/internal/order"
	"loom/internal/pipeline"
	"loom/internal/validate"
)

func leaf(name string, sched *pipeline.StageSchedule) *pipeline.Producer {
	return &pipeline.Producer{
		Name: name,
		Args: []string{"x"},
		Init: &pipeline.Definition{Values: []ir.Expr{ir.NewInt(0)}, Args: []ir.Expr{ir.NewVar("x")}, Schedule: sched},
	}
}

func callerOf(name, callee string, sched *pipeline.StageSchedule) *pipeline.Producer {
	return &pipeline.Producer{
		Name: name,
		Args: []string{"x"},
		Init: &pipeline.Definition{
			Values:   []ir.Expr{&ir.Call{Kind: ir.CallProducer, Name: callee, Args: []ir.Expr{ir.NewVar("x")}}},
			Args:     []ir.Expr{ir.NewVar("x")},
			Schedule: sched,
		},
	}
}

func computeAndOrder(t *testing.T, env *pipeline.Environment, outputs []string) *order.Result {
	t.Helper()
	res, err := order.Compute(env, outputs)
	require.NoError(t, err)
	return res
}

func TestValidateRejectsNonRootOutput(t *testing.T) {
	f := leaf("f", pipeline.NewScheduleBuilder("x").ComputeInline().Finalize())
	env := pipeline.NewEnvironment(f)
	res := computeAndOrder(t, env, []string{"f"})

	_, err := validate.Validate(env, res, []string{"f"}, pipeline.HostTarget())
	require.Error(t, err)
	assert.IsType(t, cerrors.CompilerError{}, err)
	assert.Equal(t, cerrors.ErrorOutputNotRoot, err.(cerrors.CompilerError).Code)
}

func TestValidateAcceptsRootOutput(t *testing.T) {
	f := leaf("f", pipeline.NewScheduleBuilder("x").ComputeRoot().Finalize())
	env := pipeline.NewEnvironment(f)
	res := computeAndOrder(t, env, []string{"f"})

	warnings, err := validate.Validate(env, res, []string{"f"}, pipeline.HostTarget())
	require.NoError(t, err)
	assert.Empty(t, warnings.Items)
}

func TestValidateRejectsBadSplitFactor(t *testing.T) {
	sched := pipeline.NewScheduleBuilder("x").ComputeRoot().Finalize()
	sched.Splits = append(sched.Splits, pipeline.SplitDirective{Kind: pipeline.SplitKindSplit, Old: "x", Outer: "xo", Inner: "xi", Factor: 0})
	f := leaf("f", sched)
	env := pipeline.NewEnvironment(f)
	res := computeAndOrder(t, env, []string{"f"})

	_, err := validate.Validate(env, res, []string{"f"}, pipeline.HostTarget())
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrorBadSplitFactor, err.(cerrors.CompilerError).Code)
}

func TestValidateRejectsIllegalComputeSite(t *testing.T) {
	f := leaf("f", pipeline.NewScheduleBuilder("x").ComputeAt("g", 0, "nonexistent_dim").Finalize())
	g := callerOf("g", "f", pipeline.NewScheduleBuilder("x").ComputeRoot().Finalize())
	env := pipeline.NewEnvironment(f, g)
	res := computeAndOrder(t, env, []string{"g"})

	_, err := validate.Validate(env, res, []string{"g"}, pipeline.HostTarget())
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrorIllegalSite, err.(cerrors.CompilerError).Code)
}

func TestValidateAcceptsLegalComputeSite(t *testing.T) {
	f := leaf("f", pipeline.NewScheduleBuilder("x").ComputeAt("g", 0, "x").Finalize())
	g := callerOf("g", "f", pipeline.NewScheduleBuilder("x").ComputeRoot().Finalize())
	env := pipeline.NewEnvironment(f, g)
	res := computeAndOrder(t, env, []string{"g"})

	_, err := validate.Validate(env, res, []string{"g"}, pipeline.HostTarget())
	require.NoError(t, err)
}

func TestValidateWarnsOnUnscheduledUpdate(t *testing.T) {
	f := leaf("f", pipeline.NewScheduleBuilder("x").ComputeRoot().Finalize())
	f.Updates = []*pipeline.Definition{{
		Values: []ir.Expr{ir.NewInt(1)},
		Args:   []ir.Expr{ir.NewVar("x")},
	}}
	env := pipeline.NewEnvironment(f)
	res := computeAndOrder(t, env, []string{"f"})

	warnings, err := validate.Validate(env, res, []string{"f"}, pipeline.HostTarget())
	require.NoError(t, err)
	require.Len(t, warnings.Items, 1)
	assert.Equal(t, cerrors.WarningUnscheduledUpdate, warnings.Items[0].Code)
}

func TestValidateRejectsUnsupportedDevice(t *testing.T) {
	sched := pipeline.NewScheduleBuilder("x").ComputeRoot().GPUBlocks("x", "cuda").Finalize()
	f := leaf("f", sched)
	env := pipeline.NewEnvironment(f)
	res := computeAndOrder(t, env, []string{"f"})

	_, err := validate.Validate(env, res, []string{"f"}, pipeline.HostTarget())
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrorUnsupportedDevice, err.(cerrors.CompilerError).Code)
}
