package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"loom/internal/ir"
	"loom/internal/pipeline"
)

func TestEnvironmentPreservesInsertionOrder(t *testing.T) {
	a := &pipeline.Producer{Name: "a", Init: &pipeline.Definition{Values: []ir.Expr{ir.NewInt(0)}}}
	b := &pipeline.Producer{Name: "b", Init: &pipeline.Definition{Values: []ir.Expr{ir.NewInt(0)}}}
	env := pipeline.NewEnvironment(a, b)

	assert.Equal(t, []string{"a", "b"}, env.Names())
	assert.Same(t, a, env.Lookup("a"))
	assert.True(t, env.Has("b"))
	assert.False(t, env.Has("c"))
	assert.Equal(t, 2, env.Len())
}

func TestEnvironmentAddReplacesWithoutReordering(t *testing.T) {
	a1 := &pipeline.Producer{Name: "a"}
	a2 := &pipeline.Producer{Name: "a"}
	b := &pipeline.Producer{Name: "b"}
	env := pipeline.NewEnvironment(a1, b)
	env.Add(a2)

	assert.Equal(t, []string{"a", "b"}, env.Names())
	assert.Same(t, a2, env.Lookup("a"))
}

func TestCanonicalLabelUsesSnakeCase(t *testing.T) {
	assert.Equal(t, "blur.tile_x", pipeline.CanonicalLabel("blur", "TileX"))
}

func TestScheduleBuilderFinalizeAppendsOutermostSentinel(t *testing.T) {
	sched := pipeline.NewScheduleBuilder("x", "y").Finalize()
	require.Len(t, sched.Dims, 3)
	assert.Equal(t, pipeline.OutermostSentinel, sched.Dims[2].Name)
}

func TestScheduleBuilderComputeAtDefaultsStoreToSameLevel(t *testing.T) {
	sched := pipeline.NewScheduleBuilder("x").ComputeAt("g", 0, "y").Finalize()
	assert.Equal(t, pipeline.At("g", 0, "y"), sched.ComputeLevel)
	assert.Equal(t, pipeline.At("g", 0, "y"), sched.StoreLevel)
}

func TestScheduleBuilderStoreAtWidensBeyondComputeAt(t *testing.T) {
	sched := pipeline.NewScheduleBuilder("x").ComputeAt("g", 0, "y").StoreAt("g", 0, "z").Finalize()
	assert.Equal(t, pipeline.At("g", 0, "y"), sched.ComputeLevel)
	assert.Equal(t, pipeline.At("g", 0, "z"), sched.StoreLevel)
}

func TestLoopLevelMatchTreatsAllRootsEqual(t *testing.T) {
	assert.True(t, pipeline.Root().Match(pipeline.Root()))
	assert.False(t, pipeline.Root().Match(pipeline.Inline()))
	assert.True(t, pipeline.At("f", 0, "x").Match(pipeline.At("f", 0, "x")))
	assert.False(t, pipeline.At("f", 0, "x").Match(pipeline.At("f", 0, "y")))
}

// targetManifest mirrors cmd/schedc's YAML target-manifest shape, used
// here to exercise StaticTarget the same way the demo CLI builds one.
type targetManifest struct {
	DeviceAPIs []string `yaml:"device_apis"`
	Features   []string `yaml:"features"`
}

func TestStaticTargetFromYAMLManifest(t *testing.T) {
	var manifest targetManifest
	err := yaml.Unmarshal([]byte("device_apis:\n  - cuda\nfeatures:\n  - msan\n"), &manifest)
	require.NoError(t, err)

	target := &pipeline.StaticTarget{DeviceAPIs: map[string]bool{}, Features: map[pipeline.Feature]bool{}}
	for _, api := range manifest.DeviceAPIs {
		target.DeviceAPIs[api] = true
	}
	for _, f := range manifest.Features {
		if f == "msan" {
			target.Features[pipeline.FeatureMSAN] = true
		}
	}

	assert.True(t, target.SupportsDeviceAPI("cuda"))
	assert.False(t, target.SupportsDeviceAPI("opencl"))
	assert.True(t, target.SupportsDeviceAPI(""))
	assert.True(t, target.HasFeature(pipeline.FeatureMSAN))
	assert.False(t, target.HasFeature(pipeline.FeatureNoAsserts))
}

func TestHostTargetSupportsOnlyHost(t *testing.T) {
	target := pipeline.HostTarget()
	assert.True(t, target.SupportsDeviceAPI(""))
	assert.False(t, target.SupportsDeviceAPI("cuda"))
}
