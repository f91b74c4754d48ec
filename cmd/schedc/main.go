package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"loom/internal/ir"
	"loom/internal/pipeline"
	"loom/internal/realizer"
	"loom/internal/scheduletext"
)

// targetManifest is the on-disk form of a device-capability manifest,
// loaded with gopkg.in/yaml.v3 (§ AMBIENT STACK "Configuration / target
// capability") the way a real pipeline compiler reads a `-target` flag
// or device manifest instead of hardcoding one.
type targetManifest struct {
	DeviceAPIs []string `yaml:"device_apis"`
	Features   []string `yaml:"features"`
}

func loadTarget(path string) (*pipeline.StaticTarget, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target manifest: %w", err)
	}
	var manifest targetManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse target manifest: %w", err)
	}

	target := &pipeline.StaticTarget{
		DeviceAPIs: map[string]bool{},
		Features:   map[pipeline.Feature]bool{},
	}
	for _, api := range manifest.DeviceAPIs {
		target.DeviceAPIs[api] = true
	}
	for _, f := range manifest.Features {
		switch f {
		case "msan":
			target.Features[pipeline.FeatureMSAN] = true
		case "no_asserts":
			target.Features[pipeline.FeatureNoAsserts] = true
		}
	}
	return target, nil
}

// demoPipeline builds a small blur-like two-stage environment — f an
// input transform, g its consumer — and returns it together with the
// pipeline's output names. The producers carry no schedules; main
// applies f's (inline) and g's (root, parallel) from scheduletext.
func demoPipeline() (*pipeline.Environment, []string) {
	f := &pipeline.Producer{
		Name: "f",
		Args: []string{"x", "y"},
		Init: &pipeline.Definition{
			Values: []ir.Expr{ir.Add(ir.NewVar("x"), ir.NewVar("y"))},
			Args:   []ir.Expr{ir.NewVar("x"), ir.NewVar("y")},
		},
	}
	g := &pipeline.Producer{
		Name: "g",
		Args: []string{"x", "y"},
		Init: &pipeline.Definition{
			Values: []ir.Expr{&ir.Call{Kind: ir.CallProducer, Name: "f", Args: []ir.Expr{ir.NewVar("x"), ir.NewVar("y")}}},
			Args:   []ir.Expr{ir.NewVar("x"), ir.NewVar("y")},
		},
	}
	return pipeline.NewEnvironment(f, g), []string{"g"}
}

func applySchedule(p *pipeline.Producer, source string) error {
	prog, err := scheduletext.Parse(source)
	if err != nil {
		return err
	}
	builder := pipeline.NewScheduleBuilder(p.Args...)
	if err := scheduletext.Apply(builder, prog, p.Name, 0); err != nil {
		return err
	}
	p.Init.Schedule = builder.Finalize()
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: schedc <target.yaml>")
		os.Exit(1)
	}

	target, err := loadTarget(os.Args[1])
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	env, outputs := demoPipeline()
	if err := applySchedule(env.Lookup("f"), "compute_inline"); err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}
	if err := applySchedule(env.Lookup("g"), "compute_root\nparallel y"); err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	ctx := realizer.NewContext("demo")
	result, err := realizer.Realize(ctx, env, outputs, target)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	color.Cyan("-- realization order --")
	fmt.Println(result.Order)

	color.Cyan("-- synthesized statement tree --")
	fmt.Println(ir.Print(result.Stmt))

	for _, w := range result.Warnings {
		color.Yellow("%s", w.Error())
	}

	color.Green("✅ realized pipeline %q (compilation %s)", "demo", ctx.ID)
}

func reportError(err error) {
	color.Red("❌ %s", err)
}
