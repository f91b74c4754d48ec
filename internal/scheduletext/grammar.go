// Package scheduletext implements a compact textual mini-language for
// schedule literals (the DOMAIN STACK's participle-grounded front end):
// a line-oriented sequence of directives such as
//
//	split x into (xo, xi) factor 8 tail_strategy guard_with_if
//	parallel xo
//	compute_at(g, 0, y)
//	compute_with(g, 0, x)
//
// that builds a *pipeline.StageSchedule without hand-chaining
// ScheduleBuilder calls — a convenience surface for tests and the demo
// CLI (cmd/schedc), never for the producer expression language itself
// (out of scope per spec.md §1).
package scheduletext

// Program is a full schedule literal: one directive per line.
type Program struct {
	Directives []*Directive `@@*`
}

// Directive is one schedule-language statement. Exactly one alternative
// is populated, participle-style.
type Directive struct {
	Split         *SplitDirective         `  @@`
	Fuse          *FuseDirective          `| @@`
	Rename        *RenameDirective        `| @@`
	Reorder       *ReorderDirective       `| @@`
	Parallel      *NamedDirective         `| "parallel" @@`
	Vectorize     *NamedDirective         `| "vectorize" @@`
	Unroll        *NamedDirective         `| "unroll" @@`
	GPUBlocks     *GPUDirective           `| "gpu_blocks" @@`
	GPUThreads    *GPUDirective           `| "gpu_threads" @@`
	Bound         *BoundDirective         `| @@`
	Reduce        *ReduceDirective        `| @@`
	ComputeAt     *LevelDirective         `| "compute_at" "(" @@ ")"`
	StoreAt       *LevelDirective         `| "store_at" "(" @@ ")"`
	ComputeRoot   bool                    `| @"compute_root"`
	ComputeInline bool                    `| @"compute_inline"`
	ComputeWith   *ComputeWithDirective   `| "compute_with" "(" @@ ")"`
}

// NamedDirective matches a single bare dim name, used by the one-word
// loop-type directives (parallel/vectorize/unroll).
type NamedDirective struct {
	Dim string `@Ident`
}

// GPUDirective names a dim plus the device API string it targets.
type GPUDirective struct {
	Dim    string `@Ident`
	Device string `"@" @Ident`
}

// SplitDirective parses `split <old> into (<outer>, <inner>) factor <n>
// [tail_strategy <strategy>]`.
type SplitDirective struct {
	Old    string  `"split" @Ident "into" "("`
	Outer  string  `@Ident ","`
	Inner  string  `@Ident ")" "factor"`
	Factor int64   `@Int`
	Tail   *string `[ "tail_strategy" @Ident ]`
}

// FuseDirective parses `fuse (<inner>, <outer>) into <old>`.
type FuseDirective struct {
	Inner string `"fuse" "(" @Ident ","`
	Outer string `@Ident ")" "into"`
	Old   string `@Ident`
}

// RenameDirective parses `rename <old> to <new>`.
type RenameDirective struct {
	Old string `"rename" @Ident "to"`
	New string `@Ident`
}

// ReorderDirective parses `reorder <d1>, <d2>, ...` (innermost first).
type ReorderDirective struct {
	Dims []string `"reorder" @Ident { "," @Ident }`
}

// BoundDirective parses `bound <dim> extent <n> [modulus <n>]`.
type BoundDirective struct {
	Dim     string `"bound" @Ident "extent"`
	Extent  int64  `@Int`
	Modulus *int64 `[ "modulus" @Int ]`
}

// ReduceDirective parses `reduce <name> from <min> to <extentExpr>`,
// where extent is given directly as an integer count (the schedule
// literal surface only handles integer-constant reduction extents —
// expression-valued bounds are built programmatically via
// ScheduleBuilder.Reduce when needed).
type ReduceDirective struct {
	Name   string `"reduce" @Ident "from"`
	Min    int64  `@Int "to"`
	Extent int64  `@Int`
}

// LevelDirective names a producer/stage/dim loop-level site, the
// argument form shared by compute_at and store_at.
type LevelDirective struct {
	Producer string `@Ident ","`
	Stage    int64  `@Int ","`
	Dim      string `@Ident`
}

// ComputeWithDirective parses `compute_with(<parent>, <parentStage>, <dim>)`.
type ComputeWithDirective struct {
	Parent      string `@Ident ","`
	ParentStage int64  `@Int ","`
	Dim         string `@Ident`
}
