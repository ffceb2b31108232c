package temporal

import (
	"encoding/json"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/efebarandurmaz/archlint/internal/lint"
)

// DefaultChunkSize is the number of files each analysis activity receives.
const DefaultChunkSize = 50

// LintInput holds the workflow parameters.
type LintInput struct {
	Root       string
	RulesPath  string
	Extensions []string
	Exclude    []string
	// ChunkSize is the number of files per activity (default DefaultChunkSize).
	ChunkSize int
	// Workers bounds parallelism inside each activity.
	Workers int
}

// Plan is the discovered file set and the validated rule document.
type Plan struct {
	Files []string
	Rules json.RawMessage
}

// ChunkInput is one consecutive slice of the file set.
type ChunkInput struct {
	Index   int
	Files   []string
	Rules   json.RawMessage
	Workers int
}

// LintOutput holds the merged result.
type LintOutput struct {
	Report lint.Report
	Chunks int
}

// LintWorkflow discovers the file set, fans analysis out over fixed-size
// chunks, and merges the partial reports in input order.
func LintWorkflow(ctx workflow.Context, input LintInput) (*LintOutput, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidInput},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	var a *Activities
	var plan Plan
	if err := workflow.ExecuteActivity(ctx, a.PrepareActivity, input).Get(ctx, &plan); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	chunks := Chunk(plan.Files, input.ChunkSize)
	logger.Info("lint fan-out", "files", len(plan.Files), "chunks", len(chunks))

	futures := make([]workflow.Future, len(chunks))
	for i, files := range chunks {
		futures[i] = workflow.ExecuteActivity(ctx, a.AnalyzeChunkActivity, ChunkInput{
			Index:   i,
			Files:   files,
			Rules:   plan.Rules,
			Workers: input.Workers,
		})
	}

	parts := make([]*lint.Report, len(chunks))
	for i, f := range futures {
		var part lint.Report
		if err := f.Get(ctx, &part); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		parts[i] = &part
	}

	merged := lint.Merge(parts...)
	return &LintOutput{Report: *merged, Chunks: len(chunks)}, nil
}

// Chunk splits files into consecutive groups of at most size.
func Chunk(files []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out [][]string
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		out = append(out, files[start:end])
	}
	return out
}
