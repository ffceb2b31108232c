package lint

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/efebarandurmaz/archlint/internal/observability"
	"github.com/efebarandurmaz/archlint/internal/rules"
)

// Options configures a Coordinator.
type Options struct {
	// Workers limits how many files are analyzed concurrently; each file
	// gets its own goroutine gated by a semaphore of this size
	// (default: runtime.GOMAXPROCS(0)).
	Workers int
	Logger  *slog.Logger
	// Metrics, when set, receives per-file and per-run observations.
	Metrics *observability.LintMetrics
}

// Coordinator analyzes a file set in parallel and merges the results in
// input order.
type Coordinator struct {
	analyzer *Analyzer
	workers  int
	logger   *slog.Logger
	metrics  *observability.LintMetrics
}

// NewCoordinator creates a coordinator evaluating cfg.
func NewCoordinator(cfg *rules.Config, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Coordinator{
		analyzer: NewAnalyzer(cfg, logger),
		workers:  workers,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Workers returns the effective concurrency limit.
func (c *Coordinator) Workers() int { return c.workers }

// Analyzer returns the shared per-file analyzer.
func (c *Coordinator) Analyzer() *Analyzer { return c.analyzer }

// Run analyzes every path and returns one result per path, in the same order.
// ctx carries tracing only; a started batch always runs to completion.
func (c *Coordinator) Run(ctx context.Context, paths []string) *Report {
	start := time.Now()
	ctx, span := observability.StartBatchSpan(ctx, len(paths), c.workers)
	defer span.End()

	results := make([]AnalysisResult, len(paths))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{} // acquire
		go func(idx int, p string) {
			defer wg.Done()
			defer func() { <-sem }() // release
			results[idx] = c.runOne(ctx, p)
		}(i, path)
	}
	wg.Wait()

	report := NewReport(results, time.Since(start))
	observability.RecordBatchResult(span, report.Summary.Analyzed, report.Summary.Skipped, report.Summary.Violations)
	if c.metrics != nil {
		c.metrics.RecordRun(report.Duration, report.Summary.Violations)
	}
	c.logger.Info("lint run complete",
		"files", report.Summary.Files,
		"skipped", report.Summary.Skipped,
		"violations", report.Summary.Violations,
		"workers", c.workers,
		"duration", report.Duration,
	)
	return report
}

// runOne keeps a slot filled even if something outside the analyzer's own
// recovery panics.
func (c *Coordinator) runOne(ctx context.Context, path string) (res AnalysisResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("worker panicked", "path", path, "panic", r)
			res = AnalysisResult{
				FilePath: path,
				Error:    &FileError{Kind: FileErrorInternal, Message: fmt.Sprintf("panic: %v", r)},
			}
		}
		if c.metrics != nil {
			c.metrics.RecordFile(time.Since(start), len(res.Violations), res.Skipped())
		}
	}()
	return c.analyzer.Analyze(ctx, path)
}
