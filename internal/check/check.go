// Package check wires rule loading, discovery, the parallel analysis, the
// import graph and the quality gates into a single run. The CLI, watch mode
// and the MCP server all go through Run.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/efebarandurmaz/archlint/internal/config"
	"github.com/efebarandurmaz/archlint/internal/depgraph"
	"github.com/efebarandurmaz/archlint/internal/discovery"
	"github.com/efebarandurmaz/archlint/internal/lint"
	"github.com/efebarandurmaz/archlint/internal/observability"
	"github.com/efebarandurmaz/archlint/internal/qualitygate"
	"github.com/efebarandurmaz/archlint/internal/rules"
)

// Request describes one check run.
type Request struct {
	// Root is a project directory or a single file.
	Root string
	// RulesPath defaults to RulesPathFor(Root, "").
	RulesPath string
	// Rules, when set, is used instead of loading RulesPath.
	Rules *rules.Config

	Extensions []string
	Exclude    []string
	Workers    int
	// Cycles enables the import cycle gate.
	Cycles bool
	// Strict makes skipped files fail the run.
	Strict bool

	Logger  *slog.Logger
	Metrics *observability.LintMetrics
	Fs      afero.Fs
}

// Result is the outcome of a check run.
type Result struct {
	Rules  *rules.Config
	Report *lint.Report
	Graph  *depgraph.Graph
	// Cycles is nil unless the request enabled cycle detection.
	Cycles [][]string
	Gates  *qualitygate.PipelineResult
}

// ExitCode is 0 when every required gate passed and 1 otherwise.
func (r *Result) ExitCode() int {
	if r.Gates.Passed() {
		return 0
	}
	return 1
}

// RulesPathFor resolves the rule document name against root, or against the
// directory of root when root is a file. An empty name means architect.json
// and absolute names are returned unchanged.
func RulesPathFor(root, name string) string {
	if name == "" {
		name = config.DefaultRulesFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}
	return filepath.Join(dir, name)
}

// Run loads the rules, discovers files, analyzes them and evaluates the
// gates. Errors are fatal configuration or discovery failures; per-file
// problems are recorded in the report instead.
func Run(ctx context.Context, req Request) (*Result, error) {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := req.Rules
	if cfg == nil {
		path := req.RulesPath
		if path == "" {
			path = RulesPathFor(req.Root, "")
		}
		loaded, err := config.LoadRules(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	finder, err := discovery.New(req.Fs, discovery.Options{
		Extensions: req.Extensions,
		Exclude:    req.Exclude,
	})
	if err != nil {
		return nil, err
	}
	files, err := finder.Find(req.Root)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	logger.Debug("discovered files", "root", req.Root, "files", len(files))

	coord := lint.NewCoordinator(cfg, lint.Options{
		Workers: req.Workers,
		Logger:  logger,
		Metrics: req.Metrics,
	})
	report := coord.Run(ctx, files)

	return Evaluate(ctx, cfg, report, req), nil
}

// Evaluate builds the import graph for report and runs the gates. It is
// split from Run so reports produced elsewhere, such as by a distributed
// workflow, are judged the same way.
func Evaluate(ctx context.Context, cfg *rules.Config, report *lint.Report, req Request) *Result {
	root := req.Root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	// Reports from distributed runs carry absolute paths; the root must be
	// in the same form or root-relative specifiers cannot resolve.
	if !filepath.IsAbs(root) && len(report.Results) > 0 && filepath.IsAbs(report.Results[0].FilePath) {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	_, span := observability.StartGraphSpan(ctx, "build", len(report.Results))
	g := depgraph.Build(report, root)
	span.End()

	res := &Result{Rules: cfg, Report: report, Graph: g}
	if req.Cycles {
		res.Cycles = g.Stats.Cycles
		if res.Cycles == nil {
			res.Cycles = [][]string{}
		}
	}
	res.Gates = qualitygate.BuildPipeline(qualitygate.Options{
		Strict: req.Strict,
		Cycles: req.Cycles,
	}).Run(&qualitygate.EvalContext{Report: report, Cycles: res.Cycles})
	return res
}
