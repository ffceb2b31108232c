package lint

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/efebarandurmaz/archlint/internal/observability"
	"github.com/efebarandurmaz/archlint/internal/rules"
	"github.com/efebarandurmaz/archlint/internal/scan"
	"github.com/efebarandurmaz/archlint/pkg/treesitter"
)

// Analyzer runs the single-file pipeline: read, parse, extract, evaluate.
// It holds only shared read-only state and is safe for concurrent use.
type Analyzer struct {
	cfg      *rules.Config
	grammars *treesitter.Registry
	logger   *slog.Logger

	// read is swapped in tests to inject failures.
	read func(path string) ([]byte, error)
}

// NewAnalyzer creates an analyzer for cfg. A nil logger uses slog.Default().
func NewAnalyzer(cfg *rules.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:      cfg,
		grammars: treesitter.NewRegistry(),
		logger:   logger,
		read:     readFile,
	}
}

// Config returns the rule configuration the analyzer evaluates.
func (a *Analyzer) Config() *rules.Config { return a.cfg }

// Analyze reads and analyzes one file. It never returns an error: IO and
// parse failures, and panics, are reported in the result.
func (a *Analyzer) Analyze(ctx context.Context, path string) (res AnalysisResult) {
	_, span := observability.StartFileSpan(ctx, path)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis panicked", "path", path, "panic", r)
			res = AnalysisResult{
				FilePath: path,
				Error:    &FileError{Kind: FileErrorInternal, Message: fmt.Sprintf("panic: %v", r)},
			}
		}
		failure := ""
		if res.Error != nil {
			failure = res.Error.Error()
		}
		observability.RecordFileResult(span, len(res.Imports), res.Functions, len(res.Violations), failure)
	}()

	src, err := a.read(path)
	if err != nil {
		a.logger.Warn("skipping unreadable file", "path", path, "error", err)
		return AnalysisResult{
			FilePath: path,
			Error:    &FileError{Kind: FileErrorIO, Message: err.Error()},
		}
	}
	return a.AnalyzeSource(path, src)
}

// AnalyzeSource analyzes source text attributed to path.
func (a *Analyzer) AnalyzeSource(path string, src []byte) AnalysisResult {
	tree, err := treesitter.Parse(a.grammars.ForPath(path), src)
	if err != nil {
		fe := &FileError{Kind: FileErrorParse, Message: err.Error()}
		var pe *treesitter.ParseError
		if errors.As(err, &pe) {
			fe.Line, fe.Column, fe.Message = pe.Line, pe.Column, pe.Description
		}
		a.logger.Warn("skipping file with syntax errors", "path", path, "error", err)
		return AnalysisResult{FilePath: path, Error: fe}
	}
	defer tree.Close()

	root := tree.Root()
	imports := scan.Imports(root)
	functions := scan.Functions(root)

	violations := rules.EvaluateFile(path, imports, a.cfg)
	violations = append(violations, rules.EvaluateFunctions(path, functions, a.cfg)...)
	slices.SortStableFunc(violations, func(x, y Violation) int {
		return cmp.Or(cmp.Compare(x.Line, y.Line), cmp.Compare(x.Column, y.Column))
	})
	if violations == nil {
		violations = []Violation{}
	}

	a.logger.Debug("file analyzed", "path", path, "imports", len(imports), "functions", len(functions), "violations", len(violations))
	return AnalysisResult{
		FilePath:   path,
		Violations: violations,
		Imports:    imports,
		Functions:  len(functions),
	}
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}
