package temporal

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/afero"
	"go.temporal.io/sdk/temporal"

	"github.com/efebarandurmaz/archlint/internal/config"
	"github.com/efebarandurmaz/archlint/internal/discovery"
	"github.com/efebarandurmaz/archlint/internal/lint"
	"github.com/efebarandurmaz/archlint/internal/rules"
)

// ErrTypeInvalidInput marks failures that retrying cannot fix.
const ErrTypeInvalidInput = "InvalidInput"

// Activities holds shared resources injected at worker setup.
type Activities struct {
	Logger *slog.Logger
	// Fs is the filesystem discovery walks (default: the OS filesystem).
	Fs afero.Fs
}

func (a *Activities) logger() *slog.Logger {
	if a != nil && a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// PrepareActivity loads and validates the rule document and lists the files
// to analyze.
func (a *Activities) PrepareActivity(ctx context.Context, input LintInput) (Plan, error) {
	cfg, err := config.LoadRules(input.RulesPath)
	if err != nil {
		return Plan{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	}
	doc, err := json.Marshal(cfg)
	if err != nil {
		return Plan{}, err
	}

	finder, err := discovery.New(a.Fs, discovery.Options{
		Extensions: input.Extensions,
		Exclude:    input.Exclude,
	})
	if err != nil {
		return Plan{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	}
	files, err := finder.Find(input.Root)
	if err != nil {
		return Plan{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	}

	a.logger().Info("prepared lint plan", "root", input.Root, "files", len(files))
	return Plan{Files: files, Rules: doc}, nil
}

// AnalyzeChunkActivity analyzes one chunk with a local coordinator.
func (a *Activities) AnalyzeChunkActivity(ctx context.Context, input ChunkInput) (*lint.Report, error) {
	cfg, err := rules.LoadJSON(input.Rules)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	}
	coord := lint.NewCoordinator(cfg, lint.Options{Workers: input.Workers, Logger: a.logger()})
	report := coord.Run(ctx, input.Files)

	a.logger().Debug("analyzed chunk", "chunk", input.Index, "files", len(input.Files),
		"violations", report.Summary.Violations)
	return report, nil
}
