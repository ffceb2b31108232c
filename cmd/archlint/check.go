package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	temporalclient "go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/efebarandurmaz/archlint/internal/check"
	"github.com/efebarandurmaz/archlint/internal/config"
	"github.com/efebarandurmaz/archlint/internal/graph/neo4j"
	"github.com/efebarandurmaz/archlint/internal/observability"
	"github.com/efebarandurmaz/archlint/internal/qualitygate"
	"github.com/efebarandurmaz/archlint/internal/render"
	temporalmod "github.com/efebarandurmaz/archlint/internal/temporal"
)

// checkFlags are shared by check, watch and graph. Zero values fall back to
// the loaded configuration.
type checkFlags struct {
	rules      string
	workers    int
	format     string
	extensions []string
	exclude    []string
	cycles     bool
	strict     bool
}

func (f *checkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rules, "rules", "", "Rule document (default: architect.json in the project root)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Files analyzed in parallel (default: CPU count)")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "File extensions to analyze (default: .ts,.tsx)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Exclude patterns relative to the root, e.g. generated or **/*.spec.ts")
}

func (f *checkFlags) registerReport(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "text", "Report format: text, json, yaml")
	cmd.Flags().BoolVar(&f.cycles, "cycles", false, "Detect import cycles and fail on them")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail when files cannot be analyzed")
}

// request builds a check request from flags layered over configuration.
func (a *app) request(root string, f *checkFlags) check.Request {
	rulesPath := f.rules
	if rulesPath == "" {
		rulesPath = check.RulesPathFor(root, a.cfg.Analysis.RulesFile)
	}
	req := check.Request{
		Root:       root,
		RulesPath:  rulesPath,
		Extensions: a.cfg.Analysis.Extensions,
		Exclude:    append(append([]string{}, a.cfg.Analysis.Exclude...), f.exclude...),
		Workers:    a.cfg.Analysis.Workers,
		Cycles:     f.cycles,
		Strict:     f.strict || a.cfg.Analysis.Strict,
		Logger:     a.logger,
	}
	if len(f.extensions) > 0 {
		req.Extensions = f.extensions
	}
	if f.workers > 0 {
		req.Workers = f.workers
	}
	return req
}

func rootArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		f           checkFlags
		exportGraph bool
		distributed bool
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check a project or file against its architecture rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(f.format)
			if err != nil {
				return err
			}
			req := a.request(rootArg(args), &f)

			var res *check.Result
			if distributed {
				res, err = a.runDistributed(cmd.Context(), req)
			} else {
				res, err = check.Run(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			if err := render.Write(cmd.OutOrStdout(), format, res.Report, res.Cycles); err != nil {
				return err
			}
			if exportGraph {
				if err := a.exportGraph(cmd.Context(), res); err != nil {
					return err
				}
			}
			for _, g := range res.Gates.Gates {
				if g.Status != qualitygate.GatePassed {
					a.logger.Debug("gate", "name", g.Name, "status", g.Status, "message", g.Message)
				}
			}
			if code := res.ExitCode(); code != exitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}
	f.register(cmd)
	f.registerReport(cmd)
	cmd.Flags().BoolVar(&exportGraph, "export-graph", false, "Store the import graph in Neo4j (graph.uri)")
	cmd.Flags().BoolVar(&distributed, "distributed", false, "Run the analysis as a Temporal workflow (temporal.*)")
	return cmd
}

// runDistributed validates the rules locally, then lets the worker fleet
// analyze the files and judges the merged report here.
func (a *app) runDistributed(ctx context.Context, req check.Request) (*check.Result, error) {
	cfg, err := config.LoadRules(req.RulesPath)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return nil, err
	}
	rulesPath, err := filepath.Abs(req.RulesPath)
	if err != nil {
		return nil, err
	}

	c, err := temporalclient.Dial(temporalclient.Options{
		HostPort:  a.cfg.Temporal.Host,
		Namespace: a.cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(a.logger),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	defer c.Close()

	report, err := temporalmod.Submit(ctx, c, a.cfg.Temporal.TaskQueue, temporalmod.LintInput{
		Root:       root,
		RulesPath:  rulesPath,
		Extensions: req.Extensions,
		Exclude:    req.Exclude,
		ChunkSize:  a.cfg.Temporal.ChunkSize,
		Workers:    req.Workers,
	})
	if err != nil {
		return nil, err
	}
	req.Root = root
	return check.Evaluate(ctx, cfg, report, req), nil
}

func (a *app) exportGraph(ctx context.Context, res *check.Result) error {
	gc := a.cfg.Graph
	if gc.URI == "" {
		return errors.New("--export-graph needs graph.uri (ARCHLINT_GRAPH_URI)")
	}
	ctx, span := observability.StartGraphSpan(ctx, "export", len(res.Graph.Nodes))
	defer span.End()

	repo, err := neo4j.NewNeo4j(ctx, gc.URI, gc.Username, gc.Password)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	defer repo.Close(ctx)

	if err := repo.StoreGraph(ctx, res.Graph); err != nil {
		observability.RecordError(span, err)
		return err
	}
	a.logger.Info("exported import graph", "uri", gc.URI,
		"nodes", len(res.Graph.Nodes), "edges", len(res.Graph.Edges))
	return nil
}

func writeLine(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
