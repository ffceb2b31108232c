package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/archlint/internal/check"
	"github.com/efebarandurmaz/archlint/internal/discovery"
	"github.com/efebarandurmaz/archlint/internal/observability"
	"github.com/efebarandurmaz/archlint/internal/render"
	"github.com/efebarandurmaz/archlint/internal/server"
	"github.com/efebarandurmaz/archlint/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		f           checkFlags
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-run the check whenever source files or the rules change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(f.format)
			if err != nil {
				return err
			}
			req := a.request(rootArg(args), &f)
			req.Metrics = observability.NewLintMetrics()

			root := req.Root
			if info, err := os.Stat(root); err == nil && !info.IsDir() {
				return errors.New("watch needs a directory")
			}
			finder, err := discovery.New(nil, discovery.Options{Extensions: req.Extensions, Exclude: req.Exclude})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr == "" {
				metricsAddr = a.cfg.Watch.MetricsAddr
			}
			status := server.NewStatusServer(version, req.Metrics.Handler())
			if metricsAddr != "" {
				go func() {
					if err := status.ListenAndServe(ctx, metricsAddr); err != nil {
						a.logger.Error("status server", "error", err)
					}
				}()
				a.logger.Info("serving status and metrics", "addr", metricsAddr)
			}

			out := cmd.OutOrStdout()
			runOnce := func(ctx context.Context) {
				res, err := check.Run(ctx, req)
				if err != nil {
					// A broken rule document is reported and the watch goes on.
					a.logger.Error("check failed", "error", err)
					status.RecordError(err)
					return
				}
				status.RecordRun(res)
				if err := render.Write(out, format, res.Report, res.Cycles); err != nil {
					a.logger.Error("render report", "error", err)
				}
			}
			runOnce(ctx)

			w, err := watch.New(watch.Config{
				Root:     root,
				Finder:   finder,
				Triggers: []string{req.RulesPath},
				Debounce: a.cfg.Watch.Debounce,
				Logger:   a.logger,
				OnChange: func(ctx context.Context, changed []string) error {
					a.logger.Info("change detected", "files", len(changed))
					runOnce(ctx)
					return nil
				},
			})
			if err != nil {
				return err
			}
			a.logger.Info("watching", "root", root)
			return w.Run(ctx)
		},
	}
	f.register(cmd)
	f.registerReport(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics, /healthz, /readyz and /status on this address, e.g. :9464")
	return cmd
}
