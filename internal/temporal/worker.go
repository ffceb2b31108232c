// Package temporal runs lint batches as Temporal workflows so large
// repositories can be analyzed across several workers.
package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/efebarandurmaz/archlint/internal/lint"
)

// StartWorker creates and starts a Temporal worker.
func StartWorker(c client.Client, taskQueue string, acts *Activities) (worker.Worker, error) {
	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflow(LintWorkflow)
	w.RegisterActivity(acts)

	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	return w, nil
}

// Submit starts LintWorkflow on taskQueue and waits for the merged report.
// The report's duration is the wall time of the whole workflow, since
// per-chunk durations are not carried in activity payloads.
func Submit(ctx context.Context, c client.Client, taskQueue string, input LintInput) (*lint.Report, error) {
	start := time.Now()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{TaskQueue: taskQueue}, LintWorkflow, input)
	if err != nil {
		return nil, fmt.Errorf("start lint workflow: %w", err)
	}
	var out LintOutput
	if err := run.Get(ctx, &out); err != nil {
		return nil, fmt.Errorf("lint workflow %s: %w", run.GetID(), err)
	}
	out.Report.Duration = time.Since(start)
	return &out.Report, nil
}
