// Package qualitygate decides whether a lint run passes. Each gate inspects
// the report and votes; required gates fail the run, advisory gates only
// warn.
package qualitygate

import (
	"fmt"

	"github.com/efebarandurmaz/archlint/internal/lint"
)

// GateStatus represents the result of a quality gate check.
type GateStatus string

const (
	GatePassed  GateStatus = "passed"
	GateFailed  GateStatus = "failed"
	GateWarning GateStatus = "warning"
)

// GateSeverity indicates how a gate failure affects the run.
type GateSeverity string

const (
	SeverityRequired GateSeverity = "required" // fails the run
	SeverityAdvisory GateSeverity = "advisory" // warning only
)

// GateResult captures the outcome of a single gate evaluation.
type GateResult struct {
	Name     string       `json:"name"`
	Status   GateStatus   `json:"status"`
	Severity GateSeverity `json:"severity"`
	Message  string       `json:"message"`
	Details  []string     `json:"details,omitempty"`
}

// Gate is the interface all quality gates must implement.
type Gate interface {
	Name() string
	Severity() GateSeverity
	Evaluate(ctx *EvalContext) *GateResult
}

// EvalContext provides data for gate evaluation.
type EvalContext struct {
	Report *lint.Report
	// Cycles is nil when cycle detection did not run.
	Cycles [][]string
}

// PipelineResult captures the complete gate pipeline evaluation.
type PipelineResult struct {
	Status       GateStatus   `json:"status"` // failed if any required gate failed
	Gates        []GateResult `json:"gates"`
	PassedCount  int          `json:"passed_count"`
	FailedCount  int          `json:"failed_count"`
	WarningCount int          `json:"warning_count"`
}

// Passed reports whether the run should exit successfully.
func (r *PipelineResult) Passed() bool { return r.Status != GateFailed }

// Failures returns the messages of failed required gates.
func (r *PipelineResult) Failures() []string {
	var out []string
	for _, g := range r.Gates {
		if g.Status == GateFailed {
			out = append(out, g.Message)
		}
	}
	return out
}

// Pipeline orchestrates multiple quality gates in sequence.
type Pipeline struct {
	gates []Gate
}

// NewPipeline creates a new quality gate pipeline.
func NewPipeline(gates ...Gate) *Pipeline {
	return &Pipeline{gates: gates}
}

// AddGate appends a gate to the pipeline.
func (p *Pipeline) AddGate(g Gate) {
	p.gates = append(p.gates, g)
}

// Run evaluates all gates against the provided context. A failing advisory
// gate is downgraded to a warning.
func (p *Pipeline) Run(ctx *EvalContext) *PipelineResult {
	result := &PipelineResult{Status: GatePassed}

	for _, gate := range p.gates {
		gr := gate.Evaluate(ctx)
		if gr.Status == GateFailed && gr.Severity == SeverityAdvisory {
			gr.Status = GateWarning
		}
		result.Gates = append(result.Gates, *gr)

		switch gr.Status {
		case GatePassed:
			result.PassedCount++
		case GateFailed:
			result.FailedCount++
			result.Status = GateFailed
		case GateWarning:
			result.WarningCount++
		}
	}
	return result
}

func (r *PipelineResult) String() string {
	return fmt.Sprintf("%d passed, %d failed, %d warnings [%s]",
		r.PassedCount, r.FailedCount, r.WarningCount, r.Status)
}
