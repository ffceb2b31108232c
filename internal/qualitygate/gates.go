package qualitygate

import (
	"fmt"
	"strings"
)

// Options selects the gates a run is held to.
type Options struct {
	// Strict makes skipped files fail the run.
	Strict bool
	// Cycles makes import cycles fail the run.
	Cycles bool
}

// BuildPipeline constructs the gate pipeline for a check run. Violations
// always fail; skipped files warn unless strict.
func BuildPipeline(opts Options) *Pipeline {
	p := NewPipeline(NewViolationGate())

	skipped := SeverityAdvisory
	if opts.Strict {
		skipped = SeverityRequired
	}
	p.AddGate(NewSkippedGate(skipped))

	if opts.Cycles {
		p.AddGate(NewCycleGate(SeverityRequired))
	}
	return p
}

// ViolationGate fails when any file broke a rule.
type ViolationGate struct{}

func NewViolationGate() *ViolationGate { return &ViolationGate{} }

func (g *ViolationGate) Name() string           { return "violations" }
func (g *ViolationGate) Severity() GateSeverity { return SeverityRequired }
func (g *ViolationGate) Evaluate(ctx *EvalContext) *GateResult {
	r := &GateResult{Name: g.Name(), Severity: g.Severity()}
	s := ctx.Report.Summary
	if s.Violations == 0 {
		r.Status = GatePassed
		r.Message = "no violations"
		return r
	}
	r.Status = GateFailed
	r.Message = fmt.Sprintf("%d violations in %d files", s.Violations, s.FilesWithViolations)
	return r
}

// SkippedGate reports files that could not be analyzed.
type SkippedGate struct {
	severity GateSeverity
}

func NewSkippedGate(severity GateSeverity) *SkippedGate {
	return &SkippedGate{severity: severity}
}

func (g *SkippedGate) Name() string           { return "skipped" }
func (g *SkippedGate) Severity() GateSeverity { return g.severity }
func (g *SkippedGate) Evaluate(ctx *EvalContext) *GateResult {
	r := &GateResult{Name: g.Name(), Severity: g.severity}
	if ctx.Report.Summary.Skipped == 0 {
		r.Status = GatePassed
		r.Message = "all files analyzed"
		return r
	}
	r.Status = GateFailed
	r.Message = fmt.Sprintf("%d files skipped", ctx.Report.Summary.Skipped)
	for _, res := range ctx.Report.Results {
		if res.Skipped() {
			r.Details = append(r.Details, res.FilePath+": "+res.Error.Error())
		}
	}
	return r
}

// CycleGate fails when the import graph has cycles.
type CycleGate struct {
	severity GateSeverity
}

func NewCycleGate(severity GateSeverity) *CycleGate {
	return &CycleGate{severity: severity}
}

func (g *CycleGate) Name() string           { return "cycles" }
func (g *CycleGate) Severity() GateSeverity { return g.severity }
func (g *CycleGate) Evaluate(ctx *EvalContext) *GateResult {
	r := &GateResult{Name: g.Name(), Severity: g.severity}
	if len(ctx.Cycles) == 0 {
		r.Status = GatePassed
		r.Message = "no import cycles"
		return r
	}
	r.Status = GateFailed
	r.Message = fmt.Sprintf("%d import cycles", len(ctx.Cycles))
	for _, c := range ctx.Cycles {
		r.Details = append(r.Details, strings.Join(c, " -> "))
	}
	return r
}
