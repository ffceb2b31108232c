// Package lint runs the per-file analysis pipeline and fans it out across a
// file set.
package lint

import (
	"fmt"
	"time"

	"github.com/efebarandurmaz/archlint/internal/rules"
	"github.com/efebarandurmaz/archlint/internal/scan"
)

// Violation is re-exported so callers rarely need the rules package.
type Violation = rules.Violation

// FileErrorKind classifies why a file could not be analyzed.
type FileErrorKind string

const (
	FileErrorParse    FileErrorKind = "parse"
	FileErrorIO       FileErrorKind = "io"
	FileErrorInternal FileErrorKind = "internal"
)

// FileError is a per-file failure. Line and Column are zero when the failure
// has no source location.
type FileError struct {
	Kind    FileErrorKind `json:"kind" yaml:"kind"`
	Line    int           `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int           `json:"column,omitempty" yaml:"column,omitempty"`
	Message string        `json:"message" yaml:"message"`
}

func (e *FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// AnalysisResult is everything learned about one file.
type AnalysisResult struct {
	FilePath   string        `json:"file" yaml:"file"`
	Violations []Violation   `json:"violations" yaml:"violations"`
	Imports    []scan.Import `json:"imports,omitempty" yaml:"imports,omitempty"`
	Functions  int           `json:"functions" yaml:"functions"`
	Error      *FileError    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Skipped reports whether the file failed before rules could run.
func (r AnalysisResult) Skipped() bool { return r.Error != nil }

// Summary aggregates a report.
type Summary struct {
	Files               int `json:"files" yaml:"files"`
	Analyzed            int `json:"analyzed" yaml:"analyzed"`
	Skipped             int `json:"skipped" yaml:"skipped"`
	FilesWithViolations int `json:"files_with_violations" yaml:"files_with_violations"`
	Violations          int `json:"violations" yaml:"violations"`
}

// Report is the merged output of a run. Results are in input order.
type Report struct {
	Results  []AnalysisResult `json:"results" yaml:"results"`
	Summary  Summary          `json:"summary" yaml:"summary"`
	Duration time.Duration    `json:"-" yaml:"-"`
}

// NewReport builds a report and its summary from ordered results.
func NewReport(results []AnalysisResult, d time.Duration) *Report {
	return &Report{Results: results, Summary: Summarize(results), Duration: d}
}

// Summarize counts files, skips and violations.
func Summarize(results []AnalysisResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Skipped() {
			s.Skipped++
			continue
		}
		s.Analyzed++
		if len(r.Violations) > 0 {
			s.FilesWithViolations++
			s.Violations += len(r.Violations)
		}
	}
	return s
}

// HasViolations reports whether any file broke a rule.
func (r *Report) HasViolations() bool { return r.Summary.Violations > 0 }

// Violations flattens all violations in result order.
func (r *Report) Violations() []Violation {
	out := make([]Violation, 0, r.Summary.Violations)
	for _, res := range r.Results {
		out = append(out, res.Violations...)
	}
	return out
}

// Merge concatenates partial reports in the order given, as produced by
// distributed runs over consecutive chunks.
func Merge(parts ...*Report) *Report {
	var results []AnalysisResult
	var d time.Duration
	for _, p := range parts {
		if p == nil {
			continue
		}
		results = append(results, p.Results...)
		d = max(d, p.Duration)
	}
	return NewReport(results, d)
}
