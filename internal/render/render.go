// Package render writes lint reports as styled text, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/efebarandurmaz/archlint/internal/lint"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// Document is the machine-readable form of a run.
type Document struct {
	Summary    lint.Summary          `json:"summary" yaml:"summary"`
	DurationMS int64                 `json:"duration_ms" yaml:"duration_ms"`
	Results    []lint.AnalysisResult `json:"results" yaml:"results"`
	Cycles     [][]string            `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// NewDocument wraps a report and the import cycles found in it.
func NewDocument(report *lint.Report, cycles [][]string) Document {
	return Document{
		Summary:    report.Summary,
		DurationMS: report.Duration.Milliseconds(),
		Results:    report.Results,
		Cycles:     cycles,
	}
}

// Write renders report to w in the given format.
func Write(w io.Writer, format Format, report *lint.Report, cycles [][]string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(report, cycles)); err != nil {
			return fmt.Errorf("encoding json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(report, cycles)); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return NewText(w).Write(report, cycles)
	}
	return fmt.Errorf("unknown format %q", format)
}

// Text renders reports for humans: each violation with its source line and a
// caret under the reported column.
type Text struct {
	w      io.Writer
	styles *Styles
	// ReadFile loads sources for excerpts. Errors drop the excerpt.
	ReadFile func(path string) ([]byte, error)
}

// NewText creates a text renderer. Color is enabled only when w is a
// terminal.
func NewText(w io.Writer) *Text {
	return &Text{
		w:        w,
		styles:   NewStyles(lipgloss.NewRenderer(w)),
		ReadFile: os.ReadFile,
	}
}

// Write prints violations grouped by file, skipped files, cycles, and a
// summary line.
func (t *Text) Write(report *lint.Report, cycles [][]string) error {
	var b strings.Builder
	s := t.styles

	for _, res := range report.Results {
		if res.Error != nil {
			fmt.Fprintf(&b, "%s %s skipped: %s\n", s.Warning.Render("!"), s.File.Render(res.FilePath), res.Error.Error())
			continue
		}
		if len(res.Violations) == 0 {
			continue
		}

		fmt.Fprintln(&b, s.File.Render(res.FilePath))
		lines := t.sourceLines(res.FilePath)
		for _, v := range res.Violations {
			t.writeViolation(&b, v, lines)
		}
		b.WriteString("\n")
	}

	for _, c := range cycles {
		if len(c) == 0 {
			continue
		}
		path := append(slices.Clone(c), c[0])
		fmt.Fprintf(&b, "%s import cycle: %s\n", s.Error.Render("x"), strings.Join(path, " -> "))
	}

	b.WriteString(t.summary(report, len(cycles)))
	b.WriteString("\n")

	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Text) writeViolation(b *strings.Builder, v lint.Violation, lines []string) {
	s := t.styles
	loc := s.Location.Render(fmt.Sprintf("%d:%d", v.Line, v.Column))
	fmt.Fprintf(b, "  %s %s %s %s\n", s.Error.Render("x"), loc, v.Message, s.Rule.Render("["+v.Rule+"]"))

	if v.Line >= 1 && v.Line <= len(lines) {
		src := strings.TrimRight(lines[v.Line-1], "\r")
		num := fmt.Sprintf("%d", v.Line)
		pad := strings.Repeat(" ", len(num))
		fmt.Fprintf(b, "    %s %s\n", s.Gutter.Render(num+" |"), src)
		fmt.Fprintf(b, "    %s %s%s\n", s.Gutter.Render(pad+" |"), caretIndent(src, v.Column), s.Caret.Render("^"))
	}
	if v.Reason != "" {
		fmt.Fprintf(b, "    %s\n", s.Reason.Render("reason: "+v.Reason))
	}
}

// caretIndent reproduces the whitespace before column so that the caret
// lines up with tab-indented source.
func caretIndent(line string, column int) string {
	n := min(max(column-1, 0), len(line))
	var b strings.Builder
	for _, r := range line[:n] {
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func (t *Text) sourceLines(path string) []string {
	if t.ReadFile == nil {
		return nil
	}
	data, err := t.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(string(data), "\n")
}

func (t *Text) summary(report *lint.Report, cycles int) string {
	s := t.styles
	sum := report.Summary
	detail := fmt.Sprintf("%d files, %d analyzed, %d skipped, %s", sum.Files, sum.Analyzed, sum.Skipped, report.Duration.Round(time.Millisecond))

	if sum.Violations == 0 && cycles == 0 {
		return s.Summary.Render(s.Success.Render("no violations") + " (" + detail + ")")
	}
	head := fmt.Sprintf("%d violations in %d files", sum.Violations, sum.FilesWithViolations)
	if cycles > 0 {
		head += fmt.Sprintf(", %d import cycles", cycles)
	}
	return s.Summary.Render(s.Failure.Render(head) + " (" + detail + ")")
}
