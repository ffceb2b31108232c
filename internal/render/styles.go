package render

import "github.com/charmbracelet/lipgloss"

// Color constants shared with the dashboard palette.
const (
	ColorBlue   = "#58a6ff"
	ColorGreen  = "#3fb950"
	ColorRed    = "#f85149"
	ColorYellow = "#d29922"
	ColorGray   = "#8b949e"
	ColorBright = "#f0f6fc"
)

// Styles holds the lipgloss styles used by the text renderer.
type Styles struct {
	File     lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Location lipgloss.Style
	Rule     lipgloss.Style
	Reason   lipgloss.Style
	Gutter   lipgloss.Style
	Caret    lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Summary  lipgloss.Style
}

// NewStyles builds the style set on r so color is only emitted when r's
// output supports it.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		File: r.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color(ColorBright)),

		Error: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorRed)),

		Warning: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorYellow)),

		Location: r.NewStyle().
			Foreground(lipgloss.Color(ColorBlue)),

		Rule: r.NewStyle().
			Foreground(lipgloss.Color(ColorGray)),

		Reason: r.NewStyle().
			Foreground(lipgloss.Color(ColorGray)).
			Italic(true),

		Gutter: r.NewStyle().
			Foreground(lipgloss.Color(ColorGray)),

		Caret: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorRed)),

		Success: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorGreen)),

		Failure: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorRed)),

		Summary: r.NewStyle().
			MarginTop(1),
	}
}
