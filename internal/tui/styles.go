package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// Diagnostic label styles used for one-line messages such as
	// "Found:" and "Run:".
	Success = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Inline(true)
	Failure = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Inline(true)
	Warning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")).Inline(true)
	Info    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")).Inline(true)

	statusStyles = map[string]lipgloss.Style{
		"downloaded": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"copied":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"patched":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"ok":         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		"downloading": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"copying":     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		"missing": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
