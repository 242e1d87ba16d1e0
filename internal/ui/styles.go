package ui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	success   lipgloss.Color
	warning   lipgloss.Color
	danger    lipgloss.Color
	info      lipgloss.Color
}

var (
	lightPalette = palette{
		primary:   lipgloss.Color("#5F5FAF"),
		secondary: lipgloss.Color("#767676"),
		success:   lipgloss.Color("#2E7D32"),
		warning:   lipgloss.Color("#B26A00"),
		danger:    lipgloss.Color("#C62828"),
		info:      lipgloss.Color("#1565C0"),
	}
	darkPalette = palette{
		primary:   lipgloss.Color("#AFAFFF"),
		secondary: lipgloss.Color("#8A8A8A"),
		success:   lipgloss.Color("#87AF87"),
		warning:   lipgloss.Color("#D7AF5F"),
		danger:    lipgloss.Color("#D75F5F"),
		info:      lipgloss.Color("#5FAFD7"),
	}
)

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	box      lipgloss.Style
	errText  lipgloss.Style
	priority map[string]lipgloss.Style
	stat     map[string]lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.primary),
		subtle:   lipgloss.NewStyle().Foreground(p.secondary),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.primary),
		done:     lipgloss.NewStyle().Foreground(p.secondary).Strikethrough(true),
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.secondary).
			Padding(0, 1),
		errText: lipgloss.NewStyle().Foreground(p.danger),
		priority: map[string]lipgloss.Style{
			"high":   lipgloss.NewStyle().Foreground(p.danger),
			"medium": lipgloss.NewStyle().Foreground(p.warning),
			"low":    lipgloss.NewStyle().Foreground(p.success),
		},
		stat: map[string]lipgloss.Style{
			"total":       lipgloss.NewStyle().Bold(true).Foreground(p.primary),
			"completed":   lipgloss.NewStyle().Bold(true).Foreground(p.success),
			"in-progress": lipgloss.NewStyle().Bold(true).Foreground(p.info),
			"pending":     lipgloss.NewStyle().Bold(true).Foreground(p.warning),
			"overdue":     lipgloss.NewStyle().Bold(true).Foreground(p.danger),
		},
	}
}
