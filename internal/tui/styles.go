package tui

import "github.com/charmbracelet/lipgloss"

// styles is one palette. The TUI swaps between dark and light on `t`.
type styles struct {
	title    lipgloss.Style
	success  lipgloss.Style
	pending  lipgloss.Style
	accent   lipgloss.Style
	muted    lipgloss.Style
	errText  lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	help     lipgloss.Style
	badge    lipgloss.Style
	stars    lipgloss.Style
	panel    lipgloss.Style
	dialog   lipgloss.Style
}

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func newStyles(dark bool) styles {
	success, pending, accent, border, badgeBg, star := "42", "214", "12", "8", "62", "244"
	if !dark {
		success, pending, accent, border, badgeBg, star = "28", "166", "25", "245", "99", "250"
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		success:  lipgloss.NewStyle().Foreground(lipgloss.Color(success)),
		pending:  lipgloss.NewStyle().Foreground(lipgloss.Color(pending)),
		accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(accent)),
		muted:    lipgloss.NewStyle().Faint(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		help:     lipgloss.NewStyle().Faint(true),
		badge: lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("230")).Background(lipgloss.Color(badgeBg)),
		stars: lipgloss.NewStyle().Foreground(lipgloss.Color(star)),
		panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).Padding(0, 1),
		dialog: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(accent)).Padding(0, 1),
	}
}
