package dash

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/boxbench/boxbench/internal/ui"
)

// Styles for the dashboard panes. The palette sticks to ANSI colors so the
// dashboard degrades gracefully on basic terminals.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorPrimary).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Padding(0, 1)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorMuted).
			Padding(0, 1).
			Width(menuWidth)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary)

	menuSelectedStyle = lipgloss.NewStyle().
				Foreground(ui.ColorInfo).
				Bold(true)

	contentStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorMuted).
			Padding(0, 1)

	statusRunningStyle   = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	statusCompletedStyle = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	statusFailedStyle    = lipgloss.NewStyle().Foreground(ui.ColorError)
	mutedStyle           = lipgloss.NewStyle().Foreground(ui.ColorMuted)
)
