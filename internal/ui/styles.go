// Package ui draws the client's frames and notifications in the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Primary     = lipgloss.Color("#101F38")
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#8a94a6")
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Styles is the set of styles one Terminal renders with.
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	NavLink   lipgloss.Style
	NavActive lipgloss.Style
	Content   lipgloss.Style
	Muted     lipgloss.Style

	Badge map[Level]lipgloss.Style
	Toast map[Level]lipgloss.Style
}

// NewStyles builds styles bound to r so color output follows r's terminal.
func NewStyles(r *lipgloss.Renderer) Styles {
	levelColor := map[Level]lipgloss.TerminalColor{
		LevelSuccess: Success,
		LevelInfo:    Info,
		LevelWarning: Warning,
		LevelError:   Destructive,
		LevelPending: Muted,
	}
	badge := make(map[Level]lipgloss.Style, len(levelColor))
	toast := make(map[Level]lipgloss.Style, len(levelColor))
	for lvl, c := range levelColor {
		badge[lvl] = r.NewStyle().Foreground(c).Bold(true)
		toast[lvl] = r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Padding(0, 1)
	}
	return Styles{
		Header: r.NewStyle().
			Background(Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Title: r.NewStyle().
			Foreground(Accent).
			Bold(true),
		NavLink: r.NewStyle().
			Foreground(Muted).
			Padding(0, 1),
		NavActive: r.NewStyle().
			Foreground(Accent).
			Underline(true).
			Padding(0, 1),
		Content: r.NewStyle().
			Padding(1, 2),
		Muted: r.NewStyle().
			Foreground(Muted),
		Badge: badge,
		Toast: toast,
	}
}
