package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors. Accent is Spotify green.
const (
	accentColor  = lipgloss.Color("#1DB954")
	doneColor    = lipgloss.Color("#04B575")
	failedColor  = lipgloss.Color("#FF5F5F")
	cautionColor = lipgloss.Color("#FFA500")
	faintColor   = lipgloss.Color("#626262")
)

var theme = newTheme()

// Theme groups the styles each transfer view draws with.
type Theme struct {
	Heading lipgloss.Style
	Done    lipgloss.Style
	Failed  lipgloss.Style
	Caution lipgloss.Style
	Faint   lipgloss.Style
	Card    lipgloss.Style
}

func newTheme() Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return Theme{
		Heading: fg(accentColor).Bold(true).MarginBottom(1),
		Done:    fg(doneColor).Bold(true),
		Failed:  fg(failedColor).Bold(true),
		Caution: fg(cautionColor),
		Faint:   fg(faintColor).Italic(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1),
	}
}

// Success renders s the way completed steps are shown.
func Success(s string) string { return theme.Done.Render(s) }

// Failure renders s the way errors are shown.
func Failure(s string) string { return theme.Failed.Render(s) }

// Muted renders s as secondary text.
func Muted(s string) string { return theme.Faint.Render(s) }
