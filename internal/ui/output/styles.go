package output

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	urlStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(colorGreen)

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	noteStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
