package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorCyan   = lipgloss.Color("#00FFFF")
	ColorGreen  = lipgloss.Color("#00FF00")
	ColorYellow = lipgloss.Color("#FFFF00")
	ColorRed    = lipgloss.Color("#FF0000")
	ColorWhite  = lipgloss.Color("#FFFFFF")
	ColorGray   = lipgloss.Color("8")
)

var (
	LabelStyle = lipgloss.NewStyle().Foreground(ColorGray)
	ValueStyle = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
)
