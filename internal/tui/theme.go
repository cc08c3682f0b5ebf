package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText   = lipgloss.Color("#cdd6f4")
	colorMuted  = lipgloss.Color("#a6adc8")
	colorBorder = lipgloss.Color("#45475a")
	colorAccent = lipgloss.Color("#74c7ec")
	colorGreen  = lipgloss.Color("#a6e3a1")
	colorRed    = lipgloss.Color("#f38ba8")
	colorPeach  = lipgloss.Color("#fab387")

	appStyle = lipgloss.NewStyle().Foreground(colorText).Padding(1, 2)

	titleStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	numberStyle = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)

	posterStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Foreground(colorMuted).
			Padding(1, 4)

	questionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

	correctStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorAccent).
			Padding(0, 3)
	buttonDisabledStyle = buttonStyle.
				BorderForeground(colorBorder).
				Foreground(colorBorder)

	alertStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(colorPeach).
			Padding(1, 2)
)
