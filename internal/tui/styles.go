package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#87CEEB")
	colorMuted  = lipgloss.Color("#6C7086")
	colorPos    = lipgloss.Color("#A6E3A1")
	colorNeg    = lipgloss.Color("#F38BA8")

	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	posStyle     = lipgloss.NewStyle().Foreground(colorPos).Bold(true)
	negStyle     = lipgloss.NewStyle().Foreground(colorNeg).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorNeg)
	selectedRow  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	amountColumn = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
)
