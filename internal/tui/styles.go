package tui

import "github.com/charmbracelet/lipgloss"

// narrowWidth switches lists from table to card rendering.
const narrowWidth = 80

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorMuted   = lipgloss.Color("#6C7086")
	colorError   = lipgloss.Color("#F38BA8")
	colorSuccess = lipgloss.Color("#A6E3A1")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(colorPrimary).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Underline(true).Padding(0, 1)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	labelStyle     = lipgloss.NewStyle().Bold(true)
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	selectedCard   = cardStyle.BorderForeground(colorPrimary)
	overlayStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(1, 2)
)
