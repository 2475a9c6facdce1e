// Package tui provides the interactive confirmation screen shown by
// "bulkfs rename -i" and "bulkfs delete -i". It uses Bubble Tea, Bubbles and
// Lip Gloss.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the TUI.
var (
	primaryColor = lipgloss.Color("#7D56F4")
	accentColor  = lipgloss.Color("#00D9FF")

	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")

	mutedColor  = lipgloss.Color("#666666")
	borderColor = lipgloss.Color("#333333")
)

// Box styles for containers.
var (
	outerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(borderColor)
)

// Text styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	pathStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	successTextStyle = lipgloss.NewStyle().
				Foreground(successColor)

	warningTextStyle = lipgloss.NewStyle().
				Foreground(warningColor)
)

// Button styles for the confirmation prompt.
var (
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(mutedColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	buttonFocusedStyle = buttonStyle.
				Foreground(lipgloss.Color("#FFFFFF")).
				BorderForeground(primaryColor).
				Bold(true)

	dangerButtonFocusedStyle = buttonStyle.
					Foreground(lipgloss.Color("#FFFFFF")).
					BorderForeground(dangerColor).
					Bold(true)
)

// statusStyle picks the colour for a detail status.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "renamed", "deleted":
		return successTextStyle
	case "preview":
		return warningTextStyle
	case "failed":
		return errorTextStyle
	default:
		return mutedTextStyle
	}
}
