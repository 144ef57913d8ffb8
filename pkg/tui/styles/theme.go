package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette and base styles shared by the deploy TUI.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color

	Border     lipgloss.Style
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	StepActive    lipgloss.Style
	StepCompleted lipgloss.Style
	StepFailed    lipgloss.Style
	StepIdle      lipgloss.Style

	URL lipgloss.Style
}

// DefaultTheme returns the dipole TUI theme.
func DefaultTheme() Theme {
	primary := lipgloss.Color("#2EC4B6") // Teal
	accent := lipgloss.Color("#FF7F50")  // Coral
	success := lipgloss.Color("#22C55E") // Green
	warning := lipgloss.Color("#EAB308") // Yellow
	errorC := lipgloss.Color("#EF4444")  // Red
	muted := lipgloss.Color("#6B7280")   // Gray
	text := lipgloss.Color("#F9FAFB")    // White
	textDim := lipgloss.Color("#9CA3AF") // Light gray

	return Theme{
		Primary: primary,
		Accent:  accent,
		Success: success,
		Warning: warning,
		Error:   errorC,
		Muted:   muted,
		Text:    text,
		TextDim: textDim,

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(text),

		TitleMuted: lipgloss.NewStyle().
			Foreground(textDim),

		StepActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		StepCompleted: lipgloss.NewStyle().
			Foreground(success),

		StepFailed: lipgloss.NewStyle().
			Bold(true).
			Foreground(errorC),

		StepIdle: lipgloss.NewStyle().
			Foreground(muted),

		URL: lipgloss.NewStyle().
			Underline(true).
			Foreground(accent),
	}
}

// DefaultStyles returns the default theme for convenience.
var DefaultStyles = DefaultTheme()
