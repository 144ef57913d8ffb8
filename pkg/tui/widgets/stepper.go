package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-go-golems/dipole/pkg/progress"
	"github.com/go-go-golems/dipole/pkg/tui/styles"
)

// Stepper renders the four-phase deploy flow as a horizontal strip:
//
//	✓ Plan ── ● Deploy ── ○ Verify ── ○ Preview
type Stepper struct {
	state progress.State
	theme styles.Theme
}

func NewStepper(state progress.State) Stepper {
	return Stepper{state: state, theme: styles.DefaultTheme()}
}

func (s Stepper) Render() string {
	parts := make([]string, 0, 4)
	for step := progress.StepPlan; step <= progress.StepPreview; step++ {
		parts = append(parts, s.renderStep(step))
	}
	sep := s.theme.StepIdle.Render(" ── ")
	return strings.Join(parts, sep)
}

func (s Stepper) renderStep(step int) string {
	name := progress.StepName(step)

	var icon string
	var style lipgloss.Style
	switch {
	case step < s.state.Step,
		step == s.state.Step && s.state.Status == progress.StatusCompleted:
		icon, style = "✓", s.theme.StepCompleted
	case step == s.state.Step && s.state.Status == progress.StatusFailed:
		icon, style = "✗", s.theme.StepFailed
	case step == s.state.Step && s.state.Status == progress.StatusActive:
		icon, style = "●", s.theme.StepActive
	default:
		icon, style = "○", s.theme.StepIdle
	}

	return style.Render(icon + " " + name)
}
