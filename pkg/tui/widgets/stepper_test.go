package widgets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/dipole/pkg/progress"
)

func TestStepper_ActiveDeploy(t *testing.T) {
	out := NewStepper(progress.State{Step: progress.StepDeploy, Status: progress.StatusActive}).Render()
	require.Contains(t, out, "✓ Plan")
	require.Contains(t, out, "● Deploy")
	require.Contains(t, out, "○ Verify")
	require.Contains(t, out, "○ Preview")
}

func TestStepper_FailedVerify(t *testing.T) {
	out := NewStepper(progress.State{Step: progress.StepVerify, Status: progress.StatusFailed}).Render()
	require.Contains(t, out, "✓ Deploy")
	require.Contains(t, out, "✗ Verify")
}

func TestStepper_AllIdle(t *testing.T) {
	out := NewStepper(progress.State{Step: progress.StepNone, Status: progress.StatusIdle}).Render()
	require.NotContains(t, out, "✓")
	require.NotContains(t, out, "●")
}
