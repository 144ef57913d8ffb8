package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_DeployFlowWithURL(t *testing.T) {
	tr := NewTracker()
	require.Equal(t, State{Step: StepNone, Status: StatusIdle}, tr.State())

	tr.Begin(StepDeploy)
	require.Equal(t, State{Step: StepDeploy, Status: StatusActive}, tr.State())

	tr.Advance(StepVerify, StatusActive)
	require.Equal(t, State{Step: StepVerify, Status: StatusActive}, tr.State())

	tr.Advance(StepPreview, StatusCompleted)
	require.Equal(t, State{Step: StepPreview, Status: StatusCompleted}, tr.State())
	require.True(t, tr.State().Terminal())
}

func TestTracker_DeployFlowWithoutURL(t *testing.T) {
	tr := NewTracker()
	tr.Begin(StepDeploy)
	tr.Advance(StepVerify, StatusActive)
	tr.Advance(StepVerify, StatusCompleted)
	require.Equal(t, State{Step: StepVerify, Status: StatusCompleted}, tr.State())
}

func TestTracker_Monotonic(t *testing.T) {
	tr := NewTracker()
	tr.Begin(StepDeploy)
	tr.Advance(StepVerify, StatusActive)

	// Regressions are ignored.
	tr.Advance(StepPlan, StatusActive)
	require.Equal(t, StepVerify, tr.State().Step)

	tr.Advance(StepVerify, StatusActive)
	require.Equal(t, StatusActive, tr.State().Status)
}

func TestTracker_NoIdleToCompleted(t *testing.T) {
	tr := NewTracker()
	st := tr.Advance(StepPlan, StatusCompleted)
	require.Equal(t, StatusActive, st.Status)
	require.Equal(t, StepPlan, st.Step)
}

func TestTracker_FailIsTerminal(t *testing.T) {
	tr := NewTracker()
	tr.Begin(StepDeploy)
	tr.Fail()
	require.Equal(t, StatusFailed, tr.State().Status)

	tr.Advance(StepVerify, StatusActive)
	require.Equal(t, StatusFailed, tr.State().Status)
}

func TestTracker_BeginClearsTerminalState(t *testing.T) {
	tr := NewTracker()
	tr.Begin(StepDeploy)
	tr.Advance(StepVerify, StatusActive)
	tr.Advance(StepPreview, StatusCompleted)

	// A second deploy starts fresh instead of continuing from "completed".
	st := tr.Begin(StepDeploy)
	require.Equal(t, State{Step: StepDeploy, Status: StatusActive}, st)
}

func TestTracker_BeginAfterFailure(t *testing.T) {
	tr := NewTracker()
	tr.Begin(StepDeploy)
	tr.Fail()

	st := tr.Begin(StepPlan)
	require.Equal(t, State{Step: StepPlan, Status: StatusActive}, st)
}
