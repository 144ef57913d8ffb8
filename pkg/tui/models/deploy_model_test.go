package models

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/dipole/pkg/bus"
	"github.com/go-go-golems/dipole/pkg/progress"
	"github.com/go-go-golems/dipole/pkg/tui"
)

func updated(t *testing.T, m tea.Model, msg tea.Msg) DeployModel {
	t.Helper()
	next, _ := m.Update(msg)
	dm, ok := next.(DeployModel)
	require.True(t, ok)
	return dm
}

func TestDeployModel_AppendsBatchedLines(t *testing.T) {
	m := updated(t, NewDeployModel(), tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated(t, m, tui.InvocationStartedMsg{Started: bus.InvocationStarted{Op: "deploy"}})
	m = updated(t, m, tui.LogBatchMsg{Batch: bus.LogBatch{Op: "deploy", Lines: []string{"Building...", "Uploading..."}, Total: 2}})

	view := m.View()
	require.Contains(t, view, "Building...")
	require.Contains(t, view, "Uploading...")
	require.Contains(t, view, "deploy")
	require.Contains(t, view, "(2)")
}

func TestDeployModel_ProgressDrivesStepper(t *testing.T) {
	m := updated(t, NewDeployModel(), tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated(t, m, tui.ProgressMsg{Progress: bus.Progress{
		State: progress.State{Step: progress.StepDeploy, Status: progress.StatusActive},
	}})

	require.Contains(t, m.View(), "● Deploy")
}

func TestDeployModel_EndedShowsPreviewURL(t *testing.T) {
	rec, err := json.Marshal(map[string]string{"type": "Deployment", "url": "https://myapp.vercel.app"})
	require.NoError(t, err)

	m := updated(t, NewDeployModel(), tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated(t, m, tui.InvocationEndedMsg{Ended: bus.InvocationEnded{Op: "deploy", Ok: true, Record: rec}})

	require.Contains(t, m.View(), "https://myapp.vercel.app")
}

func TestDeployModel_QuitKeys(t *testing.T) {
	m := updated(t, NewDeployModel(), tea.WindowSizeMsg{Width: 80, Height: 24})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}
