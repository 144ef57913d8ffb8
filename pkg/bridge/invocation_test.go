package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvocation_ArgvOrderAndOmission(t *testing.T) {
	inv := Invocation{
		Op:             "deploy",
		Path:           "./my site",
		Provider:       "vercel",
		SessionID:      "s-abc12345",
		DryRun:         true,
		NonInteractive: true,
	}
	require.Equal(t, []string{
		"dipole-cli", "deploy",
		"--path", "./my site",
		"--provider", "vercel",
		"--session", "s-abc12345",
		"--dry-run",
		"--yes", "--non-interactive",
	}, inv.Argv([]string{"dipole-cli"}))
}

func TestInvocation_ArgvPrefixNotShared(t *testing.T) {
	prefix := []string{"python", "-m", "dipole"}
	a := Invocation{Op: "plan"}.Argv(prefix)
	b := Invocation{Op: "diagnose", RecordID: "d-1"}.Argv(prefix)
	require.Equal(t, []string{"python", "-m", "dipole", "plan"}, a)
	require.Equal(t, []string{"python", "-m", "dipole", "diagnose", "--id", "d-1"}, b)
}

func TestInvocation_DiagnoseTargets(t *testing.T) {
	inv := Invocation{Op: "diagnose", JSONOnly: true, LogPath: "/tmp/deploy.log"}
	require.Equal(t, []string{
		"dipole-cli", "diagnose", "--json-only", "--log", "/tmp/deploy.log",
	}, inv.Argv([]string{"dipole-cli"}))
}
