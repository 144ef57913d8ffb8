package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOptional_MissingFileIsEmptyConfig(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), DefaultConfigFilename))
	require.NoError(t, err)
	require.Equal(t, &File{}, cfg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(`
cli: ["node", "agent/cli/index.js"]
provider: netlify
method: cli
line_batch: 10
mock_outcome: success
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"node", "agent/cli/index.js"}, cfg.CLI)
	require.Equal(t, "netlify", cfg.Provider)
	require.Equal(t, "cli", cfg.Method)
	require.Equal(t, 10, cfg.LineBatch)
	require.Equal(t, "success", cfg.MockOutcome)
}

func TestLoadFromFile_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("cli: [unclosed"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}
