package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFilename = ".dipole.yaml"

// File is the optional project-level configuration. Everything here has
// a flag or built-in default; the file only overrides.
type File struct {
	// CLI is the argv prefix used to invoke the external deployment
	// tool, e.g. ["node", "agent/cli/index.js"].
	CLI []string `yaml:"cli,omitempty"`

	Provider string `yaml:"provider,omitempty"`
	Method   string `yaml:"method,omitempty"`

	// LineBatch is the display refresh cadence in lines for streamed
	// deploy output. The log buffer itself is never batched.
	LineBatch int `yaml:"line_batch,omitempty"`

	// AnnotateScript points to a JS line annotator (see pkg/logscript).
	AnnotateScript string `yaml:"annotate_script,omitempty"`

	// MockOutcome is exported to the spawned tool as FAST_DEPLOY_MOCK
	// ("success"|"fail"|"rate_limit") for demo runs. It is passed
	// through verbatim, never interpreted here.
	MockOutcome string `yaml:"mock_outcome,omitempty"`
}

func DefaultPath(projectRoot string) string {
	return filepath.Join(projectRoot, DefaultConfigFilename)
}

func LoadFromFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg File
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config yaml")
	}
	return &cfg, nil
}

func LoadOptional(path string) (*File, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, errors.Wrap(err, "stat config")
	}
	return LoadFromFile(path)
}
