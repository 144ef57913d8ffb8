package cmds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/dipole/pkg/bridge"
	"github.com/go-go-golems/dipole/pkg/bus"
	"github.com/go-go-golems/dipole/pkg/config"
	"github.com/go-go-golems/dipole/pkg/logscript"
	"github.com/go-go-golems/dipole/pkg/session"
)

type rootOptions struct {
	ProjectRoot string
	Config      string
	CLI         []string
	Session     string
	Timeout     time.Duration
}

func AddRootFlags(root *cobra.Command) {
	root.PersistentFlags().String("project-root", "", "Project root (defaults to current directory)")
	root.PersistentFlags().String("config", "", "Path to config file (defaults to .dipole.yaml under project-root)")
	root.PersistentFlags().StringSlice("cli", nil, "Argv prefix of the deployment tool, e.g. --cli node,agent/cli/index.js")
	root.PersistentFlags().String("session", "", "Session id to resume (defaults to a fresh generated id)")
	root.PersistentFlags().Duration("timeout", 0, "Overall invocation timeout (0 means none)")
}

func getRootOptions(cmd *cobra.Command) (rootOptions, error) {
	flags := cmd.Root().PersistentFlags()

	projectRoot, err := flags.GetString("project-root")
	if err != nil {
		return rootOptions{}, err
	}
	if projectRoot == "" {
		projectRoot, err = os.Getwd()
		if err != nil {
			return rootOptions{}, err
		}
	}
	projectRoot, err = filepath.Abs(projectRoot)
	if err != nil {
		return rootOptions{}, err
	}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return rootOptions{}, err
	}
	if cfgPath == "" {
		cfgPath = config.DefaultPath(projectRoot)
	} else if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(projectRoot, cfgPath)
	}

	cli, err := flags.GetStringSlice("cli")
	if err != nil {
		return rootOptions{}, err
	}
	sessionID, err := flags.GetString("session")
	if err != nil {
		return rootOptions{}, err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return rootOptions{}, err
	}
	if timeout < 0 {
		return rootOptions{}, errors.New("timeout must be >= 0")
	}

	return rootOptions{
		ProjectRoot: projectRoot,
		Config:      cfgPath,
		CLI:         cli,
		Session:     sessionID,
		Timeout:     timeout,
	}, nil
}

// newBridge assembles a bridge from flags and the optional config file.
// Flag values win over the file; the file wins over built-in defaults.
func newBridge(cmd *cobra.Command, pub message.Publisher) (*bridge.Bridge, rootOptions, error) {
	opts, err := getRootOptions(cmd)
	if err != nil {
		return nil, rootOptions{}, err
	}

	cfg, err := config.LoadOptional(opts.Config)
	if err != nil {
		return nil, rootOptions{}, err
	}

	cli := opts.CLI
	if len(cli) == 0 {
		cli = cfg.CLI
	}
	if len(cli) == 0 {
		cli = []string{"dipole-cli"}
	}

	var sess *session.Store
	if opts.Session != "" {
		sess = session.NewStoreWithID(opts.Session)
	} else {
		sess = session.NewStore()
	}
	sess.Merge(session.Prefs{Provider: cfg.Provider, Method: cfg.Method})

	env := map[string]string{}
	if cfg.MockOutcome != "" {
		env["FAST_DEPLOY_MOCK"] = cfg.MockOutcome
	}

	var annotator *logscript.Module
	if cfg.AnnotateScript != "" {
		scriptPath := cfg.AnnotateScript
		if !filepath.IsAbs(scriptPath) {
			scriptPath = filepath.Join(opts.ProjectRoot, scriptPath)
		}
		annotator, err = logscript.LoadFromFile(scriptPath, logscript.Options{HookTimeout: "200ms"})
		if err != nil {
			return nil, rootOptions{}, errors.Wrap(err, "load annotate script")
		}
	}

	b := bridge.New(bridge.Options{
		CLI:         cli,
		ProjectRoot: opts.ProjectRoot,
		Env:         env,
		LineBatch:   cfg.LineBatch,
		Annotator:   annotator,
	}, sess, pub)
	return b, opts, nil
}

func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(cmd.Context(), timeout)
	}
	return context.WithCancel(cmd.Context())
}

// consolePublisher prints invocation events as they are published. In raw
// mode it emits envelope JSON lines; otherwise only batched log lines.
type consolePublisher struct {
	w   io.Writer
	raw bool
}

func (p *consolePublisher) Publish(_ string, msgs ...*message.Message) error {
	for _, m := range msgs {
		if p.raw {
			_, _ = fmt.Fprintln(p.w, string(m.Payload))
			continue
		}

		var env bus.Envelope
		if err := json.Unmarshal(m.Payload, &env); err != nil {
			return errors.Wrap(err, "unmarshal envelope")
		}
		if env.Type != bus.TypeLogBatch {
			continue
		}
		var batch bus.LogBatch
		if err := json.Unmarshal(env.Payload, &batch); err != nil {
			return errors.Wrap(err, "unmarshal log batch")
		}
		for _, line := range batch.Lines {
			_, _ = fmt.Fprintln(p.w, line)
		}
	}
	return nil
}

func (p *consolePublisher) Close() error { return nil }
