package cmds

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/dipole/pkg/bridge"
)

func newDeployCmd() *cobra.Command {
	var path string
	var dryRun bool
	var interactive bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run a deployment and stream its output",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--path is required")
			}

			pub := &consolePublisher{w: cmd.OutOrStdout()}
			b, opts, err := newBridge(cmd, pub)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts.Timeout)
			defer cancel()

			rec, err := b.Deploy(ctx, bridge.DeployArgs{
				Path:      path,
				DryRun:    dryRun,
				AssumeYes: !interactive,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, rec.JSON())
			if u := b.Session().PreviewURL(); u != "" {
				_, _ = fmt.Fprintf(out, "preview: %s\n", u)
			}
			if rec.Type() == "Error" {
				return errors.New(rec.Message())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Project path to deploy (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Ask the tool to simulate the deployment")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Let the tool ask its own confirmation questions")
	return cmd
}
