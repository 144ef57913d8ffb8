package cmds

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/dipole/pkg/bridge"
)

// stream runs an operation and prints every bus envelope as a JSON line,
// so external consumers can follow an invocation without the TUI.
func newStreamCmd() *cobra.Command {
	var path string
	var op string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Run an operation and print its events as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--path is required")
			}

			pub := &consolePublisher{w: cmd.OutOrStdout(), raw: true}
			b, opts, err := newBridge(cmd, pub)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts.Timeout)
			defer cancel()

			switch op {
			case "plan":
				_, err = b.Plan(ctx, bridge.PlanArgs{Path: path})
			case "deploy":
				_, err = b.Deploy(ctx, bridge.DeployArgs{Path: path, DryRun: dryRun, AssumeYes: true})
			default:
				return errors.Errorf("unknown op %q (want plan or deploy)", op)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Project path (required)")
	cmd.Flags().StringVar(&op, "op", "deploy", "Operation to run (plan or deploy)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Ask the tool to simulate the deployment")
	return cmd
}
