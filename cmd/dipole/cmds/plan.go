package cmds

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/dipole/pkg/bridge"
)

func newPlanCmd() *cobra.Command {
	var path string
	var provider string
	var method string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Ask the deployment tool for a plan without deploying",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--path is required")
			}

			b, opts, err := newBridge(cmd, nil)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts.Timeout)
			defer cancel()

			out, err := b.Plan(ctx, bridge.PlanArgs{
				Path:     path,
				Provider: provider,
				Method:   method,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Project path to plan for (required)")
	cmd.Flags().StringVar(&provider, "provider", "", "Deployment provider override")
	cmd.Flags().StringVar(&method, "method", "", "Deployment method override")
	return cmd
}
