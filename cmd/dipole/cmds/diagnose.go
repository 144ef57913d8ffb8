package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-go-golems/dipole/pkg/bridge"
)

func newDiagnoseCmd() *cobra.Command {
	var path string
	var logPath string
	var recordID string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Analyze a failed deployment's logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, opts, err := newBridge(cmd, nil)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, opts.Timeout)
			defer cancel()

			out, err := b.Diagnose(ctx, bridge.DiagnoseArgs{
				Path:     path,
				LogPath:  logPath,
				RecordID: recordID,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Project path")
	cmd.Flags().StringVar(&logPath, "log", "", "Path to a deploy log file to analyze")
	cmd.Flags().StringVar(&recordID, "id", "", "Deployment record id to analyze")
	return cmd
}
