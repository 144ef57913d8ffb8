package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <url>",
		Short: "Normalize and print a deployment preview URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := newBridge(cmd, nil)
			if err != nil {
				return err
			}

			u, err := b.ShowPreview(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}
