package cmds

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tail-logs <record-id>",
		Aliases: []string{"logs"},
		Short:   "Print the trailing lines of a past deployment's log",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := newBridge(cmd, nil)
			if err != nil {
				return err
			}

			out, err := b.TailLogs(args[0])
			if err != nil {
				return errors.Wrap(err, "tail logs")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}
