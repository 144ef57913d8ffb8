package cmds

import (
	"github.com/spf13/cobra"
)

func AddCommands(root *cobra.Command) error {
	root.AddCommand(newPlanCmd())
	root.AddCommand(newDeployCmd())
	root.AddCommand(newDiagnoseCmd())
	root.AddCommand(newLogsCmd())
	root.AddCommand(newPrefsCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newStreamCmd())
	root.AddCommand(newTuiCmd())
	return nil
}
