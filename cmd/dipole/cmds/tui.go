package cmds

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/dipole/pkg/bridge"
	"github.com/go-go-golems/dipole/pkg/bus"
	"github.com/go-go-golems/dipole/pkg/tui"
	"github.com/go-go-golems/dipole/pkg/tui/models"
)

func newTuiCmd() *cobra.Command {
	var path string
	var dryRun bool
	var altScreen bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run a deployment inside an interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--path is required")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			eventBus, err := bus.NewInMemoryBus()
			if err != nil {
				return err
			}

			b, opts, err := newBridge(cmd, eventBus.Publisher())
			if err != nil {
				return err
			}

			model := models.NewDeployModel()
			programOptions := []tea.ProgramOption{
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			}
			if altScreen {
				programOptions = append(programOptions, tea.WithAltScreen())
			}
			program := tea.NewProgram(model, programOptions...)
			tui.RegisterUIForwarder(eventBus, program)

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				err := eventBus.Run(egCtx)
				if stderrors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			eg.Go(func() error {
				deployCtx := egCtx
				if opts.Timeout > 0 {
					var deployCancel context.CancelFunc
					deployCtx, deployCancel = context.WithTimeout(egCtx, opts.Timeout)
					defer deployCancel()
				}
				_, err := b.Deploy(deployCtx, bridge.DeployArgs{Path: path, DryRun: dryRun, AssumeYes: true})
				if stderrors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			eg.Go(func() error {
				_, err := program.Run()
				cancel()
				if stderrors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})

			if err := eg.Wait(); err != nil {
				return errors.Wrap(err, "tui")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Project path to deploy (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Ask the tool to simulate the deployment")
	cmd.Flags().BoolVar(&altScreen, "alt-screen", true, "Use the terminal alternate screen buffer")
	return cmd
}
