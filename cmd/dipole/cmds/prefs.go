package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/dipole/pkg/session"
)

func newPrefsCmd() *cobra.Command {
	var partial session.Prefs

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or update session deployment preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := newBridge(cmd, nil)
			if err != nil {
				return err
			}

			var changed []string
			cmd.Flags().Visit(func(f *pflag.Flag) {
				changed = append(changed, f.Name)
			})

			prefs := b.Session().Prefs()
			if len(changed) > 0 {
				prefs = b.ModifyPreferences(partial)
			}

			out, err := yaml.Marshal(prefs)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n%s", b.Session().SessionID(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&partial.Provider, "provider", "", "Deployment provider, e.g. vercel")
	cmd.Flags().StringVar(&partial.Method, "method", "", "Deployment method, e.g. git or direct")
	cmd.Flags().StringVar(&partial.OutputDir, "output-dir", "", "Build output directory")
	cmd.Flags().StringVar(&partial.Domain, "domain", "", "Custom domain")
	return cmd
}
