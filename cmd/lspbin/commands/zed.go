package commands

import (
	"github.com/spf13/cobra"

	"github.com/aexvir/lspbin/gen"
)

func (c *CLI) newZedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zed [server]",
		Short: "Resolve a server and pin it in Zed's settings.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}

			manager, err := c.manager(cmd, s, args)
			if err != nil {
				return err
			}

			resolved, err := manager.Resolve(cmd.Context(), s.host)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			opts := []gen.ZedSettingsOpt{gen.WithZedOutputPath(output)}

			if withsettings, _ := cmd.Flags().GetBool("settings"); withsettings {
				settings, err := s.host.Settings(manager.ServerID())
				if err != nil {
					return err
				}
				opts = append(opts, gen.WithZedLSPSettings(settings))
			}

			return gen.ZedSettings(manager.ServerID(), resolved, opts...)
		},
	}

	cmd.Flags().StringP("output", "o", ".zed/settings.json", "Path of the settings file")
	cmd.Flags().Bool("settings", false, "Also write initialization options and workspace configuration")

	return cmd
}
