package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aexvir/lspbin"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [server]",
		Short: "Resolve a server, installing it when needed, and print its command as json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(c.stdout)
			encoder.SetIndent("", "  ")

			if all, _ := cmd.Flags().GetBool("all"); all {
				managers := make([]*lspbin.Manager, 0, len(s.cfg.Servers))
				for _, id := range s.cfg.IDs() {
					manager, err := c.manager(cmd, s, []string{id})
					if err != nil {
						return err
					}
					managers = append(managers, manager)
				}

				cmds, err := lspbin.Provision(cmd.Context(), s.host, managers...)
				if encerr := encoder.Encode(cmds); encerr != nil {
					return encerr
				}
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

			return encoder.Encode(resolved)
		},
	}

	cmd.Flags().Bool("all", false, "Resolve every configured server")

	return cmd
}
