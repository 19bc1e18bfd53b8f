package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aexvir/lspbin"
)

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [server] [-- args...]",
		Short: "Resolve a server and run it attached to stdio",
		Long: "Resolve a server and run it attached to stdio, so the editor can talk to it.\n" +
			"Arguments after -- are appended to the resolved command line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			server, extra := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				server, extra = args[:dash], args[dash:]
			}
			if len(server) > 1 {
				return fmt.Errorf("accepts at most one server, got %d", len(server))
			}

			s, err := c.session(cmd)
			if err != nil {
				return err
			}

			manager, err := c.manager(cmd, s, server)
			if err != nil {
				return err
			}

			resolved, err := manager.Resolve(cmd.Context(), s.host)
			if err != nil {
				return err
			}

			return lspbin.Run(
				cmd.Context(),
				resolved,
				lspbin.WithArgs(extra...),
				lspbin.WithStdIn(cmd.InOrStdin()),
				lspbin.WithStdOut(cmd.OutOrStdout()),
			)
		},
	}
}
