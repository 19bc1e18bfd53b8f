package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aexvir/lspbin/binary"
)

func (c *CLI) newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune [server] --keep <version directory>",
		Short: "Remove every installed version of a server but one",
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

			keep, _ := cmd.Flags().GetString("keep")
			for _, removed := range binary.Prune(manager.Fs(), manager.WorkDir(), keep) {
				fmt.Fprintln(c.stdout, removed)
			}

			return nil
		},
	}

	cmd.Flags().String("keep", "", "Name of the version directory to keep")
	_ = cmd.MarkFlagRequired("keep")

	return cmd
}
