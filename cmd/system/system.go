package system

import "github.com/spf13/cobra"

// NewSystemCommand groups deployment chores that run outside the server.
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Storage setup and tooling commands",
	}

	cmd.AddCommand(NewInitCommand(), NewGenDocsCommand())

	return cmd
}
