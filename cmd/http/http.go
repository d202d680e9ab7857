package http

import "github.com/spf13/cobra"

// NewHTTPCommand groups the commands that run the REST API under /api/v1.
func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "http",
		Aliases: []string{"serve"},
		Short:   "Run the field team REST API",
	}

	cmd.AddCommand(NewStartCommand())

	return cmd
}
