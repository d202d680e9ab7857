package db

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/app"
	"github.com/Alijeyrad/fieldcare/internal/store"
	"github.com/Alijeyrad/fieldcare/pkg/logs"
)

func NewDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Patient data maintenance commands",
	}

	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewTemplateCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewClearCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// openStore reads the config named by --config and opens the record store.
func openStore(cmd *cobra.Command) (*store.Store, func() error, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	slog.SetDefault(logs.New(cfg))

	st, closeStore, err := app.OpenStore(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return st, closeStore, nil
}
