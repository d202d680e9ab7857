package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/app"
	"github.com/Alijeyrad/fieldcare/pkg/database"
	"github.com/Alijeyrad/fieldcare/pkg/logs"
)

func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Prepare the configured storage backend",
		Long: `Create the PostgreSQL database when the postgres backend is selected, then
open the record store so its schema version is recorded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			slog.SetDefault(logs.New(cfg))

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if cfg.Storage.Backend == config.BackendPostgres {
				fmt.Println("Ensuring database exists...")
				if err := database.EnsureDatabase(ctx, database.FromCentralConfig(cfg.Database)); err != nil {
					return fmt.Errorf("failed to create database: %w", err)
				}
			}

			fmt.Printf("Opening %s storage...\n", cfg.Storage.Backend)
			_, closeStore, err := app.OpenStore(ctx, cfg, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			if err := closeStore(); err != nil {
				return err
			}
			fmt.Println("Storage initialized successfully.")
			return nil
		},
	}

	return cmd
}
