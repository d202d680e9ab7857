package app

import (
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/service/assist"
	"github.com/Alijeyrad/fieldcare/internal/service/export"
	"github.com/Alijeyrad/fieldcare/internal/service/importer"
	"github.com/Alijeyrad/fieldcare/internal/service/patient"
	"github.com/Alijeyrad/fieldcare/internal/store"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePatientService,
		ProvideImportService,
		ProvideExportClient,
		ProvideExportQueue,
		ProvideAssistService,
	),
)

func ProvidePatientService(st *store.Store, logger *slog.Logger) patient.Service {
	return patient.New(st, patient.WithLogger(logger))
}

func ProvideImportService(st *store.Store, logger *slog.Logger) importer.Service {
	return importer.New(st, logger)
}

func ProvideExportClient(cfg *config.Config) *export.Client {
	if !cfg.Export.Enabled {
		return export.NewClient(config.ExportConfig{})
	}
	return export.NewClient(cfg.Export)
}

func ProvideExportQueue(cfg *config.Config, client *export.Client, logger *slog.Logger) *export.Queue {
	timeout := time.Duration(cfg.Export.TimeoutSeconds) * time.Second
	return export.NewQueue(client, cfg.Export.QueueSize, timeout, logger)
}

func ProvideAssistService(cfg *config.Config, logger *slog.Logger) assist.Service {
	return assist.New(cfg.Assist, logger)
}
