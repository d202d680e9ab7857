package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/fieldcare/internal/service/export"
)

// WorkerModule registers the background workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Export *export.Queue
}

func RegisterWorkers(p WorkerParams) {
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Export.Start()
			slog.Debug("export worker started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining export queue")
			return p.Export.Stop(ctx)
		},
	})
}
