package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/store"
	"github.com/Alijeyrad/fieldcare/pkg/database"
	redispkg "github.com/Alijeyrad/fieldcare/pkg/redis"
	"github.com/Alijeyrad/fieldcare/pkg/s3"
)

// ErrEphemeralBackend rejects the memory backend for one-shot commands,
// whose data would vanish when the process exits.
var ErrEphemeralBackend = errors.New("the memory backend does not persist between commands; use file, redis, postgres or s3")

// OpenStore builds and opens the record store outside the fx graph, for
// one-shot CLI commands. The returned close func releases connections.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Store, func() error, error) {
	var (
		clients Clients
		closers []func() error
	)
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory, "":
		return nil, nil, ErrEphemeralBackend
	case config.BackendFile:
		kv := NewFileBackend(cfg)
		clients.File = kv
		closers = append(closers, kv.Close)
	case config.BackendRedis:
		c, err := redispkg.NewRedisFromCentral(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		clients.Redis = c
		closers = append(closers, c.Close)
	case config.BackendPostgres:
		db, err := database.New(ctx, database.FromCentralConfig(cfg.Database))
		if err != nil {
			return nil, nil, err
		}
		clients.SQL = db
		closers = append(closers, db.Close)
	case config.BackendS3:
		c, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		clients.S3 = c
	}

	backend, err := SelectBackend(cfg, clients)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	opts, err := StoreOptions(cfg, logger)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}

	st := store.New(backend, opts...)
	if err := st.Open(ctx); err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	return st, closeAll, nil
}
