package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/fieldcare/config"
	"github.com/Alijeyrad/fieldcare/internal/store"
	"github.com/Alijeyrad/fieldcare/pkg/boltdb"
	"github.com/Alijeyrad/fieldcare/pkg/crypto"
	"github.com/Alijeyrad/fieldcare/pkg/database"
	"github.com/Alijeyrad/fieldcare/pkg/observability"
	redispkg "github.com/Alijeyrad/fieldcare/pkg/redis"
	"github.com/Alijeyrad/fieldcare/pkg/s3"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideSQL),
	fx.Provide(ProvideS3),
	fx.Provide(ProvideFile),
	fx.Provide(ProvideBackend),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideOTel),
)

func ProvideLogger() *slog.Logger {
	return slog.Default()
}

// ProvideRedis connects to Redis when an address is configured. The client
// is nil otherwise.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideSQL opens PostgreSQL for the postgres backend only.
func ProvideSQL(lc fx.Lifecycle, cfg *config.Config) (*database.DB, error) {
	if cfg.Storage.Backend != config.BackendPostgres {
		return nil, nil
	}
	db, err := database.New(context.Background(), database.FromCentralConfig(cfg.Database))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing database connection")
			return db.Close()
		},
	})
	return db, nil
}

// ProvideS3 builds the bucket client for the s3 backend only.
func ProvideS3(cfg *config.Config) (*s3.Client, error) {
	if cfg.Storage.Backend != config.BackendS3 {
		return nil, nil
	}
	return s3.New(context.Background(), cfg.S3)
}

// ProvideFile prepares the bbolt file for the file backend only. The file
// is opened with the store and closed on stop.
func ProvideFile(lc fx.Lifecycle, cfg *config.Config) *boltdb.KV {
	if cfg.Storage.Backend != config.BackendFile {
		return nil
	}
	kv := NewFileBackend(cfg)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing data file")
			return kv.Close()
		},
	})
	return kv
}

func NewFileBackend(cfg *config.Config) *boltdb.KV {
	return boltdb.New(cfg.Storage.Path, time.Duration(cfg.Storage.LockTimeoutSeconds)*time.Second)
}

type BackendParams struct {
	fx.In

	Cfg   *config.Config
	Redis *redis.Client `optional:"true"`
	SQL   *database.DB  `optional:"true"`
	S3    *s3.Client    `optional:"true"`
	File  *boltdb.KV    `optional:"true"`
}

func ProvideBackend(p BackendParams) (store.Backend, error) {
	return SelectBackend(p.Cfg, Clients{Redis: p.Redis, SQL: p.SQL, S3: p.S3, File: p.File})
}

// Clients holds the connections a backend may be built on. Only the one
// matching storage.backend needs to be set.
type Clients struct {
	Redis *redis.Client
	SQL   *database.DB
	S3    *s3.Client
	File  *boltdb.KV
}

// SelectBackend picks the record backend named by storage.backend.
func SelectBackend(cfg *config.Config, c Clients) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		if c.File == nil {
			return nil, errors.New("file backend selected but no data file")
		}
		return c.File, nil
	case config.BackendMemory, "":
		return store.NewMemory(), nil
	case config.BackendRedis:
		if c.Redis == nil {
			return nil, errors.New("redis backend selected but redis.addr is empty")
		}
		return redispkg.NewKV(c.Redis, cfg.Redis.KeyPrefix), nil
	case config.BackendPostgres:
		if c.SQL == nil {
			return nil, errors.New("postgres backend selected but no database connection")
		}
		return database.NewKV(c.SQL.GetConnection()), nil
	case config.BackendS3:
		if c.S3 == nil {
			return nil, errors.New("s3 backend selected but no bucket client")
		}
		return c.S3, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// StoreOptions translates the storage config into store options.
func StoreOptions(cfg *config.Config, logger *slog.Logger) ([]store.Option, error) {
	opts := []store.Option{store.WithLogger(logger)}
	if cfg.Storage.EncryptionKey != "" {
		key, err := crypto.KeyFromHex(cfg.Storage.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("storage.encryption_key: %w", err)
		}
		opts = append(opts, store.WithEncryptionKey(key))
	}
	return opts, nil
}

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, backend store.Backend, logger *slog.Logger) (*store.Store, error) {
	opts, err := StoreOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	st := store.New(backend, opts...)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return st.Open(ctx)
		},
	})
	return st, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
