package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/darshan-pass-service/internal/config"
)

// OpenKeyValue connects the backend selected by STORE_DRIVER. The returned func releases it.
func OpenKeyValue(ctx context.Context, cfg config.Config, logger *zap.Logger) (KeyValue, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; requests are lost on restart")
		return NewMemoryKV(), func() {}, nil

	case config.StoreDriverSQLite:
		db, err := OpenSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteKV(db.DB), db.Close, nil

	case config.StoreDriverPostgres:
		if cfg.Postgres.DSN == "" {
			return nil, nil, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return NewPostgresKV(pg.PoolHandle()), pg.Close, nil

	case config.StoreDriverRedis:
		r := NewRedis(cfg.Redis, logger)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisKV(r.Client), r.Close, nil
	}

	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
