package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/database"
)

// Closer releases the resources held by a counter backend
type Closer func() error

// NewCounterRepository builds the CounterRepository selected by cfg.Counters.Backend.
// Postgres migrations are applied before the repository is returned.
func NewCounterRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (CounterRepository, Closer, error) {
	noop := func() error { return nil }

	switch cfg.Counters.Backend {
	case config.CountersPostgres:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return nil, noop, err
		}
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return nil, noop, err
		}
		return NewCounterRepo(db), db.Close, nil

	case config.CountersSQLite:
		db, err := database.OpenSQLite(cfg.Database.SQLitePath, log)
		if err != nil {
			return nil, noop, err
		}
		return NewCounterRepo(db), db.Close, nil

	case config.CountersRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}

		log.Info().Str("component", "counters").Str("addr", opts.Addr).Msg("Redis counter backend connected")
		return NewRedisCounterRepo(client, cfg.Redis.KeyPrefix), client.Close, nil

	case config.CountersMemory:
		log.Warn().Str("component", "counters").Msg("In-memory counters are lost on restart")
		return NewMemoryCounterRepo(), noop, nil
	}

	return nil, noop, fmt.Errorf("unknown counters backend %q", cfg.Counters.Backend)
}
