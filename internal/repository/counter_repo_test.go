package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/database"
	"github.com/content-ideas-api/internal/models"
)

func newSQLiteCounterRepo(t *testing.T) CounterRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "counters.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCounterRepo(db)
}

func newRedisCounterRepo(t *testing.T) (CounterRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCounterRepo(client, "test:counters"), mr
}

// counterBackends runs the same contract against every CounterRepository
func counterBackends(t *testing.T) map[string]CounterRepository {
	redisRepo, _ := newRedisCounterRepo(t)
	return map[string]CounterRepository{
		"sqlite": newSQLiteCounterRepo(t),
		"redis":  redisRepo,
		"memory": NewMemoryCounterRepo(),
	}
}

func TestCounterRepository_Contract(t *testing.T) {
	for name, repo := range counterBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := "ana@example.com"

			require.NoError(t, repo.HealthCheck(ctx))

			got, err := repo.Get(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, models.Counters{}, got, "unknown user has zero counters")

			require.NoError(t, repo.Increment(ctx, user, 2, 0))
			require.NoError(t, repo.Increment(ctx, user, 0, 3))
			require.NoError(t, repo.Increment(ctx, user, 1, 1))

			got, err = repo.Get(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, models.Counters{IdeasGenerated: 3, ArticlesGenerated: 4}, got)

			require.NoError(t, repo.Set(ctx, user, models.Counters{IdeasGenerated: 1, ArticlesGenerated: 0}))
			got, err = repo.Get(ctx, user)
			require.NoError(t, err)
			assert.Equal(t, models.Counters{IdeasGenerated: 1, ArticlesGenerated: 0}, got)

			// Other users are untouched
			other, err := repo.Get(ctx, "bob@example.com")
			require.NoError(t, err)
			assert.Equal(t, models.Counters{}, other)
		})
	}
}

func TestCounterRepository_RejectsNegativeDelta(t *testing.T) {
	for name, repo := range counterBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := repo.Increment(context.Background(), "ana@example.com", -1, 0)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCounterRepository_SetClampsNegative(t *testing.T) {
	for name, repo := range counterBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Set(ctx, "ana@example.com", models.Counters{IdeasGenerated: -5, ArticlesGenerated: 2}))

			got, err := repo.Get(ctx, "ana@example.com")
			require.NoError(t, err)
			assert.Equal(t, models.Counters{IdeasGenerated: 0, ArticlesGenerated: 2}, got)
		})
	}
}

func TestCounterRepository_ConcurrentIncrements(t *testing.T) {
	const workers = 20

	for name, repo := range counterBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, repo.Increment(ctx, "ana@example.com", 1, 2))
				}()
			}
			wg.Wait()

			got, err := repo.Get(ctx, "ana@example.com")
			require.NoError(t, err)
			assert.Equal(t, workers, got.IdeasGenerated)
			assert.Equal(t, 2*workers, got.ArticlesGenerated)
		})
	}
}

func TestRedisCounterRepo_HealthCheckFailsWhenDown(t *testing.T) {
	repo, mr := newRedisCounterRepo(t)
	mr.Close()

	assert.Error(t, repo.HealthCheck(context.Background()))
}

func TestRedisCounterRepo_KeyLayout(t *testing.T) {
	repo, mr := newRedisCounterRepo(t)
	require.NoError(t, repo.Increment(context.Background(), "ana@example.com", 2, 1))

	assert.Equal(t, "2", mr.HGet("test:counters:ana@example.com", "ideas_generated"))
	assert.Equal(t, "1", mr.HGet("test:counters:ana@example.com", "articles_generated"))
}

func TestRedisCounterRepo_CorruptValue(t *testing.T) {
	repo, mr := newRedisCounterRepo(t)
	mr.HSet("test:counters:ana@example.com", "ideas_generated", "many")

	_, err := repo.Get(context.Background(), "ana@example.com")
	assert.Error(t, err)
}

func TestNewCounterRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Counters.Backend = config.CountersMemory

		repo, closeFn, err := NewCounterRepository(ctx, cfg, zerolog.Nop())
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, repo.Increment(ctx, "ana@example.com", 1, 0))
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Default()
		cfg.Counters.Backend = config.CountersSQLite
		cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "nested", "usuarios.db")

		repo, closeFn, err := NewCounterRepository(ctx, cfg, zerolog.Nop())
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, repo.Increment(ctx, "ana@example.com", 1, 0))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Counters.Backend = config.CountersRedis
		cfg.Redis.URL = "redis://" + mr.Addr() + "/0"

		repo, closeFn, err := NewCounterRepository(ctx, cfg, zerolog.Nop())
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, repo.Increment(ctx, "ana@example.com", 0, 1))
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Counters.Backend = "etcd"

		_, _, err := NewCounterRepository(ctx, cfg, zerolog.Nop())
		assert.Error(t, err)
	})
}
