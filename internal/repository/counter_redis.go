package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/content-ideas-api/internal/models"
)

const (
	fieldIdeas    = "ideas_generated"
	fieldArticles = "articles_generated"
)

// redisCounterRepo keeps each user's counters in a hash
type redisCounterRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisCounterRepo creates a Redis-backed CounterRepository
func NewRedisCounterRepo(client *redis.Client, prefix string) CounterRepository {
	if prefix == "" {
		prefix = "content-ideas:counters"
	}
	return &redisCounterRepo{client: client, prefix: prefix}
}

func (r *redisCounterRepo) key(user string) string {
	return r.prefix + ":" + user
}

// Get returns the stored counters; missing fields read as zero
func (r *redisCounterRepo) Get(ctx context.Context, user string) (models.Counters, error) {
	values, err := r.client.HMGet(ctx, r.key(user), fieldIdeas, fieldArticles).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Counters{}, fmt.Errorf("hmget counters: %w", err)
	}

	var counters models.Counters
	if len(values) == 2 {
		if counters.IdeasGenerated, err = parseCounter(values[0]); err != nil {
			return models.Counters{}, err
		}
		if counters.ArticlesGenerated, err = parseCounter(values[1]); err != nil {
			return models.Counters{}, err
		}
	}
	return counters, nil
}

// Increment applies both deltas in one MULTI/EXEC transaction
func (r *redisCounterRepo) Increment(ctx context.Context, user string, ideas, articles int) error {
	if ideas < 0 || articles < 0 {
		return fmt.Errorf("%w: negative counter delta", models.ErrValidation)
	}
	if ideas == 0 && articles == 0 {
		return nil
	}

	key := r.key(user)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if ideas > 0 {
			pipe.HIncrBy(ctx, key, fieldIdeas, int64(ideas))
		}
		if articles > 0 {
			pipe.HIncrBy(ctx, key, fieldArticles, int64(articles))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("hincrby counters: %w", err)
	}
	return nil
}

// Set overwrites both counters
func (r *redisCounterRepo) Set(ctx context.Context, user string, counters models.Counters) error {
	err := r.client.HSet(ctx, r.key(user),
		fieldIdeas, max(counters.IdeasGenerated, 0),
		fieldArticles, max(counters.ArticlesGenerated, 0),
	).Err()
	if err != nil {
		return fmt.Errorf("hset counters: %w", err)
	}
	return nil
}

// HealthCheck pings the Redis server
func (r *redisCounterRepo) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func parseCounter(v interface{}) (int, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter value %T", v)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", s, err)
	}
	return max(n, 0), nil
}
