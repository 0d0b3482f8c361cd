package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/content-ideas-api/internal/models"
)

// memoryCounterRepo keeps counters in process memory; used for development
type memoryCounterRepo struct {
	mu       sync.Mutex
	counters map[string]models.Counters
}

// NewMemoryCounterRepo creates an in-memory CounterRepository
func NewMemoryCounterRepo() CounterRepository {
	return &memoryCounterRepo{counters: make(map[string]models.Counters)}
}

func (r *memoryCounterRepo) Get(ctx context.Context, user string) (models.Counters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[user], nil
}

func (r *memoryCounterRepo) Increment(ctx context.Context, user string, ideas, articles int) error {
	if ideas < 0 || articles < 0 {
		return fmt.Errorf("%w: negative counter delta", models.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.counters[user]
	c.IdeasGenerated += ideas
	c.ArticlesGenerated += articles
	r.counters[user] = c
	return nil
}

func (r *memoryCounterRepo) Set(ctx context.Context, user string, counters models.Counters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[user] = models.Counters{
		IdeasGenerated:    max(counters.IdeasGenerated, 0),
		ArticlesGenerated: max(counters.ArticlesGenerated, 0),
	}
	return nil
}

func (r *memoryCounterRepo) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}
