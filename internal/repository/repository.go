package repository

import (
	"context"

	"github.com/content-ideas-api/internal/models"
)

// IdeaRepository persists one idea collection per user
type IdeaRepository interface {
	// Load returns the stored collection; a user with no document yields (nil, nil)
	Load(ctx context.Context, user string) ([]models.Idea, error)
	// Save replaces the whole collection in a single write
	Save(ctx context.Context, user string, ideas []models.Idea) error
	// Users lists every user that has a stored collection
	Users(ctx context.Context) ([]string, error)
	// Lock blocks until the caller holds the user's document exclusively,
	// across processes, and returns the release func
	Lock(ctx context.Context, user string) (func(), error)
}

// CounterRepository persists the historical counters, independently of the ideas
type CounterRepository interface {
	Get(ctx context.Context, user string) (models.Counters, error)
	// Increment atomically adds the deltas to the stored counters
	Increment(ctx context.Context, user string, ideas, articles int) error
	// Set overwrites both counters
	Set(ctx context.Context, user string, counters models.Counters) error
	// HealthCheck reports whether the backend is reachable
	HealthCheck(ctx context.Context) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Ideas    IdeaRepository
	Counters CounterRepository
}

// New groups the repositories used by the services
func New(ideas IdeaRepository, counters CounterRepository) *Repositories {
	return &Repositories{
		Ideas:    ideas,
		Counters: counters,
	}
}
