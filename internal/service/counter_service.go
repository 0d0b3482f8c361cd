package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/content-ideas-api/internal/metrics"
	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/repository"
	"github.com/content-ideas-api/internal/validation"
)

// counterService is the concrete implementation of CounterService
type counterService struct {
	store       *documentStore
	repo        repository.CounterRepository
	concurrency int
	log         zerolog.Logger
}

// newCounterService creates a new CounterService
func newCounterService(store *documentStore, repo repository.CounterRepository, concurrency int, log zerolog.Logger) *counterService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &counterService{
		store:       store,
		repo:        repo,
		concurrency: concurrency,
		log:         log.With().Str("service", "counters").Logger(),
	}
}

// GetCounts returns max(persistent, computed) for both totals, so deleting
// content never lowers what the user sees. It never writes.
func (s *counterService) GetCounts(ctx context.Context, user string) (models.Counts, error) {
	if err := validation.ValidateUser(user); err != nil {
		return models.Counts{}, err
	}

	ideas := s.store.load(ctx, user)
	computedIdeas, computedArticles := models.ComputeCounts(ideas)

	persisted, err := s.repo.Get(ctx, user)
	if err != nil {
		metrics.PersistenceErrors.WithLabelValues("counters", "read").Inc()
		s.log.Warn().Err(err).Str("user", user).Msg("Counters unavailable, showing computed totals")
		persisted = models.Counters{}
	}

	return models.Reconcile(persisted, computedIdeas, computedArticles), nil
}

// IncrementIdeas adds n to the ideas counter; n <= 0 is a no-op
func (s *counterService) IncrementIdeas(ctx context.Context, user string, n int) error {
	if n <= 0 {
		return nil
	}
	return s.increment(ctx, user, n, 0)
}

// IncrementArticles adds one to the articles counter
func (s *counterService) IncrementArticles(ctx context.Context, user string) error {
	return s.increment(ctx, user, 0, 1)
}

func (s *counterService) increment(ctx context.Context, user string, ideas, articles int) error {
	if err := s.repo.Increment(ctx, user, ideas, articles); err != nil {
		metrics.PersistenceErrors.WithLabelValues("counters", "write").Inc()
		return fmt.Errorf("%w: increment counters for %s: %w", models.ErrPersistence, user, err)
	}
	return nil
}

// Recalibrate overwrites both persistent counters with the totals computed
// from the current collection. An unreadable document aborts instead of
// resetting the counters to zero.
func (s *counterService) Recalibrate(ctx context.Context, user string) (*models.RecalibrationResult, error) {
	if err := validation.ValidateUser(user); err != nil {
		metrics.Recalibrations.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}

	result := &models.RecalibrationResult{User: user}
	err := s.store.withUser(ctx, user, func() error {
		ideas, migrated, err := s.store.read(ctx, user)
		if err != nil {
			return err
		}
		if migrated {
			if err := s.store.write(ctx, user, ideas); err != nil {
				return err
			}
		}

		previous, err := s.repo.Get(ctx, user)
		if err != nil {
			return fmt.Errorf("%w: read counters for %s: %w", models.ErrPersistence, user, err)
		}

		computedIdeas, computedArticles := models.ComputeCounts(ideas)
		current := models.Counters{IdeasGenerated: computedIdeas, ArticlesGenerated: computedArticles}
		if err := s.repo.Set(ctx, user, current); err != nil {
			metrics.PersistenceErrors.WithLabelValues("counters", "write").Inc()
			return fmt.Errorf("%w: set counters for %s: %w", models.ErrPersistence, user, err)
		}

		result.Previous = previous
		result.Current = current
		return nil
	})
	if err != nil {
		metrics.Recalibrations.WithLabelValues(resultOf(err)).Inc()
		s.log.Error().Err(err).Str("user", user).Msg("Recalibration failed")
		return nil, err
	}

	metrics.Recalibrations.WithLabelValues(metrics.ResultOK).Inc()
	s.log.Info().
		Str("user", user).
		Int("ideas_before", result.Previous.IdeasGenerated).
		Int("ideas_after", result.Current.IdeasGenerated).
		Int("articles_before", result.Previous.ArticlesGenerated).
		Int("articles_after", result.Current.ArticlesGenerated).
		Msg("Counters recalibrated")

	return result, nil
}

// RecalibrateAll recalibrates every user that has a stored collection. One
// user's failure does not stop the others; failures are joined in the error.
func (s *counterService) RecalibrateAll(ctx context.Context) ([]models.RecalibrationResult, error) {
	start := time.Now()
	users, err := s.store.ideas.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", models.ErrPersistence, err)
	}

	results := make([]models.RecalibrationResult, len(users))
	errs := make([]error, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, user := range users {
		g.Go(func() error {
			res, err := s.Recalibrate(gctx, user)
			if err != nil {
				results[i] = models.RecalibrationResult{User: user, Error: err.Error()}
				errs[i] = err
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	s.log.Info().
		Int("users", len(users)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Bulk recalibration completed")

	return results, errors.Join(errs...)
}

// HealthCheck reports whether the counter backend is reachable
func (s *counterService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: counters backend: %w", models.ErrPersistence, err)
	}
	return nil
}
