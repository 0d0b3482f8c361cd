package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/metrics"
	"github.com/content-ideas-api/internal/migration"
	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/repository"
)

// mutation edits a collection in memory and reports whether it changed it
type mutation func(ideas []models.Idea) ([]models.Idea, bool, error)

// commitTimeout bounds the follow-up work run after a successful write
const commitTimeout = 5 * time.Second

// documentStore serializes access to each user's idea document and applies
// the legacy migration on every read.
type documentStore struct {
	ideas    repository.IdeaRepository
	migrator *migration.Migrator
	locks    *userLocks
	log      zerolog.Logger
}

func newDocumentStore(ideas repository.IdeaRepository, migrator *migration.Migrator, log zerolog.Logger) *documentStore {
	return &documentStore{
		ideas:    ideas,
		migrator: migrator,
		locks:    newUserLocks(),
		log:      log.With().Str("component", "document_store").Logger(),
	}
}

// acquire takes user's in-process lock and then the repository's document
// lock, which other processes sharing the data dir also respect.
func (s *documentStore) acquire(ctx context.Context, user string) (func(), error) {
	unlock := s.locks.lock(user)
	release, err := s.ideas.Lock(ctx, user)
	if err != nil {
		unlock()
		metrics.PersistenceErrors.WithLabelValues("document", "lock").Inc()
		return nil, fmt.Errorf("%w: lock ideas for %s: %w", models.ErrPersistence, user, err)
	}
	return func() {
		release()
		unlock()
	}, nil
}

// withUser runs fn while holding user's locks
func (s *documentStore) withUser(ctx context.Context, user string, fn func() error) error {
	unlock, err := s.acquire(ctx, user)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// read loads and normalizes the collection. The caller must hold user's lock.
func (s *documentStore) read(ctx context.Context, user string) ([]models.Idea, bool, error) {
	ideas, err := s.ideas.Load(ctx, user)
	if err != nil {
		metrics.PersistenceErrors.WithLabelValues("document", "read").Inc()
		return nil, false, fmt.Errorf("%w: load ideas for %s: %w", models.ErrPersistence, user, err)
	}

	migrated := 0
	for i := range ideas {
		if s.migrator.Normalize(&ideas[i]) {
			migrated++
		}
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}
	if migrated > 0 {
		metrics.LegacyMigrations.Add(float64(migrated))
		s.log.Info().Str("user", user).Int("records", migrated).Msg("Normalized legacy idea records")
	}
	return ideas, migrated > 0, nil
}

// write replaces the collection. The caller must hold user's lock.
func (s *documentStore) write(ctx context.Context, user string, ideas []models.Idea) error {
	if err := s.ideas.Save(ctx, user, ideas); err != nil {
		metrics.PersistenceErrors.WithLabelValues("document", "write").Inc()
		s.log.Error().Err(err).Str("user", user).Msg("Failed to write idea collection")
		return fmt.Errorf("%w: save ideas for %s: %w", models.ErrPersistence, user, err)
	}
	return nil
}

// load is the display read path. An unreadable document is reported as an
// empty collection; migrated records are written back once.
func (s *documentStore) load(ctx context.Context, user string) []models.Idea {
	unlock, err := s.acquire(ctx, user)
	if err != nil {
		s.log.Warn().Err(err).Str("user", user).Msg("Treating unlockable idea collection as empty")
		return []models.Idea{}
	}
	defer unlock()

	ideas, migrated, err := s.read(ctx, user)
	if err != nil {
		s.log.Warn().Err(err).Str("user", user).Msg("Treating unreadable idea collection as empty")
		return []models.Idea{}
	}
	if migrated {
		// The migrated view is still returned if the write-back fails
		_ = s.write(ctx, user, ideas)
	}
	return ideas
}

// update applies fn to the current collection under user's lock and writes
// the result once if fn or the migration changed it. committed runs after a
// successful write of a change made by fn, before the lock is released. Its
// context is detached from ctx: once the write has landed, a caller that
// goes away must not cancel the bookkeeping that belongs to it.
func (s *documentStore) update(ctx context.Context, user string, fn mutation, committed func(context.Context)) error {
	unlock, err := s.acquire(ctx, user)
	if err != nil {
		return err
	}
	defer unlock()

	ideas, migrated, err := s.read(ctx, user)
	if err != nil {
		return err
	}

	ideas, changed, err := fn(ideas)
	if err != nil {
		return err
	}
	if !changed && !migrated {
		return nil
	}

	if err := s.write(ctx, user, ideas); err != nil {
		return err
	}
	if changed && committed != nil {
		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
		defer cancel()
		committed(commitCtx)
	}
	return nil
}
