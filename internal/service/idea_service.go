package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/metrics"
	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/validation"
)

// ideaService is the concrete implementation of IdeaService
type ideaService struct {
	store    *documentStore
	counters CounterService
	log      zerolog.Logger
}

// newIdeaService creates a new IdeaService
func newIdeaService(store *documentStore, counters CounterService, log zerolog.Logger) *ideaService {
	return &ideaService{
		store:    store,
		counters: counters,
		log:      log.With().Str("service", "ideas").Logger(),
	}
}

// Load returns the user's collection. Read failures yield an empty collection.
func (s *ideaService) Load(ctx context.Context, user string) ([]models.Idea, error) {
	start := time.Now()
	if err := validation.ValidateUser(user); err != nil {
		metrics.ObserveOperation("load", metrics.ResultInvalid, start)
		return nil, err
	}

	ideas := s.store.load(ctx, user)
	metrics.ObserveOperation("load", metrics.ResultOK, start)
	return ideas, nil
}

// Get returns the idea whose merge key matches keyword
func (s *ideaService) Get(ctx context.Context, user, keyword string) (*models.Idea, error) {
	if err := validation.ValidateUser(user); err != nil {
		return nil, err
	}
	if err := validation.ValidateKeyword(keyword); err != nil {
		return nil, err
	}

	ideas := s.store.load(ctx, user)
	idx := models.FindIdea(ideas, keyword)
	if idx < 0 {
		return nil, fmt.Errorf("%w: idea %q", models.ErrNotFound, keyword)
	}
	return &ideas[idx], nil
}

// Merge upserts payloads by merge key and returns how many keys were new.
// Payloads with a blank keyword are skipped. Existing article history is
// kept unless a payload supplies its own non-empty version list. The ideas
// counter grows by exactly the number of new keys.
func (s *ideaService) Merge(ctx context.Context, user string, payloads []models.IdeaPayload) (int, error) {
	start := time.Now()
	if err := validation.ValidateUser(user); err != nil {
		metrics.ObserveOperation("merge", metrics.ResultInvalid, start)
		return 0, err
	}

	validator := validation.NewValidator()
	for i := range payloads {
		if models.MergeKey(payloads[i].Keyword) == "" {
			continue
		}
		if errs := validator.ValidateIdeaPayload(&payloads[i], i+1); len(errs) > 0 {
			metrics.ObserveOperation("merge", metrics.ResultInvalid, start)
			return 0, fmt.Errorf("%w: idea %d: %s: %s", models.ErrValidation, i+1, errs[0].Field, errs[0].Message)
		}
	}

	var added, updated int
	err := s.store.update(ctx, user, func(ideas []models.Idea) ([]models.Idea, bool, error) {
		added, updated = 0, 0
		for i := range payloads {
			p := &payloads[i]
			if models.MergeKey(p.Keyword) == "" {
				continue
			}

			incoming := s.fromPayload(p)
			idx := models.FindIdea(ideas, p.Keyword)
			if idx < 0 {
				ideas = append(ideas, incoming)
				added++
				continue
			}

			merged := mergeIdea(ideas[idx], incoming, len(p.Articles) > 0)
			if !sameIdea(ideas[idx], merged) {
				ideas[idx] = merged
				updated++
			}
		}
		return ideas, added+updated > 0, nil
	}, func(ctx context.Context) {
		if added == 0 {
			return
		}
		if err := s.counters.IncrementIdeas(ctx, user, added); err != nil {
			s.log.Error().Err(err).Str("user", user).Int("added", added).Msg("Failed to increment ideas counter")
		}
	})
	if err != nil {
		metrics.ObserveOperation("merge", resultOf(err), start)
		return 0, err
	}

	metrics.IdeasMerged.WithLabelValues("new").Add(float64(added))
	metrics.IdeasMerged.WithLabelValues("updated").Add(float64(updated))
	metrics.ObserveOperation("merge", metrics.ResultOK, start)

	s.log.Info().
		Str("user", user).
		Int("incoming", len(payloads)).
		Int("new", added).
		Int("updated", updated).
		Dur("duration", time.Since(start)).
		Msg("Ideas merged")

	return added, nil
}

// Delete removes the idea matching keyword. Counters are left untouched.
func (s *ideaService) Delete(ctx context.Context, user, keyword string) error {
	start := time.Now()
	if err := validation.ValidateUser(user); err != nil {
		return err
	}
	if err := validation.ValidateKeyword(keyword); err != nil {
		return err
	}

	err := s.store.update(ctx, user, func(ideas []models.Idea) ([]models.Idea, bool, error) {
		idx := models.FindIdea(ideas, keyword)
		if idx < 0 {
			return ideas, false, fmt.Errorf("%w: idea %q", models.ErrNotFound, keyword)
		}
		return append(ideas[:idx], ideas[idx+1:]...), true, nil
	}, nil)
	metrics.ObserveOperation("delete_idea", resultOf(err), start)
	if err != nil {
		return err
	}

	s.log.Info().Str("user", user).Str("keyword", keyword).Msg("Idea deleted")
	return nil
}

// fromPayload builds a stored idea from a generator payload. The title is
// stored as sent, blank included, so a repeated merge never changes it.
func (s *ideaService) fromPayload(p *models.IdeaPayload) models.Idea {
	idea := models.NewIdea(p.Keyword)
	idea.Title = strings.TrimSpace(p.Title)
	idea.Keywords = cloneStrings(p.Keywords)
	idea.SuggestedHeadings = cloneStrings(p.SuggestedHeadings)
	idea.SEOTips = cloneStrings(p.SEOTips)

	if len(p.Articles) > 0 {
		idea.Articles = append([]models.Article(nil), p.Articles...)
		s.store.migrator.Normalize(&idea)
	}
	return idea
}

// mergeIdea replaces the scalar fields of existing with incoming
func mergeIdea(existing, incoming models.Idea, replaceArticles bool) models.Idea {
	merged := existing
	merged.Keyword = incoming.Keyword
	merged.Title = incoming.Title
	merged.Keywords = incoming.Keywords
	merged.SuggestedHeadings = incoming.SuggestedHeadings
	merged.SEOTips = incoming.SEOTips
	if replaceArticles {
		merged.Articles = incoming.Articles
		merged.SyncLatest()
	}
	return merged
}

// sameIdea compares ideas by their stored encoding
func sameIdea(a, b models.Idea) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}

func cloneStrings(items []string) []string {
	return append(make([]string, 0, len(items)), items...)
}

// resultOf maps an operation error to a metrics result label
func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, models.ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, models.ErrValidation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
