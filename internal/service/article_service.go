package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/htmltext"
	"github.com/content-ideas-api/internal/metrics"
	"github.com/content-ideas-api/internal/migration"
	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/validation"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	store    *documentStore
	counters CounterService
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(store *documentStore, counters CounterService, now func() time.Time, newID func() string, log zerolog.Logger) *articleService {
	return &articleService{
		store:    store,
		counters: counters,
		now:      now,
		newID:    newID,
		log:      log.With().Str("service", "articles").Logger(),
	}
}

// Append inserts a new version at the head of the idea's history, creating
// the idea when the keyword is unseen. An empty status means draft. Each
// successful call increments the articles counter exactly once.
func (s *articleService) Append(ctx context.Context, user, keyword, html, status string) (*models.Article, error) {
	start := time.Now()
	if err := validateTarget(user, keyword); err != nil {
		metrics.ObserveOperation("append_article", metrics.ResultInvalid, start)
		return nil, err
	}
	st, err := validation.ParseStatus(status, true)
	if err != nil {
		metrics.ObserveOperation("append_article", metrics.ResultInvalid, start)
		return nil, err
	}

	var created models.Article
	createdIdea := false
	err = s.store.update(ctx, user, func(ideas []models.Idea) ([]models.Idea, bool, error) {
		idx := models.FindIdea(ideas, keyword)
		if idx < 0 {
			ideas = append(ideas, models.NewIdea(keyword))
			idx = len(ideas) - 1
			createdIdea = true
		}
		idea := &ideas[idx]

		created = models.Article{
			ID:        s.newID(),
			Title:     migration.DeriveTitle(html, idea.Title, idea.Keyword),
			Preview:   htmltext.Preview(html),
			HTML:      html,
			Status:    st,
			CreatedAt: s.now().UTC(),
		}
		idea.Articles = append([]models.Article{created}, idea.Articles...)
		idea.SyncLatest()
		return ideas, true, nil
	}, func(ctx context.Context) {
		if err := s.counters.IncrementArticles(ctx, user); err != nil {
			s.log.Error().Err(err).Str("user", user).Str("article_id", created.ID).Msg("Failed to increment articles counter")
		}
	})
	metrics.ObserveOperation("append_article", resultOf(err), start)
	if err != nil {
		return nil, err
	}

	metrics.ArticlesAppended.Inc()
	s.log.Info().
		Str("user", user).
		Str("keyword", keyword).
		Str("article_id", created.ID).
		Str("status", string(created.Status)).
		Bool("new_idea", createdIdea).
		Msg("Article appended")

	return &created, nil
}

// UpdateStatus sets the status of one version. Any valid status may follow
// any other. Unknown statuses, ideas or ids leave the document untouched.
func (s *articleService) UpdateStatus(ctx context.Context, user, keyword, articleID, status string) (*models.Article, error) {
	start := time.Now()
	if err := validateTarget(user, keyword); err != nil {
		metrics.ObserveOperation("update_status", metrics.ResultInvalid, start)
		return nil, err
	}
	st, err := validation.ParseStatus(status, false)
	if err != nil {
		metrics.ObserveOperation("update_status", metrics.ResultInvalid, start)
		return nil, err
	}

	var updated models.Article
	err = s.store.update(ctx, user, func(ideas []models.Idea) ([]models.Idea, bool, error) {
		idea, article, err := findArticle(ideas, keyword, articleID)
		if err != nil {
			return ideas, false, err
		}

		now := s.now().UTC()
		idea.Articles[article].Status = st
		idea.Articles[article].UpdatedAt = &now
		updated = idea.Articles[article]
		return ideas, true, nil
	}, nil)
	metrics.ObserveOperation("update_status", resultOf(err), start)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user", user).
		Str("keyword", keyword).
		Str("article_id", articleID).
		Str("status", string(st)).
		Msg("Article status updated")

	return &updated, nil
}

// Delete removes one version by id and re-syncs the compatibility alias.
// Counters are left untouched.
func (s *articleService) Delete(ctx context.Context, user, keyword, articleID string) error {
	start := time.Now()
	if err := validateTarget(user, keyword); err != nil {
		metrics.ObserveOperation("delete_article", metrics.ResultInvalid, start)
		return err
	}

	err := s.store.update(ctx, user, func(ideas []models.Idea) ([]models.Idea, bool, error) {
		idea, article, err := findArticle(ideas, keyword, articleID)
		if err != nil {
			return ideas, false, err
		}

		idea.Articles = append(idea.Articles[:article], idea.Articles[article+1:]...)
		idea.SyncLatest()
		return ideas, true, nil
	}, nil)
	metrics.ObserveOperation("delete_article", resultOf(err), start)
	if err != nil {
		return err
	}

	s.log.Info().Str("user", user).Str("keyword", keyword).Str("article_id", articleID).Msg("Article deleted")
	return nil
}

// findArticle locates the idea for keyword and the index of articleID within it
func findArticle(ideas []models.Idea, keyword, articleID string) (*models.Idea, int, error) {
	idx := models.FindIdea(ideas, keyword)
	if idx < 0 {
		return nil, -1, fmt.Errorf("%w: idea %q", models.ErrNotFound, keyword)
	}
	idea := &ideas[idx]

	article := idea.FindArticle(articleID)
	if articleID == "" || article < 0 {
		return nil, -1, fmt.Errorf("%w: article %q in idea %q", models.ErrNotFound, articleID, keyword)
	}
	return idea, article, nil
}

func validateTarget(user, keyword string) error {
	if err := validation.ValidateUser(user); err != nil {
		return err
	}
	return validation.ValidateKeyword(keyword)
}
