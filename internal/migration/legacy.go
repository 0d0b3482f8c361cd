// Package migration upgrades idea records written with the single-article
// schema to the versioned schema.
package migration

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/content-ideas-api/internal/htmltext"
	"github.com/content-ideas-api/internal/models"
)

// Migrator normalizes idea records in place
type Migrator struct {
	now   func() time.Time
	newID func() string
}

// Option customizes a Migrator
type Option func(*Migrator)

// WithClock sets the time source used for synthesized versions
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) { m.now = now }
}

// WithIDGenerator sets the id source used for synthesized versions
func WithIDGenerator(newID func() string) Option {
	return func(m *Migrator) { m.newID = newID }
}

// New creates a Migrator using the wall clock and random UUIDs
func New(opts ...Option) *Migrator {
	m := &Migrator{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Normalize brings idea to the versioned shape and reports whether it changed.
// Running it on its own output never reports a change.
//
//   - a missing or malformed version list becomes a list, seeded from the
//     legacy "articulo" html when that is non-blank
//   - null entries are dropped, missing ids and unknown statuses are filled in
//   - entries repaired while decoding count as a change so they are rewritten
//   - the compatibility alias is re-synced to the newest version
func (m *Migrator) Normalize(idea *models.Idea) bool {
	changed := idea.TakeRepaired() > 0

	if idea.Articles == nil {
		idea.Articles = []models.Article{}
		changed = true
	}

	if len(idea.Articles) == 0 && strings.TrimSpace(idea.LatestHTML) != "" {
		idea.Articles = append(idea.Articles, m.fromLegacy(idea))
		changed = true
	}

	kept := idea.Articles[:0]
	for _, article := range idea.Articles {
		if article == (models.Article{}) {
			changed = true
			continue
		}
		if article.ID == "" {
			article.ID = m.newID()
			changed = true
		}
		if !article.Status.Valid() {
			status, ok := models.ParseStatus(string(article.Status))
			if !ok {
				status = models.StatusDraft
			}
			article.Status = status
			changed = true
		}
		kept = append(kept, article)
	}
	idea.Articles = kept

	before := idea.LatestHTML
	idea.SyncLatest()
	if idea.LatestHTML != before {
		changed = true
	}

	return changed
}

// fromLegacy builds the single version that replaces a legacy "articulo" field
func (m *Migrator) fromLegacy(idea *models.Idea) models.Article {
	html := idea.LatestHTML
	return models.Article{
		ID:        m.newID(),
		Title:     DeriveTitle(html, idea.Title, idea.Keyword),
		Preview:   htmltext.Preview(html),
		HTML:      html,
		Status:    models.StatusDraft,
		CreatedAt: m.now().UTC(),
	}
}

// DeriveTitle picks a version title from its html, falling back to the idea
// title and then the keyword.
func DeriveTitle(html string, fallbacks ...string) string {
	if title := htmltext.Title(html); title != "" {
		return title
	}
	for _, f := range fallbacks {
		if f = strings.TrimSpace(f); f != "" {
			return f
		}
	}
	return ""
}
