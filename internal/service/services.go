package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/migration"
	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/repository"
)

// IdeaService defines the interface for idea collection operations
type IdeaService interface {
	Load(ctx context.Context, user string) ([]models.Idea, error)
	Get(ctx context.Context, user, keyword string) (*models.Idea, error)
	Merge(ctx context.Context, user string, payloads []models.IdeaPayload) (int, error)
	Delete(ctx context.Context, user, keyword string) error
}

// ArticleService defines the interface for article version operations
type ArticleService interface {
	Append(ctx context.Context, user, keyword, html, status string) (*models.Article, error)
	UpdateStatus(ctx context.Context, user, keyword, articleID, status string) (*models.Article, error)
	Delete(ctx context.Context, user, keyword, articleID string) error
}

// CounterService defines the interface for historical counters
type CounterService interface {
	GetCounts(ctx context.Context, user string) (models.Counts, error)
	IncrementIdeas(ctx context.Context, user string, n int) error
	IncrementArticles(ctx context.Context, user string) error
	Recalibrate(ctx context.Context, user string) (*models.RecalibrationResult, error)
	RecalibrateAll(ctx context.Context) ([]models.RecalibrationResult, error)
	HealthCheck(ctx context.Context) error
}

// ImportService defines the interface for bulk idea imports
type ImportService interface {
	Import(ctx context.Context, user string, r io.Reader) (*models.ImportResult, error)
}

// ExportService defines the interface for idea exports
type ExportService interface {
	Export(ctx context.Context, w io.Writer, user, format string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Ideas    IdeaService
	Articles ArticleService
	Counters CounterService
	Import   ImportService
	Export   ExportService
}

// Option customizes service construction
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock sets the time source for new and updated article versions
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the id source for new article versions
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	o := options{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	migrator := migration.New(migration.WithClock(o.now), migration.WithIDGenerator(o.newID))
	store := newDocumentStore(repos.Ideas, migrator, log)

	counterSvc := newCounterService(store, repos.Counters, cfg.Admin.RecalibrationConcurrency, log)
	ideaSvc := newIdeaService(store, counterSvc, log)
	articleSvc := newArticleService(store, counterSvc, o.now, o.newID, log)

	return &Services{
		Ideas:    ideaSvc,
		Articles: articleSvc,
		Counters: counterSvc,
		Import:   newImportService(ideaSvc, log),
		Export:   newExportService(ideaSvc, log),
	}
}
