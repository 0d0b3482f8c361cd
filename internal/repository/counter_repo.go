package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/content-ideas-api/internal/database"
	"github.com/content-ideas-api/internal/models"
)

const countersTable = "user_counters"

// sqlCounterRepo stores counters in the user_counters table (Postgres or SQLite)
type sqlCounterRepo struct {
	db      *database.DB
	builder sq.StatementBuilderType
}

// NewCounterRepo creates a SQL-backed CounterRepository
func NewCounterRepo(db *database.DB) CounterRepository {
	return &sqlCounterRepo{db: db, builder: db.StatementBuilder()}
}

// Get returns the stored counters; a user without a row has zero counters
func (r *sqlCounterRepo) Get(ctx context.Context, user string) (models.Counters, error) {
	query, args, err := r.builder.
		Select("ideas_generated", "articles_generated").
		From(countersTable).
		Where(sq.Eq{"email": user}).
		ToSql()
	if err != nil {
		return models.Counters{}, fmt.Errorf("build select counters: %w", err)
	}

	var ideas, articles int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&ideas, &articles)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Counters{}, nil
	}
	if err != nil {
		return models.Counters{}, fmt.Errorf("select counters: %w", err)
	}

	return models.Counters{
		IdeasGenerated:    int(max(ideas, 0)),
		ArticlesGenerated: int(max(articles, 0)),
	}, nil
}

// Increment adds the deltas with a single upsert, so concurrent calls never
// lose an update.
func (r *sqlCounterRepo) Increment(ctx context.Context, user string, ideas, articles int) error {
	if ideas < 0 || articles < 0 {
		return fmt.Errorf("%w: negative counter delta", models.ErrValidation)
	}
	if ideas == 0 && articles == 0 {
		return nil
	}

	query, args, err := r.builder.
		Insert(countersTable).
		Columns("email", "ideas_generated", "articles_generated", "updated_at").
		Values(user, ideas, articles, time.Now().UTC()).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			ideas_generated = ` + countersTable + `.ideas_generated + excluded.ideas_generated,
			articles_generated = ` + countersTable + `.articles_generated + excluded.articles_generated,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment counters: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment counters: %w", err)
	}
	return nil
}

// Set overwrites both counters
func (r *sqlCounterRepo) Set(ctx context.Context, user string, counters models.Counters) error {
	query, args, err := r.builder.
		Insert(countersTable).
		Columns("email", "ideas_generated", "articles_generated", "updated_at").
		Values(user, max(counters.IdeasGenerated, 0), max(counters.ArticlesGenerated, 0), time.Now().UTC()).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			ideas_generated = excluded.ideas_generated,
			articles_generated = excluded.articles_generated,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set counters: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set counters: %w", err)
	}
	return nil
}

// HealthCheck pings the database
func (r *sqlCounterRepo) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
