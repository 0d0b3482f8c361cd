// Package app wires repositories and services from configuration. It is
// shared by the HTTP server and the ideasctl command.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/config"
	"github.com/content-ideas-api/internal/repository"
	"github.com/content-ideas-api/internal/service"
)

// App holds the wired dependencies of a running process
type App struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Services *service.Services

	closeCounters repository.Closer
}

// New opens the idea store and the configured counter backend and builds the services
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	ideas, err := repository.NewFileIdeaRepo(cfg.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open idea store: %w", err)
	}

	counters, closeCounters, err := repository.NewCounterRepository(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open counters backend %s: %w", cfg.Counters.Backend, err)
	}

	repos := repository.New(ideas, counters)

	log.Info().
		Str("data_dir", cfg.Store.DataDir).
		Str("counters_backend", cfg.Counters.Backend).
		Msg("Storage initialized")

	return &App{
		Config:        cfg,
		Repos:         repos,
		Services:      service.NewServices(repos, cfg, log),
		closeCounters: closeCounters,
	}, nil
}

// Close releases the counter backend
func (a *App) Close() error {
	return a.closeCounters()
}
