// Package setup wires the adapters into an application for the binaries.
package setup

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"stylebook/internal/adapters/filesystem"
	"stylebook/internal/adapters/httpfetch"
	"stylebook/internal/adapters/sqlite"
	"stylebook/internal/application"
	"stylebook/internal/config"
	"stylebook/internal/defaults"
)

// Env is an opened settings store with the application on top of it
type Env struct {
	Config *config.Config
	Store  *sqlite.Settings
	App    *application.App
}

// Open opens the settings database named by cfg, builds the application
// and seeds the bundled profiles on first run. ctx must carry the logger.
func Open(ctx context.Context, cfg *config.Config) (*Env, error) {
	store, err := sqlite.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	fetcher := httpfetch.New(
		httpfetch.WithTimeout(cfg.FetchTimeout),
		httpfetch.WithUserAgent(cfg.UserAgent),
		httpfetch.WithRetry(cfg.FetchAttempts, httpfetch.DefaultRetryDelay),
	)
	app := application.NewApp(store, fetcher, filesystem.NewOsAssetStore())

	seeds, err := defaults.Profiles()
	if err != nil {
		store.Close()
		return nil, errors.Errorf("bundled profiles: %w", err)
	}
	applied, err := application.EnsureDefaults(ctx, app.Profiles, app.Prefs, seeds)
	if err != nil {
		store.Close()
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("database", store.Path()).
		Str("config", cfg.Path()).
		Bool("seeded", applied).
		Msg("settings store ready")

	return &Env{Config: cfg, Store: store, App: app}, nil
}

// Close releases the settings store
func (e *Env) Close() error {
	return e.Store.Close()
}
