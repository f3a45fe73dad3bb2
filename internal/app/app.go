package app

import (
	"context"
	"log/slog"

	mstore "timetrack-api/internal/adapter/mongo"
	"timetrack-api/internal/config"
	"timetrack-api/internal/ports"
	"timetrack-api/internal/usecase"
)

// App wires the store adapter and use case behind the HTTP surface.
type App struct {
	log         *slog.Logger
	tracker     *usecase.Tracker
	diag        ports.Diagnostics
	allowOrigin string
	databaseURL bool // whether DATABASE_URL was supplied, surfaced by /test
	close       func(context.Context) error
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	store, err := mstore.NewStore(ctx, cfg.Database.URL, cfg.Database.Name, log)
	if err != nil {
		return nil, err
	}
	a := NewWithStore(log, store, store)
	a.allowOrigin = cfg.HTTP.AllowOrigin
	a.databaseURL = cfg.Database.URL != ""
	a.close = store.Close
	return a, nil
}

// NewWithStore wires an App around an already-constructed gateway. Tests
// use it to swap in fakes; New uses it with the real adapter.
func NewWithStore(log *slog.Logger, store ports.Store, diag ports.Diagnostics) *App {
	return &App{
		log:         log,
		tracker:     usecase.NewTracker(log, store),
		diag:        diag,
		allowOrigin: "*",
	}
}

// Tracker exposes the use case for tests that need clock control.
func (a *App) Tracker() *usecase.Tracker { return a.tracker }

// Close releases the store connection, if this App owns one.
func (a *App) Close(ctx context.Context) error {
	if a.close == nil {
		return nil
	}
	return a.close(ctx)
}
