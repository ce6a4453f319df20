package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/nifconv/internal/batch"
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/ctxlog"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/profile"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	profile    *profile.Profile
	dispatcher *convert.Dispatcher
	runner     atomic.Pointer[batch.Runner]
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and dispatcher.
// A profile that cannot be loaded or a rule table that does not match the
// legacy schema is a fatal startup error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...convert.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	prof, err := profile.Load(ctx, cfg.ProfilePath)
	if err != nil {
		panic(fmt.Errorf("failed to load profile: %w", err))
	}

	if len(modules) == 0 {
		modules = Modules(prof.ExactCopy)
	}
	d := convert.NewDispatcher(modules...)
	logger.Debug("All rule modules registered.", "count", len(modules), "types", len(d.Types()))

	if err := d.Validate(document.LegacySchema()); err != nil {
		panic(err)
	}
	logger.Debug("Dispatcher validation passed.")

	return &App{
		ctx:        ctx,
		outW:       outW,
		logger:     logger,
		config:     cfg,
		profile:    prof,
		dispatcher: d,
	}
}

// Dispatcher returns the application's rule table. This is primarily for testing.
func (a *App) Dispatcher() *convert.Dispatcher {
	return a.dispatcher
}
