// Package app wires the trendsonar dependencies and runs the engine, the
// simulation clock and the HTTP API according to the configured mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alanyoungcy/trendsonar/internal/config"
)

// App holds the configuration and the teardown hooks registered while wiring.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	mu      sync.Mutex
	closers []func()
}

// New creates an App. Nothing is connected until Run.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

type modeFunc func(*App, context.Context, *Dependencies) error

var modes = map[string]modeFunc{
	"headless": (*App).HeadlessMode,
	"server":   (*App).ServerMode,
	"full":     (*App).FullMode,
}

// Run wires the backends and blocks in the configured mode until ctx ends or
// a component fails.
func (a *App) Run(ctx context.Context) error {
	runMode, ok := modes[strings.ToLower(a.cfg.Mode)]
	if !ok {
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}

	a.logger.InfoContext(ctx, "app: config loaded", slog.Any("config", config.RedactedConfig(a.cfg)))

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.onClose(cleanup)

	return runMode(a, ctx, deps)
}

func (a *App) onClose(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Close releases everything Run acquired, newest first. Later calls do nothing.
func (a *App) Close() {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	if len(closers) == 0 {
		return
	}
	a.logger.Info("app: releasing resources", slog.Int("closers", len(closers)))
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
