// Command trendsonar runs the trend economy engine: the prediction book, the
// submission board and the simulation clock, optionally behind the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanyoungcy/trendsonar/internal/app"
	"github.com/alanyoungcy/trendsonar/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "TOML config file; defaults and TRENDSONAR_* env apply without one")
	flag.Parse()

	// The level is raised or lowered once the config is known.
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("trendsonar: load config", slog.String("path", *configPath), slog.String("error", err.Error()))
		return 1
	}
	level.Set(cfg.SlogLevel())
	if err := cfg.Validate(); err != nil {
		logger.Error("trendsonar: invalid config", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, logger)
	defer a.Close()

	logger.Info("trendsonar: starting", slog.String("mode", cfg.Mode), slog.String("level", level.Level().String()))
	err = a.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Info("trendsonar: stopped")
		return 0
	default:
		logger.Error("trendsonar: exited", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "trendsonar: %v\n", err)
		return 1
	}
}
