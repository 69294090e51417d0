package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
	"github.com/alanyoungcy/trendsonar/internal/server"
	"github.com/alanyoungcy/trendsonar/internal/server/handler"
	"github.com/alanyoungcy/trendsonar/internal/server/ws"
	"github.com/alanyoungcy/trendsonar/internal/service"
)

// HeadlessMode runs the engine and the simulation clock without the HTTP API.
func (a *App) HeadlessMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting headless mode")
	return a.run(ctx, deps, true, false)
}

// ServerMode serves the HTTP API. Heat drift and community submissions are
// off; settlement, review and promotion timers still run.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")
	return a.run(ctx, deps, false, true)
}

// FullMode runs the simulation clock and the HTTP API together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")
	return a.run(ctx, deps, true, true)
}

func (a *App) run(ctx context.Context, deps *Dependencies, simulate, serve bool) error {
	startedAt := time.Now().UTC()
	g, ctx := errgroup.WithContext(ctx)

	rng := engine.NewRand(a.cfg.Simulation.Seed)
	eco := a.cfg.Economy
	rewards := service.NewRewardService(deps.State, service.RewardConfig{
		StartingBalance:   eco.StartingBalance,
		NewUserBonus:      eco.NewUserBonus,
		DailyReward:       eco.DailyReward,
		LoyaltyBonus:      eco.LoyaltyBonus,
		LoyaltyStreakDays: eco.LoyaltyStreakDays,
	}, rng, nil, a.logger)

	balance, fresh, err := rewards.OpeningBalance(ctx)
	if err != nil {
		return fmt.Errorf("app: opening balance: %w", err)
	}
	preds, subs, err := a.initialHistory(ctx, deps)
	if err != nil {
		return err
	}

	publisher := service.NewEventPublisher(
		deps.Bus, deps.Audit, deps.History, deps.State, deps.Notifier,
		a.cfg.Simulation.EventBuffer, a.logger,
	)
	g.Go(func() error {
		return publisher.Run(ctx)
	})

	eng := engine.New(engine.Options{
		Rand:            rng,
		Sink:            publisher,
		Clock:           a.clockConfig(),
		StartingBalance: balance,
		MinBet:          eco.MinBet,
		Trends:          engine.SampleTrends(rng),
		Predictions:     preds,
		Submissions:     subs,
		Logger:          a.logger,
	})
	g.Go(func() error {
		return eng.Run(ctx)
	})

	if _, err := rewards.Apply(ctx, eng, fresh); err != nil {
		a.logger.WarnContext(ctx, "app: startup rewards failed", slog.String("error", err.Error()))
	}
	profiles := service.NewProfileService(deps.State, eng, nil, a.logger)
	if _, err := profiles.Touch(ctx); err != nil {
		a.logger.WarnContext(ctx, "app: record first launch failed", slog.String("error", err.Error()))
	}

	if simulate {
		g.Go(func() error {
			return a.runSimulation(ctx, eng, deps.Lock)
		})
	}

	if deps.Blob != nil {
		archiver := service.NewArchiveService(eng, deps.Blob, a.cfg.State.Namespace, a.cfg.S3.ArchiveInterval.Duration, a.logger)
		if deps.Lock != nil {
			archiver.WithLock(deps.Lock)
		}
		g.Go(func() error {
			return archiver.Run(ctx)
		})
	}

	if serve {
		hub := ws.NewHub(deps.Bus, a.logger, ws.Config{Mode: a.cfg.Mode, StartedAt: startedAt})
		g.Go(func() error {
			return hub.Run(ctx)
		})

		srv := server.NewServer(server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
			RateLimit:   a.cfg.Server.RateLimit,
			RateWindow:  a.cfg.Server.RateWindow.Duration,
		}, server.Handlers{
			Health:      handler.NewHealthHandler(a.cfg.Mode, deps.Backend, startedAt, deps.Checks, a.logger),
			Wallet:      handler.NewWalletHandler(eng, a.logger),
			Trends:      handler.NewTrendHandler(eng, profiles, a.logger),
			Predictions: handler.NewPredictionHandler(eng, a.logger),
			Submissions: handler.NewSubmissionHandler(eng, a.logger),
			Profile:     handler.NewProfileHandler(eng, profiles, a.logger),
			Events:      handler.NewEventHandler(deps.Bus, a.logger),
		}, hub, deps.Limiter, a.logger)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	return g.Wait()
}

// runSimulation drives the clock. With a lock configured only the instance
// holding simulation:<namespace> ticks; the others keep serving.
func (a *App) runSimulation(ctx context.Context, eng *engine.Engine, lock domain.LockManager) error {
	if lock == nil {
		return eng.RunSimulation(ctx)
	}

	key := "simulation:" + a.cfg.State.Namespace
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return lock.Hold(gctx, key, a.cfg.Simulation.LockTTL.Duration)
	})
	g.Go(func() error {
		return eng.RunSimulation(gctx)
	})

	err := g.Wait()
	switch {
	case errors.Is(err, domain.ErrLockHeld):
		a.logger.WarnContext(ctx, "app: simulation owned by another instance", slog.String("lock", key))
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return err
}

// initialHistory restores predictions and submissions from the history store.
// With an empty history the sample entries are seeded when configured.
func (a *App) initialHistory(ctx context.Context, deps *Dependencies) ([]domain.Prediction, []domain.Submission, error) {
	preds, err := deps.History.ListPredictions(ctx, domain.ListOpts{})
	if err != nil {
		return nil, nil, fmt.Errorf("app: restore predictions: %w", err)
	}
	subs, err := deps.History.ListSubmissions(ctx, "", domain.ListOpts{})
	if err != nil {
		return nil, nil, fmt.Errorf("app: restore submissions: %w", err)
	}

	if len(preds) == 0 && len(subs) == 0 {
		if !a.cfg.Simulation.SeedSamples {
			return nil, nil, nil
		}
		return a.seedHistory(ctx, deps.History, time.Now())
	}

	// Stores list newest first; the engine wants oldest first.
	slices.Reverse(preds)
	slices.Reverse(subs)
	a.logger.InfoContext(ctx, "app: history restored",
		slog.Int("predictions", len(preds)),
		slog.Int("submissions", len(subs)),
	)
	return preds, subs, nil
}

// seedHistory writes the sample entries to the history store so they survive
// the next restart. Ids are assigned here so the engine restores the same ones.
func (a *App) seedHistory(ctx context.Context, history domain.HistoryStore, now time.Time) ([]domain.Prediction, []domain.Submission, error) {
	preds := engine.SamplePredictions(now)
	for i := range preds {
		preds[i].ID = uuid.New().String()
		if err := history.UpsertPrediction(ctx, preds[i]); err != nil {
			return nil, nil, fmt.Errorf("app: seed prediction %q: %w", preds[i].TrendName, err)
		}
	}
	subs := engine.SampleSubmissions(now)
	for i := range subs {
		subs[i].ID = uuid.New().String()
		if err := history.UpsertSubmission(ctx, subs[i]); err != nil {
			return nil, nil, fmt.Errorf("app: seed submission %q: %w", subs[i].Name, err)
		}
	}
	a.logger.InfoContext(ctx, "app: sample history seeded",
		slog.Int("predictions", len(preds)),
		slog.Int("submissions", len(subs)),
	)
	return preds, subs, nil
}

func (a *App) clockConfig() engine.ClockConfig {
	s := a.cfg.Simulation
	return engine.ClockConfig{
		HeatInterval:         s.HeatInterval.Duration,
		HeatSample:           s.HeatSample,
		HeatDeltaMin:         s.HeatDeltaMin,
		HeatDeltaMax:         s.HeatDeltaMax,
		CommunityInterval:    s.CommunityInterval.Duration,
		CommunityProbability: s.CommunityProbability,
		SettleDelay:          s.SettleDelay.Duration,
		ReviewDelayMin:       s.ReviewDelayMin.Duration,
		ReviewDelayMax:       s.ReviewDelayMax.Duration,
		PromoteDelayMin:      s.PromoteDelayMin.Duration,
		PromoteDelayMax:      s.PromoteDelayMax.Duration,
	}
}
