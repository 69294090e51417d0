package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/trendsonar/internal/config"
	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
	memstore "github.com/alanyoungcy/trendsonar/internal/store/memory"
)

func testApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Defaults()
	cfg.Simulation.Seed = 7
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestInitialHistory(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("seeds samples into an empty history", func(t *testing.T) {
		a := testApp(t, nil)
		history := memstore.NewHistoryStore()
		preds, subs, err := a.initialHistory(ctx, &Dependencies{History: history})
		require.NoError(t, err)
		require.Len(t, preds, 2)
		require.Len(t, subs, 3)
		for _, p := range preds {
			assert.NotEmpty(t, p.ID)
		}

		again, againSubs, err := a.initialHistory(ctx, &Dependencies{History: history})
		require.NoError(t, err)
		assert.Equal(t, preds, again, "seeds are stored and restored oldest first")
		assert.Equal(t, subs, againSubs)
	})

	t.Run("seeding disabled", func(t *testing.T) {
		a := testApp(t, func(c *config.Config) { c.Simulation.SeedSamples = false })
		preds, subs, err := a.initialHistory(ctx, &Dependencies{History: memstore.NewHistoryStore()})
		require.NoError(t, err)
		assert.Empty(t, preds)
		assert.Empty(t, subs)
	})

	t.Run("restores stored history oldest first", func(t *testing.T) {
		history := memstore.NewHistoryStore()
		require.NoError(t, history.UpsertPrediction(ctx, domain.Prediction{ID: "late", PredictedAt: t0.Add(time.Hour)}))
		require.NoError(t, history.UpsertPrediction(ctx, domain.Prediction{ID: "early", PredictedAt: t0}))

		a := testApp(t, nil)
		preds, subs, err := a.initialHistory(ctx, &Dependencies{History: history})
		require.NoError(t, err)
		require.Len(t, preds, 2)
		assert.Equal(t, "early", preds[0].ID)
		assert.Equal(t, "late", preds[1].ID)
		assert.Empty(t, subs, "stored history replaces the samples")
	})
}

func TestClockConfig(t *testing.T) {
	a := testApp(t, func(c *config.Config) {
		c.Simulation.SettleDelay.Duration = 9 * time.Second
	})
	cc := a.clockConfig()
	assert.Equal(t, 9*time.Second, cc.SettleDelay)
	assert.Equal(t, 15*time.Second, cc.HeatInterval)
	assert.Equal(t, 0.25, cc.CommunityProbability)
}

type fakeLock struct {
	hold func(ctx context.Context) error
	key  string
}

func (f *fakeLock) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

func (f *fakeLock) Hold(ctx context.Context, key string, _ time.Duration) error {
	f.key = key
	return f.hold(ctx)
}

func TestRunSimulation(t *testing.T) {
	newEngine := func() *engine.Engine {
		return engine.New(engine.Options{
			Rand:   engine.NewRand(1),
			Trends: engine.SampleTrends(engine.NewRand(1)),
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	}

	t.Run("lock held elsewhere is not fatal", func(t *testing.T) {
		a := testApp(t, nil)
		lock := &fakeLock{hold: func(context.Context) error { return domain.ErrLockHeld }}
		require.NoError(t, a.runSimulation(context.Background(), newEngine(), lock))
		assert.Equal(t, "simulation:default", lock.key)
	})

	t.Run("lost lock stops the simulation", func(t *testing.T) {
		a := testApp(t, nil)
		lost := errors.New("redis: lock simulation:default lost")
		lock := &fakeLock{hold: func(context.Context) error { return lost }}
		err := a.runSimulation(context.Background(), newEngine(), lock)
		assert.ErrorIs(t, err, lost)
	})

	t.Run("cancellation", func(t *testing.T) {
		a := testApp(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		lock := &fakeLock{hold: func(ctx context.Context) error { <-ctx.Done(); return nil }}
		done := make(chan error, 1)
		go func() { done <- a.runSimulation(ctx, newEngine(), lock) }()
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("runSimulation did not return")
		}
	})
}

func TestRun_UnsupportedMode(t *testing.T) {
	a := testApp(t, nil)
	a.cfg.Mode = "trade"
	defer a.Close()

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported mode "trade"`)
}

func TestHeadlessMode_StartupRewards(t *testing.T) {
	a := testApp(t, func(c *config.Config) { c.Mode = "headless" })
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "memory", deps.Backend)
	assert.Nil(t, deps.Limiter)
	assert.Nil(t, deps.Lock)

	err = a.HeadlessMode(ctx, deps)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	bg := context.Background()
	raw, err := deps.State.Get(bg, domain.StateBalance)
	require.NoError(t, err)
	balance, err := strconv.Atoi(raw)
	require.NoError(t, err)
	// starting 100 + new user 50 + daily 20, plus loyalty on a long streak
	assert.Contains(t, []int{170, 220}, balance)

	_, err = deps.State.Get(bg, domain.StateFirstSeen)
	assert.NoError(t, err)

	msgs, err := deps.Bus.StreamRead(bg, domain.StreamEngine, "0", 100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(msgs), 2, "credit events reach the stream")
}
