package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

type engineHarness struct {
	engine *Engine
	sched  *manualScheduler
	rng    *scriptedRand
	sink   *recordingSink
	cancel context.CancelFunc
	done   <-chan error
}

func startEngine(t *testing.T, opts Options) engineHarness {
	t.Helper()
	h := engineHarness{sched: &manualScheduler{}, rng: &scriptedRand{}, sink: &recordingSink{}}
	opts.Scheduler = h.sched
	opts.Rand = h.rng
	opts.Sink = h.sink
	opts.Now = fixedNow
	opts.Logger = discardLogger()
	h.engine = New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.engine.Run(ctx) }()
	h.cancel, h.done = cancel, done
	t.Cleanup(cancel)
	return h
}

// fire runs the armed callbacks on the engine loop.
func (h engineHarness) fire(t *testing.T) int {
	t.Helper()
	n := 0
	require.NoError(t, h.engine.loop.Do(context.Background(), func() { n = h.sched.fireOnce() }))
	return n
}

func TestEngine_PredictionScenario(t *testing.T) {
	h := startEngine(t, Options{StartingBalance: 100, Trends: []domain.TrendItem{trendAt("渔夫帽", 40)}})
	ctx := context.Background()

	p, err := h.engine.OpenPrediction(ctx, PredictionRequest{
		TrendName:  "渔夫帽",
		TargetZone: domain.ZoneTrending,
		Confidence: 70,
		BetAmount:  20,
	})
	require.NoError(t, err)

	balance, err := h.engine.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80, balance)
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sched.live())

	h.rng.pushFloats(0.1)
	require.Equal(t, 1, h.fire(t))

	balance, err = h.engine.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 140, balance)

	preds, err := h.engine.Predictions(ctx)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, p.ID, preds[0].ID)
	assert.Equal(t, domain.OutcomeCorrect, preds[0].Outcome)

	score, err := h.engine.Score(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, score.AccuracyRate)
	assert.Equal(t, 1, score.Correct)

	total, err := h.engine.TotalPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, score.TotalPoints, total)

	entries, err := h.engine.LedgerEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEngine_OpenPredictionInsufficientFunds(t *testing.T) {
	h := startEngine(t, Options{StartingBalance: 100, Trends: []domain.TrendItem{trendAt("渔夫帽", 40)}})
	ctx := context.Background()

	_, err := h.engine.OpenPrediction(ctx, PredictionRequest{
		TrendName:  "渔夫帽",
		TargetZone: domain.ZoneTrending,
		Confidence: 50,
		BetAmount:  150,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err := h.engine.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
	assert.Empty(t, h.sched.live())
}

func TestEngine_OpenPredictionCancelledBeforeRunLeavesNoTrace(t *testing.T) {
	h := startEngine(t, Options{StartingBalance: 100, Trends: []domain.TrendItem{trendAt("渔夫帽", 40)}})

	entered, release := make(chan struct{}), make(chan struct{})
	go func() {
		_ = h.engine.loop.Do(context.Background(), func() {
			close(entered)
			<-release
		})
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := h.engine.OpenPrediction(ctx, PredictionRequest{
			TrendName: "渔夫帽", TargetZone: domain.ZoneTrending, Confidence: 70, BetAmount: 20,
		})
		result <- err
	}()
	require.Eventually(t, func() bool { return len(h.engine.loop.tasks) == 1 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-result, context.Canceled)
	close(release)

	bg := context.Background()
	balance, err := h.engine.Balance(bg)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
	preds, err := h.engine.Predictions(bg)
	require.NoError(t, err)
	assert.Empty(t, preds)
	assert.Empty(t, h.sched.live())
	assert.Empty(t, h.sink.types())
}

func TestEngine_SubmitSchedulesReview(t *testing.T) {
	h := startEngine(t, Options{})
	ctx := context.Background()

	_, err := h.engine.Submit(ctx, domain.SubmissionDraft{Name: " "})
	require.ErrorIs(t, err, domain.ErrInvalidSubmission)
	assert.Empty(t, h.sched.live())

	s, err := h.engine.Submit(ctx, validDraft())
	require.NoError(t, err)
	assert.Len(t, h.sched.live(), 1)

	require.Equal(t, 1, h.fire(t)) // approve
	approved, err := h.engine.Submissions(ctx, domain.SubmissionApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, s.ID, approved[0].ID)

	trends, err := h.engine.AllTrends(ctx)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, domain.ZoneNiche, trends[0].Zone)

	stats, err := h.engine.SubmissionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStats{Total: 1, Approved: 1}, stats)
}

func TestEngine_ResumesSeededWork(t *testing.T) {
	h := startEngine(t, Options{
		StartingBalance: 100,
		Trends:          SampleTrends(&scriptedRand{}),
		Predictions:     SamplePredictions(testEpoch),
		Submissions:     SampleSubmissions(testEpoch),
	})
	ctx := context.Background()

	// one settlement, one review, one promotion
	assert.Len(t, h.sched.live(), 3)

	require.NoError(t, h.engine.Stop(ctx))
	assert.Empty(t, h.sched.live())

	balance, err := h.engine.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, balance, "seeded stakes are not debited")
}

func TestEngine_TrendQueries(t *testing.T) {
	h := startEngine(t, Options{Trends: SampleTrends(&scriptedRand{})})
	ctx := context.Background()

	all, err := h.engine.AllTrends(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 16)

	radar, err := h.engine.RadarTrends(ctx)
	require.NoError(t, err)
	assert.Len(t, radar, 16)

	predictable, err := h.engine.PredictableTrends(ctx)
	require.NoError(t, err)
	assert.Len(t, predictable, 6)

	hot, err := h.engine.TrendsAboveHeat(ctx, 80)
	require.NoError(t, err)
	assert.Len(t, hot, 4)

	updated, err := h.engine.UpdateHeat(ctx, all[0].ID, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.ZoneNiche, updated.Zone)

	_, err = h.engine.UpdateHeat(ctx, "missing", 10)
	assert.ErrorIs(t, err, domain.ErrTrendNotFound)

	added, err := h.engine.AddTrend(ctx, trendAt("新趋势", 33))
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
}

func TestEngine_LedgerCommands(t *testing.T) {
	h := startEngine(t, Options{StartingBalance: 10})
	ctx := context.Background()

	balance, err := h.engine.Credit(ctx, 50, "new user bonus")
	require.NoError(t, err)
	assert.Equal(t, 60, balance)

	ok, err := h.engine.Debit(ctx, 100, "too much")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.engine.Debit(ctx, 60, "all in")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []domain.EventType{domain.EventLedgerCredit, domain.EventLedgerDebit}, h.sink.types())
}

func TestEngine_Snapshot(t *testing.T) {
	h := startEngine(t, Options{
		StartingBalance: 120,
		Trends:          SampleTrends(&scriptedRand{}),
		Predictions:     SamplePredictions(testEpoch),
		Submissions:     SampleSubmissions(testEpoch),
	})
	ctx := context.Background()

	snap, err := h.engine.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, testEpoch, snap.TakenAt)
	assert.Equal(t, 120, snap.Balance)
	assert.Len(t, snap.Trends, 16)
	assert.Len(t, snap.Predictions, 2)
	assert.Len(t, snap.Submissions, 3)
	assert.Equal(t, 3, snap.Stats.Total)

	breakdown, err := h.engine.PointsBreakdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Score.Breakdown, breakdown)

	rate, err := h.engine.AccuracyRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, rate)

	stats, err := h.engine.PredictionStats(ctx, "渔夫帽")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestEngine_StoppedRejectsCommands(t *testing.T) {
	h := startEngine(t, Options{StartingBalance: 100})
	h.cancel()
	<-h.done

	_, err := h.engine.Balance(context.Background())
	assert.ErrorIs(t, err, domain.ErrEngineStopped)
}
