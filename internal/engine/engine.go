package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Options configures an Engine.
type Options struct {
	Rand  domain.Rand
	Now   func() time.Time
	Sink  domain.EventSink
	Clock ClockConfig

	// Scheduler overrides the loop's timers. Callbacks it fires must run on
	// the loop.
	Scheduler Scheduler

	StartingBalance int
	// MinBet raises the smallest accepted stake above domain.MinBet.
	MinBet          int
	Trends          []domain.TrendItem
	Predictions     []domain.Prediction // oldest first
	Submissions     []domain.Submission // oldest first

	Logger     *slog.Logger
	LoopBuffer int
}

// Engine is the trend economy. Every exported method runs on the engine loop,
// so callers on any goroutine see a serialized view of the state.
type Engine struct {
	loop    *Loop
	ledger  *Ledger
	catalog *Catalog
	book    *PredictionBook
	board   *SubmissionBoard
	clock   *Clock
	now     func() time.Time
	logger  *slog.Logger
}

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	TakenAt     time.Time              `json:"taken_at"`
	Balance     int                    `json:"balance"`
	Trends      []domain.TrendItem     `json:"trends"`
	Predictions []domain.Prediction    `json:"predictions"`
	Submissions []domain.Submission    `json:"submissions"`
	Ledger      []domain.LedgerEntry   `json:"ledger"`
	Score       Score                  `json:"score"`
	Stats       domain.SubmissionStats `json:"submission_stats"`
}

// New builds an engine from opts. Restored pending predictions are scheduled
// for settlement, pending submissions for review and approved submissions for
// promotion. Nothing runs until Run is called.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(0)
	}

	loop := NewLoop(opts.LoopBuffer, logger)
	sched := opts.Scheduler
	if sched == nil {
		sched = loop
	}

	ledger := NewLedger(opts.StartingBalance, opts.Sink, now)
	catalog := NewCatalog(opts.Trends, opts.Sink, now)
	book := NewPredictionBook(ledger, catalog, rng, opts.Sink, now)
	book.SetMinBet(opts.MinBet)
	board := NewSubmissionBoard(catalog, rng, opts.Sink, now)
	book.Restore(opts.Predictions)
	board.Restore(opts.Submissions)

	e := &Engine{
		loop:    loop,
		ledger:  ledger,
		catalog: catalog,
		book:    book,
		board:   board,
		clock:   NewClock(opts.Clock, sched, rng, catalog, book, board, logger),
		now:     now,
		logger:  logger.With(slog.String("component", "engine")),
	}
	e.resume()
	return e
}

func (e *Engine) resume() {
	for _, id := range e.book.Pending() {
		e.clock.ScheduleSettlement(id)
	}
	for _, s := range e.board.Pending() {
		e.clock.ScheduleReview(s.ID)
	}
	for _, s := range e.board.Approved() {
		e.clock.SchedulePromotion(s.ID)
	}
	if n := e.clock.Outstanding(); n > 0 {
		e.logger.Info("engine: resumed pending work", slog.Int("scheduled", n))
	}
}

// Run processes engine commands until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.loop.Run(ctx)
}

// RunSimulation drives the periodic heat and community ticks until ctx is
// cancelled. Run must be running concurrently.
func (e *Engine) RunSimulation(ctx context.Context) error {
	return e.clock.Run(ctx, e.loop.Do)
}

// Stop cancels every scheduled callback.
func (e *Engine) Stop(ctx context.Context) error {
	return e.loop.Do(ctx, e.clock.Stop)
}

func call[T any](ctx context.Context, e *Engine, fn func() T) (T, error) {
	var out T
	err := e.loop.Do(ctx, func() { out = fn() })
	return out, err
}

// Balance returns the coin balance.
func (e *Engine) Balance(ctx context.Context) (int, error) {
	return call(ctx, e, e.ledger.Balance)
}

// Credit adds coins and returns the new balance.
func (e *Engine) Credit(ctx context.Context, amount int, reason string) (int, error) {
	return call(ctx, e, func() int { return e.ledger.Credit(amount, reason) })
}

// Debit removes coins. It reports false when the balance is too low.
func (e *Engine) Debit(ctx context.Context, amount int, reason string) (bool, error) {
	return call(ctx, e, func() bool { return e.ledger.Debit(amount, reason) })
}

// LedgerEntries returns the session ledger, oldest first.
func (e *Engine) LedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	return call(ctx, e, e.ledger.Entries)
}

// AllTrends returns every trend in the catalog.
func (e *Engine) AllTrends(ctx context.Context) ([]domain.TrendItem, error) {
	return call(ctx, e, e.catalog.All)
}

// TrendsAboveHeat returns trends whose heat is at least threshold.
func (e *Engine) TrendsAboveHeat(ctx context.Context, threshold int) ([]domain.TrendItem, error) {
	return call(ctx, e, func() []domain.TrendItem { return e.catalog.AboveHeat(threshold) })
}

// RadarTrends returns the trends drawn on the radar.
func (e *Engine) RadarTrends(ctx context.Context) ([]domain.TrendItem, error) {
	return call(ctx, e, e.catalog.Radar)
}

// PredictableTrends returns the trends open for predictions.
func (e *Engine) PredictableTrends(ctx context.Context) ([]domain.TrendItem, error) {
	return call(ctx, e, e.catalog.Predictable)
}

// AddTrend appends a trend to the catalog.
func (e *Engine) AddTrend(ctx context.Context, item domain.TrendItem) (domain.TrendItem, error) {
	return call(ctx, e, func() domain.TrendItem { return e.catalog.Add(item) })
}

// UpdateHeat re-scores a trend. It returns domain.ErrTrendNotFound for an
// unknown id.
func (e *Engine) UpdateHeat(ctx context.Context, id string, heat int) (domain.TrendItem, error) {
	var (
		t  domain.TrendItem
		ok bool
	)
	if err := e.loop.Do(ctx, func() { t, ok = e.catalog.UpdateHeat(id, heat) }); err != nil {
		return domain.TrendItem{}, err
	}
	if !ok {
		return domain.TrendItem{}, domain.ErrTrendNotFound
	}
	return t, nil
}

// OpenPrediction stakes coins on a trend and schedules its settlement.
func (e *Engine) OpenPrediction(ctx context.Context, req PredictionRequest) (domain.Prediction, error) {
	var (
		p       domain.Prediction
		openErr error
	)
	err := e.loop.Do(ctx, func() {
		p, openErr = e.book.Open(req)
		if openErr == nil {
			e.clock.ScheduleSettlement(p.ID)
		}
	})
	if err != nil {
		return domain.Prediction{}, err
	}
	if openErr != nil {
		return domain.Prediction{}, openErr
	}
	e.logger.InfoContext(ctx, "engine: prediction opened",
		slog.String("prediction_id", p.ID),
		slog.String("trend", p.TrendName),
		slog.Int("bet", p.BetAmount),
	)
	return p, nil
}

// Predictions returns every prediction, newest first.
func (e *Engine) Predictions(ctx context.Context) ([]domain.Prediction, error) {
	return call(ctx, e, e.book.All)
}

// PredictionStats summarizes the predictions on one trend.
func (e *Engine) PredictionStats(ctx context.Context, trendName string) (domain.PredictionStats, error) {
	return call(ctx, e, func() domain.PredictionStats { return e.book.StatsFor(trendName) })
}

// Submit files a trend nomination and schedules its review.
func (e *Engine) Submit(ctx context.Context, draft domain.SubmissionDraft) (domain.Submission, error) {
	var (
		s         domain.Submission
		submitErr error
	)
	err := e.loop.Do(ctx, func() {
		s, submitErr = e.board.Submit(draft)
		if submitErr == nil {
			e.clock.ScheduleReview(s.ID)
		}
	})
	if err != nil {
		return domain.Submission{}, err
	}
	if submitErr != nil {
		return domain.Submission{}, submitErr
	}
	e.logger.InfoContext(ctx, "engine: submission filed",
		slog.String("submission_id", s.ID),
		slog.String("name", s.Name),
	)
	return s, nil
}

// Submissions returns the submissions in status, newest first. An empty
// status returns all of them.
func (e *Engine) Submissions(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error) {
	return call(ctx, e, func() []domain.Submission { return e.board.ByStatus(status) })
}

// SubmissionStats counts submissions per status.
func (e *Engine) SubmissionStats(ctx context.Context) (domain.SubmissionStats, error) {
	return call(ctx, e, e.board.Stats)
}

// Score evaluates every scoring figure against one consistent state.
func (e *Engine) Score(ctx context.Context) (Score, error) {
	return call(ctx, e, func() Score { return Evaluate(e.scoreInput()) })
}

// TotalPoints returns the user's point total.
func (e *Engine) TotalPoints(ctx context.Context) (int, error) {
	return call(ctx, e, func() int { return TotalPoints(e.scoreInput()) })
}

// AccuracyRate returns the percentage of settled predictions that were
// correct.
func (e *Engine) AccuracyRate(ctx context.Context) (int, error) {
	return call(ctx, e, func() int { return AccuracyRate(e.book.All()) })
}

// PointsBreakdown returns the points per scoring category.
func (e *Engine) PointsBreakdown(ctx context.Context) (map[string]int, error) {
	return call(ctx, e, func() map[string]int { return PointsBreakdown(e.scoreInput()) })
}

// Snapshot copies the whole engine state.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	return call(ctx, e, func() Snapshot {
		in := e.scoreInput()
		return Snapshot{
			TakenAt:     in.Now,
			Balance:     e.ledger.Balance(),
			Trends:      e.catalog.All(),
			Predictions: in.Predictions,
			Submissions: in.Submissions,
			Ledger:      e.ledger.Entries(),
			Score:       Evaluate(in),
			Stats:       e.board.Stats(),
		}
	})
}

func (e *Engine) scoreInput() ScoreInput {
	return ScoreInput{
		Predictions: e.book.All(),
		Submissions: e.board.All(),
		HeatByName:  e.catalog.HeatByName(),
		Now:         e.now(),
	}
}
