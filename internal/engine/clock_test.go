package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

type clockFixture struct {
	clock   *Clock
	sched   *manualScheduler
	rng     *scriptedRand
	catalog *Catalog
	book    *PredictionBook
	board   *SubmissionBoard
}

func newClockFixture(trends ...domain.TrendItem) clockFixture {
	rng := &scriptedRand{}
	sched := &manualScheduler{}
	ledger := NewLedger(100, nil, fixedNow)
	catalog := NewCatalog(trends, nil, fixedNow)
	book := NewPredictionBook(ledger, catalog, rng, nil, fixedNow)
	board := NewSubmissionBoard(catalog, rng, nil, fixedNow)

	cfg := DefaultClockConfig()
	cfg.HeatSample = 2
	return clockFixture{
		clock:   NewClock(cfg, sched, rng, catalog, book, board, discardLogger()),
		sched:   sched,
		rng:     rng,
		catalog: catalog,
		book:    book,
		board:   board,
	}
}

func TestClock_HeatTick(t *testing.T) {
	f := newClockFixture(trendAt("a", 50), trendAt("b", 50), trendAt("c", 22))

	// pick c (+8), then b (-5)
	f.rng.pushInts(2, 13, 0, 0)
	f.clock.HeatTick()

	all := f.catalog.All()
	assert.Equal(t, 50, all[0].HeatScore)
	assert.Equal(t, 45, all[1].HeatScore)
	assert.Equal(t, 30, all[2].HeatScore)
}

func TestClock_HeatTickClampsToFloor(t *testing.T) {
	f := newClockFixture(trendAt("a", 22))

	f.rng.pushInts(0, 0) // delta -5
	f.clock.HeatTick()
	assert.Equal(t, 20, f.catalog.All()[0].HeatScore)
}

func TestClock_HeatTickEmptyCatalog(t *testing.T) {
	f := newClockFixture()
	assert.NotPanics(t, f.clock.HeatTick)
}

func TestClock_CommunityTick(t *testing.T) {
	f := newClockFixture()

	f.rng.pushFloats(0.1, 0.5) // submit, review after 20s
	f.rng.pushInts(1, 2, 3, 2) // name, category, inspiration, support 3
	f.clock.CommunityTick()

	pending := f.board.Pending()
	require.Len(t, pending, 1)
	s := pending[0]
	assert.Equal(t, "厚底凉鞋", s.Name)
	assert.Equal(t, domain.Categories[2], s.Category)
	assert.Equal(t, "街拍", s.Inspiration)
	assert.Equal(t, 3, s.SupportCount)

	assert.Equal(t, []time.Duration{20 * time.Second}, f.sched.live())
	assert.Equal(t, 1, f.clock.Outstanding())
}

func TestClock_CommunityTickSkipped(t *testing.T) {
	f := newClockFixture()
	f.rng.pushFloats(0.25)
	f.clock.CommunityTick()

	assert.Empty(t, f.board.All())
	assert.Empty(t, f.sched.live())
}

func TestClock_ScheduleSettlement(t *testing.T) {
	f := newClockFixture(trendAt("渔夫帽", 40))
	p, err := f.book.Open(PredictionRequest{TrendName: "渔夫帽", TargetZone: domain.ZoneTrending, Confidence: 70, BetAmount: 20})
	require.NoError(t, err)

	f.clock.ScheduleSettlement(p.ID)
	f.clock.ScheduleSettlement(p.ID)
	assert.Equal(t, []time.Duration{2 * time.Second}, f.sched.live(), "scheduled once")

	assert.Equal(t, 1, f.sched.fireAll())
	got, ok := f.book.Get(p.ID)
	require.True(t, ok)
	assert.True(t, got.Settled())
	assert.Equal(t, 0, f.clock.Outstanding())
}

func TestClock_ReviewChainsPromotion(t *testing.T) {
	f := newClockFixture()
	s, err := f.board.Submit(validDraft())
	require.NoError(t, err)

	// An exhausted rand draws zero: shortest delays, approval, promotion.
	f.clock.ScheduleReview(s.ID)
	assert.Equal(t, []time.Duration{10 * time.Second}, f.sched.live())

	require.Equal(t, 1, f.sched.fireOnce())
	got, _ := f.board.Get(s.ID)
	assert.Equal(t, domain.SubmissionApproved, got.Status)
	assert.Equal(t, []time.Duration{30 * time.Second}, f.sched.live())

	require.Equal(t, 1, f.sched.fireOnce())
	got, _ = f.board.Get(s.ID)
	assert.Equal(t, domain.SubmissionTrending, got.Status)
	assert.Equal(t, 0, f.clock.Outstanding())
}

func TestClock_RejectedReviewSchedulesNothing(t *testing.T) {
	f := newClockFixture()
	s, err := f.board.Submit(validDraft())
	require.NoError(t, err)

	f.rng.pushFloats(0, 0.7) // delay, reject
	f.clock.ScheduleReview(s.ID)
	f.sched.fireAll()

	got, _ := f.board.Get(s.ID)
	assert.Equal(t, domain.SubmissionRejected, got.Status)
	assert.Empty(t, f.sched.live())
}

func TestClock_CancelAndStop(t *testing.T) {
	f := newClockFixture(trendAt("渔夫帽", 40))
	p, err := f.book.Open(PredictionRequest{TrendName: "渔夫帽", TargetZone: domain.ZoneTrending, Confidence: 70, BetAmount: 20})
	require.NoError(t, err)
	s, err := f.board.Submit(validDraft())
	require.NoError(t, err)

	f.clock.ScheduleSettlement(p.ID)
	f.clock.ScheduleReview(s.ID)
	require.Equal(t, 2, f.clock.Outstanding())

	f.clock.Cancel(p.ID)
	assert.Equal(t, 1, f.clock.Outstanding())

	f.clock.Stop()
	assert.Equal(t, 0, f.clock.Outstanding())
	assert.Equal(t, 0, f.sched.fireAll())

	got, _ := f.book.Get(p.ID)
	assert.False(t, got.Settled())
}

func TestClock_CallbackForMissingEntity(t *testing.T) {
	f := newClockFixture()
	f.clock.ScheduleSettlement("gone")
	f.clock.ScheduleReview("gone")
	assert.Equal(t, 2, f.sched.fireAll())
	assert.Equal(t, 0, f.clock.Outstanding())
}

func TestClockConfig_WithDefaults(t *testing.T) {
	got := ClockConfig{HeatSample: 5, ReviewDelayMin: time.Minute, ReviewDelayMax: time.Second}.withDefaults()
	d := DefaultClockConfig()

	assert.Equal(t, 5, got.HeatSample)
	assert.Equal(t, d.HeatInterval, got.HeatInterval)
	assert.Equal(t, d.ReviewDelayMin, got.ReviewDelayMin, "inverted range falls back")
	assert.Equal(t, d.ReviewDelayMax, got.ReviewDelayMax)
	assert.Equal(t, d.HeatFloor, got.HeatFloor)
	assert.Equal(t, d.HeatCeiling, got.HeatCeiling)
}
