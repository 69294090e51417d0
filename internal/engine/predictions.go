package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// streakPayoutMin is the streak length from which a correct settlement earns
// an extra streak*2 coins.
const streakPayoutMin = 3

// PredictionRequest is the user input for a new prediction.
type PredictionRequest struct {
	TrendName  string      `json:"trend_name"`
	TargetZone domain.Zone `json:"target_zone"`
	Confidence int         `json:"confidence"`
	BetAmount  int         `json:"bet_amount"`
}

// Validate checks the ranges that do not depend on engine state.
func (r PredictionRequest) Validate() error {
	if r.Confidence < domain.MinConfidence || r.Confidence > domain.MaxConfidence {
		return fmt.Errorf("confidence %d: %w", r.Confidence, domain.ErrInvalidConfidence)
	}
	if r.BetAmount < domain.MinBet {
		return fmt.Errorf("bet %d below minimum %d: %w", r.BetAmount, domain.MinBet, domain.ErrInvalidBet)
	}
	if !r.TargetZone.Valid() {
		return fmt.Errorf("target zone %q: %w", r.TargetZone, domain.ErrInvalidZone)
	}
	return nil
}

// PredictionBook owns every prediction. Stakes are debited at Open and
// payouts credited at Settle.
type PredictionBook struct {
	ledger  *Ledger
	catalog *Catalog
	rng     domain.Rand
	events  emitter
	minBet  int

	order []string // ids, oldest first
	byID  map[string]*domain.Prediction
}

// NewPredictionBook creates an empty book. sink may be nil.
func NewPredictionBook(ledger *Ledger, catalog *Catalog, rng domain.Rand, sink domain.EventSink, now func() time.Time) *PredictionBook {
	return &PredictionBook{
		ledger:  ledger,
		catalog: catalog,
		rng:     rng,
		events:  newEmitter(sink, now),
		minBet:  domain.MinBet,
		byID:    make(map[string]*domain.Prediction),
	}
}

// SetMinBet raises the smallest accepted stake. Values below domain.MinBet
// are ignored.
func (b *PredictionBook) SetMinBet(n int) {
	b.minBet = max(n, domain.MinBet)
}

// Restore loads historical predictions without touching the ledger. The
// input is ordered oldest first.
func (b *PredictionBook) Restore(predictions []domain.Prediction) {
	for _, p := range predictions {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.Outcome == "" {
			p.Outcome = domain.OutcomePending
		}
		b.put(p)
	}
}

// Open validates the request, debits the stake and records a pending
// prediction. No state changes when an error is returned.
func (b *PredictionBook) Open(req PredictionRequest) (domain.Prediction, error) {
	if err := req.Validate(); err != nil {
		return domain.Prediction{}, fmt.Errorf("prediction_book: open: %w", err)
	}
	if req.BetAmount < b.minBet {
		return domain.Prediction{}, fmt.Errorf("prediction_book: bet %d below minimum %d: %w",
			req.BetAmount, b.minBet, domain.ErrInvalidBet)
	}
	trend, ok := b.catalog.ByName(req.TrendName)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("prediction_book: open %q: %w", req.TrendName, domain.ErrTrendNotFound)
	}
	if balance := b.ledger.Balance(); req.BetAmount > balance {
		return domain.Prediction{}, fmt.Errorf("prediction_book: bet %d exceeds balance %d: %w",
			req.BetAmount, balance, domain.ErrInsufficientFunds)
	}
	if !b.ledger.Debit(req.BetAmount, fmt.Sprintf("stake on %s", trend.Name)) {
		return domain.Prediction{}, fmt.Errorf("prediction_book: debit %d: %w", req.BetAmount, domain.ErrInsufficientFunds)
	}

	p := domain.Prediction{
		ID:          uuid.New().String(),
		TrendName:   trend.Name,
		PredictedAt: b.events.clock(),
		CurrentZone: trend.Zone,
		TargetZone:  req.TargetZone,
		Confidence:  req.Confidence,
		BetAmount:   req.BetAmount,
		Outcome:     domain.OutcomePending,
	}
	b.put(p)
	b.events.prediction(domain.EventPredictionOpened, p)
	return p, nil
}

// Settle resolves a pending prediction with a random draw weighted by its
// confidence. It reports false, changing nothing, when the prediction is
// unknown or already settled.
func (b *PredictionBook) Settle(id string) (domain.Prediction, bool) {
	p, ok := b.byID[id]
	if !ok || p.Settled() {
		return domain.Prediction{}, false
	}

	now := b.events.clock()
	p.SettledAt = &now
	if b.rng.Float64() >= SuccessProbability(p.Confidence) {
		p.Outcome = domain.OutcomeIncorrect
		b.events.prediction(domain.EventPredictionSettled, *p)
		return *p, true
	}

	p.Outcome = domain.OutcomeCorrect
	reward := p.BetAmount * RewardMultiplier(p.CurrentZone, p.TargetZone, p.Confidence)
	b.ledger.Credit(reward, fmt.Sprintf("correct prediction on %s", p.TrendName))
	p.Payout = reward

	if streak := CurrentStreak(b.All()); streak >= streakPayoutMin {
		bonus := streak * 2
		b.ledger.Credit(bonus, fmt.Sprintf("%d prediction streak", streak))
		p.Payout += bonus
	}

	b.events.prediction(domain.EventPredictionSettled, *p)
	return *p, true
}

// Get returns a prediction by id.
func (b *PredictionBook) Get(id string) (domain.Prediction, bool) {
	p, ok := b.byID[id]
	if !ok {
		return domain.Prediction{}, false
	}
	return *p, true
}

// All returns every prediction, newest first.
func (b *PredictionBook) All() []domain.Prediction {
	out := make([]domain.Prediction, 0, len(b.order))
	for i := len(b.order) - 1; i >= 0; i-- {
		out = append(out, *b.byID[b.order[i]])
	}
	return out
}

// Pending returns the ids of unsettled predictions, oldest first.
func (b *PredictionBook) Pending() []string {
	var ids []string
	for _, id := range b.order {
		if !b.byID[id].Settled() {
			ids = append(ids, id)
		}
	}
	return ids
}

// StatsFor counts the predictions made on a trend and how many were bullish.
func (b *PredictionBook) StatsFor(trendName string) domain.PredictionStats {
	stats := domain.PredictionStats{TrendName: trendName}
	for _, id := range b.order {
		p := b.byID[id]
		if p.TrendName != trendName {
			continue
		}
		stats.Total++
		if p.Confidence > 60 {
			stats.Bullish++
		}
	}
	return stats
}

func (b *PredictionBook) put(p domain.Prediction) {
	if _, exists := b.byID[p.ID]; !exists {
		b.order = append(b.order, p.ID)
	}
	b.byID[p.ID] = &p
}

// SuccessProbability maps confidence 0..100 onto a 0.2..0.9 chance of a
// correct outcome.
func SuccessProbability(confidence int) float64 {
	return float64(confidence)/100*0.7 + 0.2
}

// RewardMultiplier scales the stake paid back on a correct prediction.
func RewardMultiplier(from, to domain.Zone, confidence int) int {
	m := 2
	switch {
	case from == domain.ZoneNiche && to == domain.ZoneMainstream:
		m = 5
	case from == domain.ZoneNiche && to == domain.ZoneTrending:
		m = 3
	}
	switch {
	case confidence >= 90:
		m += 2
	case confidence >= 80:
		m++
	}
	return m
}
