package domain

import "time"

// Outcome is the tri-state result of a prediction.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// Prediction limits.
const (
	MinBet        = 5
	MinConfidence = 0
	MaxConfidence = 100
)

// Prediction is a coin stake that a trend will move from CurrentZone to
// TargetZone. Outcome moves from pending to a terminal state exactly once.
type Prediction struct {
	ID          string     `json:"id"`
	TrendName   string     `json:"trend_name"`
	PredictedAt time.Time  `json:"predicted_at"`
	CurrentZone Zone       `json:"current_zone"`
	TargetZone  Zone       `json:"target_zone"`
	Confidence  int        `json:"confidence"`
	BetAmount   int        `json:"bet_amount"`
	Outcome     Outcome    `json:"outcome"`
	Payout      int        `json:"payout"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

// Settled reports whether the prediction has reached a terminal outcome.
func (p Prediction) Settled() bool {
	return p.Outcome == OutcomeCorrect || p.Outcome == OutcomeIncorrect
}

// PredictionStats summarizes the predictions made on a single trend.
type PredictionStats struct {
	TrendName string `json:"trend_name"`
	Total     int    `json:"total"`
	Bullish   int    `json:"bullish"` // confidence above 60
}
