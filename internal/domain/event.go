package domain

import "time"

// EventType names an engine state transition.
type EventType string

const (
	EventLedgerCredit       EventType = "ledger.credit"
	EventLedgerDebit        EventType = "ledger.debit"
	EventTrendHeat          EventType = "trend.heat"
	EventTrendAdded         EventType = "trend.added"
	EventPredictionOpened   EventType = "prediction.opened"
	EventPredictionSettled  EventType = "prediction.settled"
	EventSubmissionCreated  EventType = "submission.created"
	EventSubmissionReviewed EventType = "submission.reviewed"
	EventSubmissionPromoted EventType = "submission.promoted"
)

// Event is emitted by the engine after a committed transition. Exactly one of
// the payload pointers is set, matching Type.
type Event struct {
	ID         string       `json:"id"`
	Type       EventType    `json:"type"`
	At         time.Time    `json:"at"`
	Ledger     *LedgerEntry `json:"ledger,omitempty"`
	Trend      *TrendItem   `json:"trend,omitempty"`
	Prediction *Prediction  `json:"prediction,omitempty"`
	Submission *Submission  `json:"submission,omitempty"`
}

// EventSink receives engine events. Implementations must not block for long
// and must not call back into the engine.
type EventSink interface {
	Emit(evt Event)
}
