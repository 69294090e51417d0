package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// AuditEntry is a single audit log record.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}

// Well-known StateStore keys.
const (
	StateBalance         = "balance"
	StateLastDailyReward = "last_daily_reward"
	StateFirstSeen       = "first_seen"
	StateProfileName     = "profile_name"
	StateProfileBio      = "profile_bio"
	StateStyleProfile    = "style_profile"
)

// StateStore is the small process-local key/value state that survives
// restarts: balance, reward bookkeeping and the profile. Get returns
// ErrNotFound for a missing key.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// HistoryStore keeps the latest version of every prediction and submission.
type HistoryStore interface {
	UpsertPrediction(ctx context.Context, p Prediction) error
	UpsertSubmission(ctx context.Context, s Submission) error
	ListPredictions(ctx context.Context, opts ListOpts) ([]Prediction, error)
	ListSubmissions(ctx context.Context, status SubmissionStatus, opts ListOpts) ([]Submission, error)
}
