package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// HistoryStore implements domain.HistoryStore, keeping the latest version of
// every prediction and submission.
type HistoryStore struct {
	db DB
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db DB) *HistoryStore {
	return &HistoryStore{db: db}
}

var _ domain.HistoryStore = (*HistoryStore)(nil)

// UpsertPrediction inserts p or updates its outcome.
func (s *HistoryStore) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	const query = `
		INSERT INTO predictions (
			id, trend_name, predicted_at, current_zone, target_zone,
			confidence, bet_amount, outcome, payout, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			outcome    = EXCLUDED.outcome,
			payout     = EXCLUDED.payout,
			settled_at = EXCLUDED.settled_at,
			updated_at = NOW()`

	_, err := s.db.Exec(ctx, query,
		p.ID, p.TrendName, p.PredictedAt, string(p.CurrentZone), string(p.TargetZone),
		p.Confidence, p.BetAmount, string(p.Outcome), p.Payout, p.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert prediction %s: %w", p.ID, err)
	}
	return nil
}

// UpsertSubmission inserts sub or updates its review state.
func (s *HistoryStore) UpsertSubmission(ctx context.Context, sub domain.Submission) error {
	const query = `
		INSERT INTO submissions (
			id, name, category, description, inspiration,
			submitted_at, status, support_count, trend_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status        = EXCLUDED.status,
			support_count = EXCLUDED.support_count,
			trend_id      = EXCLUDED.trend_id,
			updated_at    = NOW()`

	_, err := s.db.Exec(ctx, query,
		sub.ID, sub.Name, string(sub.Category), sub.Description, sub.Inspiration,
		sub.SubmittedAt, string(sub.Status), sub.SupportCount, sub.TrendID,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert submission %s: %w", sub.ID, err)
	}
	return nil
}

// ListPredictions returns predictions newest first.
func (s *HistoryStore) ListPredictions(ctx context.Context, opts domain.ListOpts) ([]domain.Prediction, error) {
	q := newListQuery(`
		SELECT id, trend_name, predicted_at, current_zone, target_zone,
		       confidence, bet_amount, outcome, payout, settled_at
		FROM predictions WHERE 1=1`)
	if opts.Since != nil {
		q.where("predicted_at >= $%d", *opts.Since)
	}
	if opts.Until != nil {
		q.where("predicted_at <= $%d", *opts.Until)
	}
	q.page("predicted_at DESC", opts.Limit, opts.Offset)

	rows, err := s.db.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list predictions: %w", err)
	}
	defer rows.Close()

	var out []domain.Prediction
	for rows.Next() {
		var (
			p                     domain.Prediction
			current, target, outc string
			settledAt             *time.Time
		)
		if err := rows.Scan(
			&p.ID, &p.TrendName, &p.PredictedAt, &current, &target,
			&p.Confidence, &p.BetAmount, &outc, &p.Payout, &settledAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan prediction: %w", err)
		}
		p.CurrentZone = domain.Zone(current)
		p.TargetZone = domain.Zone(target)
		p.Outcome = domain.Outcome(outc)
		p.SettledAt = settledAt
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list predictions rows: %w", err)
	}
	return out, nil
}

// ListSubmissions returns submissions in status, newest first. An empty
// status matches all.
func (s *HistoryStore) ListSubmissions(ctx context.Context, status domain.SubmissionStatus, opts domain.ListOpts) ([]domain.Submission, error) {
	q := newListQuery(`
		SELECT id, name, category, description, inspiration,
		       submitted_at, status, support_count, trend_id
		FROM submissions WHERE 1=1`)
	if status != "" {
		q.where("status = $%d", string(status))
	}
	if opts.Since != nil {
		q.where("submitted_at >= $%d", *opts.Since)
	}
	if opts.Until != nil {
		q.where("submitted_at <= $%d", *opts.Until)
	}
	q.page("submitted_at DESC", opts.Limit, opts.Offset)

	rows, err := s.db.Query(ctx, q.String(), q.args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var (
			sub          domain.Submission
			category, st string
		)
		if err := rows.Scan(
			&sub.ID, &sub.Name, &category, &sub.Description, &sub.Inspiration,
			&sub.SubmittedAt, &st, &sub.SupportCount, &sub.TrendID,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan submission: %w", err)
		}
		sub.Category = domain.Category(category)
		sub.Status = domain.SubmissionStatus(st)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list submissions rows: %w", err)
	}
	return out, nil
}
