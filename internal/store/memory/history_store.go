package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// HistoryStore implements domain.HistoryStore in memory.
type HistoryStore struct {
	mu          sync.RWMutex
	predictions map[string]domain.Prediction
	submissions map[string]domain.Submission
}

// NewHistoryStore creates an empty HistoryStore.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		predictions: make(map[string]domain.Prediction),
		submissions: make(map[string]domain.Submission),
	}
}

var _ domain.HistoryStore = (*HistoryStore)(nil)

// UpsertPrediction stores the latest version of p.
func (s *HistoryStore) UpsertPrediction(_ context.Context, p domain.Prediction) error {
	s.mu.Lock()
	s.predictions[p.ID] = p
	s.mu.Unlock()
	return nil
}

// UpsertSubmission stores the latest version of sub.
func (s *HistoryStore) UpsertSubmission(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	s.submissions[sub.ID] = sub
	s.mu.Unlock()
	return nil
}

// ListPredictions returns predictions newest first.
func (s *HistoryStore) ListPredictions(_ context.Context, opts domain.ListOpts) ([]domain.Prediction, error) {
	s.mu.RLock()
	out := make([]domain.Prediction, 0, len(s.predictions))
	for _, p := range s.predictions {
		if opts.Since != nil && p.PredictedAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && p.PredictedAt.After(*opts.Until) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].PredictedAt.After(out[j].PredictedAt) })
	return paginate(out, opts), nil
}

// ListSubmissions returns submissions in status, newest first. An empty
// status matches all.
func (s *HistoryStore) ListSubmissions(_ context.Context, status domain.SubmissionStatus, opts domain.ListOpts) ([]domain.Submission, error) {
	s.mu.RLock()
	out := make([]domain.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if status != "" && sub.Status != status {
			continue
		}
		if opts.Since != nil && sub.SubmittedAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && sub.SubmittedAt.After(*opts.Until) {
			continue
		}
		out = append(out, sub)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return paginate(out, opts), nil
}
