package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

func TestStateStore(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	_, err := s.Get(ctx, domain.StateBalance)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, domain.StateBalance, "150"))
	got, err := s.Get(ctx, domain.StateBalance)
	require.NoError(t, err)
	assert.Equal(t, "150", got)
}

func TestAuditStore_ListNewestFirstAndEvicts(t *testing.T) {
	ctx := context.Background()
	s := NewAuditStore(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Log(ctx, fmt.Sprintf("e%d", i), map[string]any{"n": i}))
	}

	all, err := s.List(ctx, domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "e5", all[0].Event)
	assert.Equal(t, "e3", all[2].Event)
	assert.Equal(t, int64(5), all[0].ID)

	page, err := s.List(ctx, domain.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "e4", page[0].Event)

	since := base.Add(5 * time.Minute)
	recent, err := s.List(ctx, domain.ListOpts{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "e5", recent[0].Event)

	none, err := s.List(ctx, domain.ListOpts{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertPrediction(ctx, domain.Prediction{ID: "a", PredictedAt: base, Outcome: domain.OutcomePending}))
	require.NoError(t, s.UpsertPrediction(ctx, domain.Prediction{ID: "b", PredictedAt: base.Add(time.Hour)}))
	require.NoError(t, s.UpsertPrediction(ctx, domain.Prediction{ID: "a", PredictedAt: base, Outcome: domain.OutcomeCorrect}))

	preds, err := s.ListPredictions(ctx, domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "b", preds[0].ID)
	assert.Equal(t, domain.OutcomeCorrect, preds[1].Outcome)

	require.NoError(t, s.UpsertSubmission(ctx, domain.Submission{ID: "s1", Status: domain.SubmissionPending, SubmittedAt: base}))
	require.NoError(t, s.UpsertSubmission(ctx, domain.Submission{ID: "s2", Status: domain.SubmissionApproved, SubmittedAt: base.Add(time.Hour)}))

	approved, err := s.ListSubmissions(ctx, domain.SubmissionApproved, domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "s2", approved[0].ID)

	all, err := s.ListSubmissions(ctx, "", domain.ListOpts{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
