package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

type fakeSender struct {
	name   string
	err    error
	titles []string
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	f.titles = append(f.titles, title)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func settledEvent(outcome domain.Outcome) domain.Event {
	return domain.Event{
		Type: domain.EventPredictionSettled,
		Prediction: &domain.Prediction{
			TrendName:   "渔夫帽",
			CurrentZone: domain.ZoneNiche,
			TargetZone:  domain.ZoneTrending,
			BetAmount:   20,
			Outcome:     outcome,
			Payout:      60,
		},
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		evt       domain.Event
		wantOK    bool
		wantTitle string
	}{
		{name: "correct", evt: settledEvent(domain.OutcomeCorrect), wantOK: true, wantTitle: "Prediction correct"},
		{name: "incorrect", evt: settledEvent(domain.OutcomeIncorrect), wantOK: true, wantTitle: "Prediction missed"},
		{
			name: "promoted",
			evt: domain.Event{Type: domain.EventSubmissionPromoted, Submission: &domain.Submission{
				Name: "荧光腰带", SupportCount: 40,
			}},
			wantOK:    true,
			wantTitle: "Submission trending",
		},
		{
			name: "reviewed",
			evt: domain.Event{Type: domain.EventSubmissionReviewed, Submission: &domain.Submission{
				Name: "荧光腰带", Status: domain.SubmissionRejected,
			}},
			wantOK:    true,
			wantTitle: "Submission rejected",
		},
		{name: "ledger is quiet", evt: domain.Event{Type: domain.EventLedgerCredit, Ledger: &domain.LedgerEntry{}}},
		{name: "missing payload", evt: domain.Event{Type: domain.EventPredictionSettled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, msg, ok := Format(tt.evt)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTitle, title)
			if ok {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestNotifier_Filter(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, []string{" submission.promoted "}, quietLogger())

	require.NoError(t, n.NotifyEvent(context.Background(), settledEvent(domain.OutcomeCorrect)))
	assert.Empty(t, sender.titles)

	require.NoError(t, n.NotifyEvent(context.Background(), domain.Event{
		Type:       domain.EventSubmissionPromoted,
		Submission: &domain.Submission{Name: "x"},
	}))
	assert.Equal(t, []string{"Submission trending"}, sender.titles)
}

func TestNotifier_EmptyFilterAllowsAll(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{sender}, nil, quietLogger())

	require.NoError(t, n.NotifyEvent(context.Background(), settledEvent(domain.OutcomeIncorrect)))
	assert.Len(t, sender.titles, 1)
	assert.True(t, n.Enabled())
	assert.False(t, NewNotifier(nil, nil, quietLogger()).Enabled())
}

func TestNotifier_SenderFailureDoesNotStopOthers(t *testing.T) {
	bad := &fakeSender{name: "bad", err: errors.New("boom")}
	good := &fakeSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, quietLogger())

	boom := bad.err
	err := n.NotifyEvent(context.Background(), settledEvent(domain.OutcomeCorrect))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Equal(t, []string{"Prediction correct"}, good.titles)
}

func TestTelegramSender_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("token", "42").WithBaseURL(srv.URL + "/")
	require.NoError(t, s.Send(context.Background(), "Hi", "there"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "*Hi*\nthere", got["text"])
}

func TestDiscordSender_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewDiscordSender(srv.URL).Send(context.Background(), "Hi", "there")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord: unexpected status 400")
}
