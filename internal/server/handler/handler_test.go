package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("prediction_book: %w", domain.ErrInsufficientFunds), http.StatusPaymentRequired},
		{domain.ErrInvalidBet, http.StatusBadRequest},
		{domain.ErrInvalidConfidence, http.StatusBadRequest},
		{domain.ErrInvalidZone, http.StatusBadRequest},
		{domain.ErrInvalidSubmission, http.StatusBadRequest},
		{domain.ErrInvalidProfile, http.StatusBadRequest},
		{domain.ErrTrendNotFound, http.StatusNotFound},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrEngineStopped, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

type failingWallet struct{ err error }

func (w failingWallet) Balance(context.Context) (int, error) { return 0, w.err }

func (w failingWallet) LedgerEntries(context.Context) ([]domain.LedgerEntry, error) {
	return nil, w.err
}

func TestWalletHandler_HidesInternalErrors(t *testing.T) {
	h := NewWalletHandler(failingWallet{err: errors.New("pq: connection refused")}, discardLogger())

	rec := httptest.NewRecorder()
	h.GetBalance(rec, httptest.NewRequest(http.MethodGet, "/api/wallet", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to read balance"}`, rec.Body.String())
}

func TestWalletHandler_EmptyLedgerIsArray(t *testing.T) {
	h := NewWalletHandler(failingWallet{}, discardLogger())

	rec := httptest.NewRecorder()
	h.ListLedger(rec, httptest.NewRequest(http.MethodGet, "/api/wallet/ledger", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

func TestHealthHandler_Degraded(t *testing.T) {
	checks := map[string]Check{
		"redis":    func(context.Context) error { return errors.New("timeout") },
		"postgres": func(context.Context) error { return nil },
	}
	h := NewHealthHandler("full", "postgres", time.Now(), checks, discardLogger())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
	assert.Contains(t, rec.Body.String(), `"postgres":"up"`)
}

type stubReader struct {
	msgs []domain.StreamMessage
	last string
}

func (r *stubReader) StreamRead(_ context.Context, _ string, lastID string, _ int) ([]domain.StreamMessage, error) {
	r.last = lastID
	return r.msgs, nil
}

func TestEventHandler_SkipsInvalidPayloads(t *testing.T) {
	reader := &stubReader{msgs: []domain.StreamMessage{
		{ID: "5-0", Payload: []byte(`{"type":"ledger.debit"}`)},
		{ID: "6-0", Payload: []byte(`garbage`)},
	}}
	h := NewEventHandler(reader, discardLogger())

	rec := httptest.NewRecorder()
	h.ListEvents(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", reader.last)
	assert.JSONEq(t, `{"events":[{"stream_id":"5-0","event":{"type":"ledger.debit"}}],"next":"5-0"}`, rec.Body.String())
}
