package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// WalletService is the ledger surface the wallet endpoints read.
type WalletService interface {
	Balance(ctx context.Context) (int, error)
	LedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error)
}

// WalletHandler serves the coin balance and ledger.
type WalletHandler struct {
	wallet WalletService
	logger *slog.Logger
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(wallet WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{wallet: wallet, logger: logger}
}

// GetBalance returns the current balance.
// GET /api/wallet
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.wallet.Balance(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to read balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// ListLedger returns the ledger, oldest first.
// GET /api/wallet/ledger
func (h *WalletHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.wallet.LedgerEntries(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to read ledger")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": orEmpty(entries)})
}
