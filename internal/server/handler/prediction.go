package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
)

// PredictionService opens and lists predictions.
type PredictionService interface {
	OpenPrediction(ctx context.Context, req engine.PredictionRequest) (domain.Prediction, error)
	Predictions(ctx context.Context) ([]domain.Prediction, error)
	PredictionStats(ctx context.Context, trendName string) (domain.PredictionStats, error)
}

// PredictionHandler serves the prediction endpoints.
type PredictionHandler struct {
	predictions PredictionService
	logger      *slog.Logger
}

// NewPredictionHandler creates a PredictionHandler.
func NewPredictionHandler(predictions PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, logger: logger}
}

// ListPredictions returns every prediction newest first. With ?trend= it
// also includes the stats for that trend.
// GET /api/predictions
func (h *PredictionHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	preds, err := h.predictions.Predictions(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list predictions")
		return
	}
	resp := map[string]any{"predictions": orEmpty(preds)}

	if trend := r.URL.Query().Get("trend"); trend != "" {
		stats, err := h.predictions.PredictionStats(r.Context(), trend)
		if err != nil {
			writeServiceError(w, r, h.logger, err, "failed to read prediction stats")
			return
		}
		resp["stats"] = stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// OpenPrediction stakes coins on a trend.
// POST /api/predictions
func (h *PredictionHandler) OpenPrediction(w http.ResponseWriter, r *http.Request) {
	var req engine.PredictionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.predictions.OpenPrediction(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to open prediction")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
