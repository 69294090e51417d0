package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
)

// TrendService is the catalog surface the trend endpoints read.
type TrendService interface {
	AllTrends(ctx context.Context) ([]domain.TrendItem, error)
	TrendsAboveHeat(ctx context.Context, threshold int) ([]domain.TrendItem, error)
	PredictableTrends(ctx context.Context) ([]domain.TrendItem, error)
	RadarTrends(ctx context.Context) ([]domain.TrendItem, error)
	UpdateHeat(ctx context.Context, id string, heat int) (domain.TrendItem, error)
}

// StyleSource supplies the style profile used by the personalised radar.
type StyleSource interface {
	StyleProfile(ctx context.Context) (domain.StyleProfile, error)
}

// TrendHandler serves the trend catalog.
type TrendHandler struct {
	trends TrendService
	styles StyleSource
	logger *slog.Logger
}

// NewTrendHandler creates a TrendHandler.
func NewTrendHandler(trends TrendService, styles StyleSource, logger *slog.Logger) *TrendHandler {
	return &TrendHandler{trends: trends, styles: styles, logger: logger}
}

// ListTrends returns every trend, or those with heat above min_heat.
// GET /api/trends?min_heat=60
func (h *TrendHandler) ListTrends(w http.ResponseWriter, r *http.Request) {
	var (
		trends []domain.TrendItem
		err    error
	)
	if r.URL.Query().Has("min_heat") {
		minHeat, qerr := queryInt(r, "min_heat", 0)
		if qerr != nil {
			writeError(w, http.StatusBadRequest, qerr.Error())
			return
		}
		trends, err = h.trends.TrendsAboveHeat(r.Context(), minHeat)
	} else {
		trends, err = h.trends.AllTrends(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list trends")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": orEmpty(trends)})
}

// ListPredictable returns the trends that can still move up a zone.
// GET /api/trends/predictable
func (h *TrendHandler) ListPredictable(w http.ResponseWriter, r *http.Request) {
	trends, err := h.trends.PredictableTrends(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list trends")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": orEmpty(trends)})
}

// ListRadar returns the trends warm enough to show on the radar, optionally
// narrowed to a category and to trends matching the saved style profile.
// GET /api/trends/radar?category=tops&personalized=true
func (h *TrendHandler) ListRadar(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", category))
		return
	}
	personalized, err := queryBool(r, "personalized")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trends, err := h.trends.RadarTrends(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list trends")
		return
	}

	var profile *domain.StyleProfile
	if personalized {
		p, err := h.styles.StyleProfile(r.Context())
		if err != nil {
			writeServiceError(w, r, h.logger, err, "failed to load style profile")
			return
		}
		profile = &p
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trends":       orEmpty(engine.FilterRadar(trends, category, profile)),
		"personalized": profile != nil && profile.Personalized(),
	})
}

type heatRequest struct {
	Heat *int `json:"heat"`
}

// SetHeat overrides the heat of one trend; zone and growth follow.
// PUT /api/trends/{id}/heat
func (h *TrendHandler) SetHeat(w http.ResponseWriter, r *http.Request) {
	var req heatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Heat == nil || *req.Heat < 0 || *req.Heat > domain.MaxHeat {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("heat must be 0-%d", domain.MaxHeat))
		return
	}

	trend, err := h.trends.UpdateHeat(r.Context(), r.PathValue("id"), *req.Heat)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to update heat")
		return
	}
	h.logger.InfoContext(r.Context(), "handler: heat set",
		slog.String("trend", trend.Name),
		slog.Int("heat", trend.HeatScore),
		slog.String("zone", string(trend.Zone)),
	)
	writeJSON(w, http.StatusOK, trend)
}
