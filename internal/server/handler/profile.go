package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
)

// ScoreService evaluates the points total.
type ScoreService interface {
	Score(ctx context.Context) (engine.Score, error)
}

// ProfileService reads and edits the profile.
type ProfileService interface {
	Profile(ctx context.Context) (domain.Profile, error)
	Update(ctx context.Context, name, bio string) (domain.Profile, error)
	StyleProfile(ctx context.Context) (domain.StyleProfile, error)
	UpdateStyle(ctx context.Context, p domain.StyleProfile) (domain.StyleProfile, error)
}

// ProfileHandler serves the score and profile endpoints.
type ProfileHandler struct {
	score   ScoreService
	profile ProfileService
	logger  *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(score ScoreService, profile ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{score: score, profile: profile, logger: logger}
}

// GetScore returns total points, accuracy and the points breakdown.
// GET /api/score
func (h *ProfileHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.score.Score(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to compute score")
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// GetProfile returns the profile with level and achievements.
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profile.Profile(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type updateProfileRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// UpdateProfile replaces the name and bio.
// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.profile.Update(r.Context(), req.Name, req.Bio)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetStyle returns the saved style profile.
// GET /api/profile/style
func (h *ProfileHandler) GetStyle(w http.ResponseWriter, r *http.Request) {
	p, err := h.profile.StyleProfile(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to load style profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateStyle replaces the preferred styles, favourite brands and budget.
// PUT /api/profile/style
func (h *ProfileHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	var req domain.StyleProfile
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.profile.UpdateStyle(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to update style profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
