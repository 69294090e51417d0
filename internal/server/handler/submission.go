package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// SubmissionService files and lists trend nominations.
type SubmissionService interface {
	Submit(ctx context.Context, draft domain.SubmissionDraft) (domain.Submission, error)
	Submissions(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error)
	SubmissionStats(ctx context.Context) (domain.SubmissionStats, error)
}

// SubmissionHandler serves the submission endpoints.
type SubmissionHandler struct {
	submissions SubmissionService
	logger      *slog.Logger
}

// NewSubmissionHandler creates a SubmissionHandler.
func NewSubmissionHandler(submissions SubmissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, logger: logger}
}

// ListSubmissions returns submissions, optionally filtered by status, with
// the counts per status.
// GET /api/submissions?status=pending
func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	var status domain.SubmissionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseSubmissionStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	subs, err := h.submissions.Submissions(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to list submissions")
		return
	}
	stats, err := h.submissions.SubmissionStats(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to read submission stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": orEmpty(subs),
		"stats":       stats,
	})
}

// Submit files a new nomination.
// POST /api/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var draft domain.SubmissionDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.submissions.Submit(r.Context(), draft)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "failed to submit trend")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
