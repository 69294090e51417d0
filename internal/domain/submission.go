package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// SubmissionStatus tracks a nomination through review.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
	SubmissionTrending SubmissionStatus = "trending"
)

// ParseSubmissionStatus converts a string into a SubmissionStatus.
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	switch st := SubmissionStatus(s); st {
	case SubmissionPending, SubmissionApproved, SubmissionRejected, SubmissionTrending:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidSubmission, s)
}

// MaxDescriptionLen bounds a submission description, in characters.
const MaxDescriptionLen = 500

// Submission is a user-nominated trend.
type Submission struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     Category         `json:"category"`
	Description  string           `json:"description"`
	Inspiration  string           `json:"inspiration"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	Status       SubmissionStatus `json:"status"`
	SupportCount int              `json:"support_count"`
	TrendID      string           `json:"trend_id,omitempty"` // set on approval
}

// SubmissionDraft is the user input for a new submission.
type SubmissionDraft struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Inspiration string   `json:"inspiration"`
}

// Normalize trims surrounding whitespace from every text field.
func (d SubmissionDraft) Normalize() SubmissionDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Inspiration = strings.TrimSpace(d.Inspiration)
	return d
}

// Validate checks a normalized draft and reports every problem found.
func (d SubmissionDraft) Validate() error {
	var errs []string
	if d.Name == "" {
		errs = append(errs, "name is required")
	}
	if d.Description == "" {
		errs = append(errs, "description is required")
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description exceeds %d characters", MaxDescriptionLen))
	}
	if !d.Category.Valid() {
		errs = append(errs, fmt.Sprintf("unknown category %q", d.Category))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(errs, "; "))
	}
	return nil
}

// SubmissionStats counts submissions per status.
type SubmissionStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Trending int `json:"trending"`
}
