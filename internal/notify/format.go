package notify

import (
	"fmt"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Format renders the events worth a chat message: settled predictions,
// reviewed and promoted submissions. ok is false for everything else.
func Format(evt domain.Event) (title, message string, ok bool) {
	switch evt.Type {
	case domain.EventPredictionSettled:
		p := evt.Prediction
		if p == nil {
			return "", "", false
		}
		if p.Outcome == domain.OutcomeCorrect {
			return "Prediction correct",
				fmt.Sprintf("%s: %s → %s, stake %d, payout %d", p.TrendName, p.CurrentZone, p.TargetZone, p.BetAmount, p.Payout),
				true
		}
		return "Prediction missed",
			fmt.Sprintf("%s: %s → %s, stake %d lost", p.TrendName, p.CurrentZone, p.TargetZone, p.BetAmount),
			true

	case domain.EventSubmissionReviewed:
		s := evt.Submission
		if s == nil {
			return "", "", false
		}
		return "Submission " + string(s.Status),
			fmt.Sprintf("%s (%s), support %d", s.Name, s.Category, s.SupportCount),
			true

	case domain.EventSubmissionPromoted:
		s := evt.Submission
		if s == nil {
			return "", "", false
		}
		return "Submission trending",
			fmt.Sprintf("%s is now trending with %d supporters", s.Name, s.SupportCount),
			true
	}
	return "", "", false
}
