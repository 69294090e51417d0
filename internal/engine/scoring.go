package engine

import (
	"math"
	"sort"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Breakdown categories returned by PointsBreakdown.
const (
	BreakdownPredictions = "predictions"
	BreakdownPenalties   = "penalties"
	BreakdownStreak      = "streak"
	BreakdownSubmissions = "submissions"
	BreakdownCommunity   = "community"
)

// ScoreInput is an immutable view of everything scoring depends on.
type ScoreInput struct {
	Predictions []domain.Prediction
	Submissions []domain.Submission
	HeatByName  map[string]int
	Now         time.Time
}

// Score is the evaluated point total for a ScoreInput.
type Score struct {
	TotalPoints  int            `json:"total_points"`
	AccuracyRate int            `json:"accuracy_rate"`
	Streak       int            `json:"streak"`
	Correct      int            `json:"correct"`
	Settled      int            `json:"settled"`
	Breakdown    map[string]int `json:"breakdown"`
}

// Evaluate computes the full score in one pass over the input.
func Evaluate(in ScoreInput) Score {
	correct, settled := 0, 0
	for _, p := range in.Predictions {
		if p.Settled() {
			settled++
		}
		if p.Outcome == domain.OutcomeCorrect {
			correct++
		}
	}
	return Score{
		TotalPoints:  TotalPoints(in),
		AccuracyRate: AccuracyRate(in.Predictions),
		Streak:       CurrentStreak(in.Predictions),
		Correct:      correct,
		Settled:      settled,
		Breakdown:    PointsBreakdown(in),
	}
}

// TotalPoints folds correct contributions, then penalties (never dropping the
// running total below zero), then adds the streak, submission and community
// bonuses.
func TotalPoints(in ScoreInput) int {
	total := 0
	for _, p := range in.Predictions {
		if p.Outcome == domain.OutcomeCorrect {
			total += predictionPoints(p, in)
		}
	}
	for _, p := range in.Predictions {
		if p.Outcome == domain.OutcomeIncorrect {
			total = max(0, total-Penalty(p.Confidence))
		}
	}
	total += StreakBonus(CurrentStreak(in.Predictions))
	total += SubmissionPoints(in.Submissions)
	total += CommunityPoints(in.Submissions, len(in.Predictions))
	return max(0, total)
}

// PointsBreakdown maps each scoring category to its contribution. Penalties
// are reported unfloored, as a negative number.
func PointsBreakdown(in ScoreInput) map[string]int {
	gained, lost := 0, 0
	for _, p := range in.Predictions {
		switch p.Outcome {
		case domain.OutcomeCorrect:
			gained += predictionPoints(p, in)
		case domain.OutcomeIncorrect:
			lost += Penalty(p.Confidence)
		}
	}
	return map[string]int{
		BreakdownPredictions: gained,
		BreakdownPenalties:   -lost,
		BreakdownStreak:      StreakBonus(CurrentStreak(in.Predictions)),
		BreakdownSubmissions: SubmissionPoints(in.Submissions),
		BreakdownCommunity:   CommunityPoints(in.Submissions, len(in.Predictions)),
	}
}

// AccuracyRate is the rounded percentage of settled predictions that were
// correct, 0 when nothing has settled.
func AccuracyRate(predictions []domain.Prediction) int {
	correct, settled := 0, 0
	for _, p := range predictions {
		if !p.Settled() {
			continue
		}
		settled++
		if p.Outcome == domain.OutcomeCorrect {
			correct++
		}
	}
	if settled == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(settled)))
}

func predictionPoints(p domain.Prediction, in ScoreInput) int {
	heat, ok := in.HeatByName[p.TrendName]
	return BasePoints(p.CurrentZone, p.TargetZone) +
		TimeBonus(p.PredictedAt, in.Now) +
		ConfidenceBonus(p.Confidence) +
		DifficultyBonus(heat, ok)
}

// BasePoints rewards larger zone jumps.
func BasePoints(from, to domain.Zone) int {
	switch {
	case from == domain.ZoneNiche && to == domain.ZoneTrending:
		return 50
	case from == domain.ZoneNiche && to == domain.ZoneMainstream:
		return 100
	case from == domain.ZoneTrending && to == domain.ZoneMainstream:
		return 30
	default:
		return 20
	}
}

// TimeBonus depends on the whole days elapsed since the prediction was made.
func TimeBonus(predictedAt, now time.Time) int {
	days := int(now.Sub(predictedAt) / (24 * time.Hour))
	switch {
	case days >= 0 && days <= 2:
		return 20
	case days >= 3 && days <= 7:
		return 15
	case days >= 8 && days <= 14:
		return 10
	default:
		return 5
	}
}

// ConfidenceBonus rewards confident correct calls.
func ConfidenceBonus(confidence int) int {
	switch {
	case confidence >= 90:
		return 25
	case confidence >= 80:
		return 15
	case confidence >= 70:
		return 10
	case confidence >= 60:
		return 5
	default:
		return 0
	}
}

// DifficultyBonus rewards calls on cold trends. found is false when the trend
// is no longer in the catalog.
func DifficultyBonus(heat int, found bool) int {
	if !found {
		return 0
	}
	switch {
	case heat >= 30 && heat <= 40:
		return 30
	case heat >= 41 && heat <= 50:
		return 20
	case heat >= 51 && heat <= 60:
		return 10
	default:
		return 0
	}
}

// Penalty is the point deduction for an incorrect prediction.
func Penalty(confidence int) int {
	switch {
	case confidence >= 90:
		return 20
	case confidence >= 80:
		return 15
	case confidence >= 70:
		return 10
	case confidence >= 60:
		return 5
	default:
		return 2
	}
}

// CurrentStreak counts the correct predictions at the head of the settled
// history ordered newest first. Pending predictions are skipped.
func CurrentStreak(predictions []domain.Prediction) int {
	settled := make([]domain.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Settled() {
			settled = append(settled, p)
		}
	}
	sort.SliceStable(settled, func(i, j int) bool {
		return settled[i].PredictedAt.After(settled[j].PredictedAt)
	})

	streak := 0
	for _, p := range settled {
		if p.Outcome != domain.OutcomeCorrect {
			break
		}
		streak++
	}
	return streak
}

// StreakBonus maps a streak length to bonus points.
func StreakBonus(streak int) int {
	switch {
	case streak >= 16:
		return 200
	case streak >= 10:
		return 100
	case streak >= 6:
		return 50
	case streak >= 3:
		return 20
	default:
		return 0
	}
}

// SubmissionPoints rewards accepted nominations and category variety.
func SubmissionPoints(submissions []domain.Submission) int {
	points := 0
	categories := make(map[domain.Category]struct{})
	for _, s := range submissions {
		switch s.Status {
		case domain.SubmissionApproved:
			points += 50
			categories[s.Category] = struct{}{}
		case domain.SubmissionTrending:
			points += 200
		}
	}
	if len(submissions) > 0 {
		points += 30
	}
	return points + 10*len(categories)
}

// CommunityPoints rewards support on approved nominations and overall
// activity, each capped.
func CommunityPoints(submissions []domain.Submission, predictionCount int) int {
	support := 0
	for _, s := range submissions {
		if s.Status == domain.SubmissionApproved {
			support += s.SupportCount
		}
	}
	activity := len(submissions) + predictionCount
	return min(support*2, 100) + min(activity*3, 150)
}
