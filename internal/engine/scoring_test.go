package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

func settledAt(name string, outcome domain.Outcome, confidence int, age time.Duration) domain.Prediction {
	return domain.Prediction{
		TrendName:   name,
		PredictedAt: testEpoch.Add(-age),
		CurrentZone: domain.ZoneNiche,
		TargetZone:  domain.ZoneTrending,
		Confidence:  confidence,
		BetAmount:   10,
		Outcome:     outcome,
	}
}

func TestCurrentStreak(t *testing.T) {
	c, i := domain.OutcomeCorrect, domain.OutcomeIncorrect

	tests := []struct {
		name  string
		preds []domain.Prediction
		want  int
	}{
		{name: "empty", want: 0},
		{
			name: "correct correct incorrect correct",
			preds: []domain.Prediction{
				settledAt("a", c, 50, 1*time.Hour),
				settledAt("b", c, 50, 2*time.Hour),
				settledAt("c", i, 50, 3*time.Hour),
				settledAt("d", c, 50, 4*time.Hour),
			},
			want: 2,
		},
		{
			name: "order of input does not matter",
			preds: []domain.Prediction{
				settledAt("d", c, 50, 4*time.Hour),
				settledAt("c", i, 50, 3*time.Hour),
				settledAt("b", c, 50, 2*time.Hour),
				settledAt("a", c, 50, 1*time.Hour),
			},
			want: 2,
		},
		{
			name: "pending are skipped",
			preds: []domain.Prediction{
				settledAt("p", domain.OutcomePending, 50, 0),
				settledAt("a", c, 50, 1*time.Hour),
				settledAt("b", i, 50, 2*time.Hour),
			},
			want: 1,
		},
		{
			name: "newest incorrect",
			preds: []domain.Prediction{
				settledAt("a", i, 50, 1*time.Hour),
				settledAt("b", c, 50, 2*time.Hour),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.preds))
		})
	}
}

func TestTotalPoints_PenaltyFloorsAtZero(t *testing.T) {
	in := ScoreInput{
		Predictions: []domain.Prediction{settledAt("a", domain.OutcomeIncorrect, 95, time.Hour)},
		Now:         testEpoch,
	}

	// Only the community activity bonus for one prediction survives.
	assert.Equal(t, 3, TotalPoints(in))
	assert.Equal(t, -20, PointsBreakdown(in)[BreakdownPenalties])
}

func TestTotalPoints_PenaltiesApplyAfterCorrect(t *testing.T) {
	in := ScoreInput{
		Predictions: []domain.Prediction{
			// Listed first so an interleaved fold would floor it away.
			settledAt("b", domain.OutcomeIncorrect, 90, 2*time.Hour),
			settledAt("a", domain.OutcomeCorrect, 50, 1*time.Hour),
		},
		HeatByName: map[string]int{"a": 45},
		Now:        testEpoch,
	}

	// 50 base + 20 time + 0 confidence + 20 difficulty - 20 penalty + 6 activity.
	assert.Equal(t, 76, TotalPoints(in))
	assert.Equal(t, map[string]int{
		BreakdownPredictions: 90,
		BreakdownPenalties:   -20,
		BreakdownStreak:      0,
		BreakdownSubmissions: 0,
		BreakdownCommunity:   6,
	}, PointsBreakdown(in))
}

func TestSubmissionAndCommunityPoints(t *testing.T) {
	subs := []domain.Submission{
		{Category: domain.CategoryTops, Status: domain.SubmissionApproved, SupportCount: 10},
		{Category: domain.CategoryShoes, Status: domain.SubmissionApproved, SupportCount: 5},
		{Category: domain.CategoryShoes, Status: domain.SubmissionTrending, SupportCount: 40},
		{Category: domain.CategoryStyle, Status: domain.SubmissionRejected, SupportCount: 2},
	}

	assert.Equal(t, 50+50+200+30+20, SubmissionPoints(subs))
	assert.Equal(t, 30+12, CommunityPoints(subs, 0))
	assert.Equal(t, 0, SubmissionPoints(nil))
}

func TestCommunityPoints_Caps(t *testing.T) {
	subs := []domain.Submission{{Status: domain.SubmissionApproved, SupportCount: 80}}
	assert.Equal(t, 100+150, CommunityPoints(subs, 60))
}

func TestTimeBonus(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		age  time.Duration
		want int
	}{
		{0, 20},
		{2*day + 23*time.Hour, 20},
		{3 * day, 15},
		{7 * day, 15},
		{8 * day, 10},
		{14 * day, 10},
		{15 * day, 5},
		{-3 * day, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeBonus(testEpoch.Add(-tt.age), testEpoch), "age %s", tt.age)
	}
}

func TestBonusTables(t *testing.T) {
	assert.Equal(t, 100, BasePoints(domain.ZoneNiche, domain.ZoneMainstream))
	assert.Equal(t, 50, BasePoints(domain.ZoneNiche, domain.ZoneTrending))
	assert.Equal(t, 30, BasePoints(domain.ZoneTrending, domain.ZoneMainstream))
	assert.Equal(t, 20, BasePoints(domain.ZoneMainstream, domain.ZoneNiche))

	for conf, want := range map[int]int{95: 25, 85: 15, 75: 10, 65: 5, 10: 0} {
		assert.Equal(t, want, ConfidenceBonus(conf), "confidence %d", conf)
	}
	for conf, want := range map[int]int{90: 20, 80: 15, 70: 10, 60: 5, 59: 2} {
		assert.Equal(t, want, Penalty(conf), "confidence %d", conf)
	}
	for heat, want := range map[int]int{29: 0, 30: 30, 40: 30, 41: 20, 50: 20, 51: 10, 60: 10, 61: 0} {
		assert.Equal(t, want, DifficultyBonus(heat, true), "heat %d", heat)
	}
	assert.Equal(t, 0, DifficultyBonus(35, false))
	for streak, want := range map[int]int{2: 0, 3: 20, 5: 20, 6: 50, 9: 50, 10: 100, 15: 100, 16: 200} {
		assert.Equal(t, want, StreakBonus(streak), "streak %d", streak)
	}
}

func TestAccuracyRate(t *testing.T) {
	c, i := domain.OutcomeCorrect, domain.OutcomeIncorrect
	assert.Equal(t, 0, AccuracyRate(nil))
	assert.Equal(t, 67, AccuracyRate([]domain.Prediction{
		settledAt("a", c, 50, time.Hour),
		settledAt("b", c, 50, time.Hour),
		settledAt("c", i, 50, time.Hour),
		settledAt("d", domain.OutcomePending, 50, time.Hour),
	}))
}

func TestEvaluate_Deterministic(t *testing.T) {
	in := ScoreInput{
		Predictions: SamplePredictions(testEpoch),
		Submissions: SampleSubmissions(testEpoch),
		HeatByName:  map[string]int{"奶奶灰针织": 42},
		Now:         testEpoch,
	}

	first := Evaluate(in)
	assert.Equal(t, first, Evaluate(in))
	assert.Equal(t, TotalPoints(in), first.TotalPoints)
	assert.Equal(t, 100, first.AccuracyRate)
	assert.Equal(t, 1, first.Streak)
	assert.Equal(t, 1, first.Correct)
	assert.Equal(t, 1, first.Settled)
}
