package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/engine"
)

// Profile defaults and limits.
const (
	DefaultProfileName = "时尚探索者"
	DefaultProfileBio  = "追寻下一个时尚风潮，享受发现的乐趣"

	maxNameLen = 32
	maxBioLen  = 200
)

// ProfileSource is the engine surface the profile is derived from.
type ProfileSource interface {
	Score(ctx context.Context) (engine.Score, error)
	Predictions(ctx context.Context) ([]domain.Prediction, error)
	Submissions(ctx context.Context, status domain.SubmissionStatus) ([]domain.Submission, error)
}

// ProfileService stores the editable profile fields and derives level,
// title and achievements from the engine state.
type ProfileService struct {
	state  domain.StateStore
	source ProfileSource
	now    func() time.Time
	logger *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(state domain.StateStore, source ProfileSource, now func() time.Time, logger *slog.Logger) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{
		state:  state,
		source: source,
		now:    now,
		logger: logger.With(slog.String("component", "profile_service")),
	}
}

// Touch records the first launch time if it is not stored yet and returns it.
func (s *ProfileService) Touch(ctx context.Context) (time.Time, error) {
	raw, err := s.state.Get(ctx, domain.StateFirstSeen)
	if err == nil {
		if t, perr := time.Parse(time.RFC3339, raw); perr == nil {
			return t, nil
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return time.Time{}, fmt.Errorf("profile_service: load first seen: %w", err)
	}

	now := s.now()
	if err := s.state.Set(ctx, domain.StateFirstSeen, now.Format(time.RFC3339)); err != nil {
		return time.Time{}, fmt.Errorf("profile_service: store first seen: %w", err)
	}
	return now, nil
}

// Profile assembles the current profile.
func (s *ProfileService) Profile(ctx context.Context) (domain.Profile, error) {
	name, err := s.stateOr(ctx, domain.StateProfileName, DefaultProfileName)
	if err != nil {
		return domain.Profile{}, err
	}
	bio, err := s.stateOr(ctx, domain.StateProfileBio, DefaultProfileBio)
	if err != nil {
		return domain.Profile{}, err
	}
	firstSeen, err := s.Touch(ctx)
	if err != nil {
		return domain.Profile{}, err
	}

	score, err := s.source.Score(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: score: %w", err)
	}
	preds, err := s.source.Predictions(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: predictions: %w", err)
	}
	subs, err := s.source.Submissions(ctx, "")
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: submissions: %w", err)
	}

	level := domain.LevelFor(score.TotalPoints)
	return domain.Profile{
		Name:          name,
		Bio:           bio,
		Level:         level,
		Title:         domain.LevelTitle(level),
		TotalPoints:   score.TotalPoints,
		XPToNextLevel: domain.XPToNextLevel(level, score.TotalPoints),
		AccuracyRate:  score.AccuracyRate,
		Correct:       score.Correct,
		Achievements:  Achievements(preds, subs, score.Streak, firstSeen, s.now()),
		FirstSeen:     firstSeen,
	}, nil
}

// Update stores a new name and bio. The name is required.
func (s *ProfileService) Update(ctx context.Context, name, bio string) (domain.Profile, error) {
	name, bio = strings.TrimSpace(name), strings.TrimSpace(bio)
	switch {
	case name == "":
		return domain.Profile{}, fmt.Errorf("%w: name is required", domain.ErrInvalidProfile)
	case utf8.RuneCountInString(name) > maxNameLen:
		return domain.Profile{}, fmt.Errorf("%w: name exceeds %d characters", domain.ErrInvalidProfile, maxNameLen)
	case utf8.RuneCountInString(bio) > maxBioLen:
		return domain.Profile{}, fmt.Errorf("%w: bio exceeds %d characters", domain.ErrInvalidProfile, maxBioLen)
	}

	if err := s.state.Set(ctx, domain.StateProfileName, name); err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: store name: %w", err)
	}
	if err := s.state.Set(ctx, domain.StateProfileBio, bio); err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: store bio: %w", err)
	}
	s.logger.InfoContext(ctx, "profile_service: profile updated", slog.String("name", name))
	return s.Profile(ctx)
}

// StyleProfile returns the stored style profile, or the default one when
// none was saved.
func (s *ProfileService) StyleProfile(ctx context.Context) (domain.StyleProfile, error) {
	raw, err := s.state.Get(ctx, domain.StateStyleProfile)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultStyleProfile(), nil
	}
	if err != nil {
		return domain.StyleProfile{}, fmt.Errorf("profile_service: load style: %w", err)
	}

	var p domain.StyleProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.WarnContext(ctx, "profile_service: stored style unreadable, using default", slog.String("error", err.Error()))
		return domain.DefaultStyleProfile(), nil
	}
	return p.Normalize(), nil
}

// UpdateStyle validates and stores a new style profile. Duplicates are
// dropped and a missing budget defaults to medium.
func (s *ProfileService) UpdateStyle(ctx context.Context, p domain.StyleProfile) (domain.StyleProfile, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return domain.StyleProfile{}, err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return domain.StyleProfile{}, fmt.Errorf("profile_service: encode style: %w", err)
	}
	if err := s.state.Set(ctx, domain.StateStyleProfile, string(raw)); err != nil {
		return domain.StyleProfile{}, fmt.Errorf("profile_service: store style: %w", err)
	}
	s.logger.InfoContext(ctx, "profile_service: style updated",
		slog.Int("styles", len(p.Styles)),
		slog.Int("brands", len(p.Brands)),
		slog.Int("budget", int(p.Budget)),
	)
	return p, nil
}

func (s *ProfileService) stateOr(ctx context.Context, key, fallback string) (string, error) {
	v, err := s.state.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("profile_service: load %s: %w", key, err)
	}
	return v, nil
}

// Achievement ids.
const (
	AchievementFirstPrediction = "first_prediction"
	AchievementTrendCatcher    = "trend_catcher"
	AchievementStreakMaster    = "streak_master"
	AchievementEarlyCall       = "early_call"
	AchievementCommunity       = "community_contributor"
	AchievementRadarExpert     = "radar_expert"
)

// Achievement thresholds.
const (
	catcherCorrect     = 5
	streakMasterLength = 10
	earlyCallAge       = 14 * 24 * time.Hour
	communityAccepted  = 5
	radarExpertAge     = 30 * 24 * time.Hour
)

// Achievements derives every milestone from the current history.
func Achievements(preds []domain.Prediction, subs []domain.Submission, streak int, firstSeen, now time.Time) []domain.Achievement {
	correct := 0
	early := false
	for _, p := range preds {
		if p.Outcome != domain.OutcomeCorrect {
			continue
		}
		correct++
		if now.Sub(p.PredictedAt) >= earlyCallAge {
			early = true
		}
	}
	accepted := 0
	for _, s := range subs {
		if s.Status == domain.SubmissionApproved || s.Status == domain.SubmissionTrending {
			accepted++
		}
	}

	return []domain.Achievement{
		{ID: AchievementFirstPrediction, Title: "新手上路", Description: "完成第一次预测", Unlocked: len(preds) > 0},
		{ID: AchievementTrendCatcher, Title: "趋势捕手", Description: "成功预测5次趋势", Unlocked: correct >= catcherCorrect},
		{ID: AchievementStreakMaster, Title: "时尚达人", Description: "连续预测成功10次", Unlocked: streak >= streakMasterLength},
		{ID: AchievementEarlyCall, Title: "先知先觉", Description: "提前2周预测成功趋势", Unlocked: early},
		{ID: AchievementCommunity, Title: "社区贡献", Description: "提名趋势被采纳5次", Unlocked: accepted >= communityAccepted},
		{ID: AchievementRadarExpert, Title: "雷达专家", Description: "使用应用超过30天", Unlocked: !firstSeen.IsZero() && now.Sub(firstSeen) >= radarExpertAge},
	}
}
