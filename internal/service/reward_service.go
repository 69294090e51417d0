package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Crediter adds coins to the ledger. engine.Engine satisfies it.
type Crediter interface {
	Credit(ctx context.Context, amount int, reason string) (int, error)
}

// RewardConfig holds the startup economy.
type RewardConfig struct {
	StartingBalance   int
	NewUserBonus      int
	DailyReward       int
	LoyaltyBonus      int
	LoyaltyStreakDays int
}

// DefaultRewardConfig returns the stock economy.
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		StartingBalance:   domain.StartingBalance,
		NewUserBonus:      domain.NewUserBonus,
		DailyReward:       domain.DailyReward,
		LoyaltyBonus:      domain.LoyaltyBonus,
		LoyaltyStreakDays: domain.LoyaltyStreakDays,
	}
}

// RewardResult reports what Apply credited.
type RewardResult struct {
	NewUser    bool `json:"new_user"`
	Daily      int  `json:"daily"`
	Loyalty    int  `json:"loyalty"`
	StreakDays int  `json:"streak_days"`
}

// RewardService restores the persisted balance and grants the new-user and
// daily login rewards.
type RewardService struct {
	state  domain.StateStore
	cfg    RewardConfig
	rng    domain.Rand
	now    func() time.Time
	logger *slog.Logger
}

// NewRewardService creates a RewardService.
func NewRewardService(state domain.StateStore, cfg RewardConfig, rng domain.Rand, now func() time.Time, logger *slog.Logger) *RewardService {
	if now == nil {
		now = time.Now
	}
	return &RewardService{
		state:  state,
		cfg:    cfg,
		rng:    rng,
		now:    now,
		logger: logger.With(slog.String("component", "reward_service")),
	}
}

// OpeningBalance returns the persisted balance. fresh is true when nothing
// was stored, in which case the configured starting balance is returned and
// written back.
func (s *RewardService) OpeningBalance(ctx context.Context) (balance int, fresh bool, err error) {
	raw, err := s.state.Get(ctx, domain.StateBalance)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if err := s.state.Set(ctx, domain.StateBalance, strconv.Itoa(s.cfg.StartingBalance)); err != nil {
			return 0, false, fmt.Errorf("reward_service: seed balance: %w", err)
		}
		return s.cfg.StartingBalance, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("reward_service: load balance: %w", err)
	}

	balance, err = strconv.Atoi(raw)
	if err != nil || balance < 0 {
		s.logger.WarnContext(ctx, "reward_service: stored balance unreadable, resetting",
			slog.String("value", raw),
		)
		return s.cfg.StartingBalance, false, nil
	}
	return balance, false, nil
}

// Apply credits the new-user bonus when fresh and the daily reward when it
// has not been granted today. The loyalty bonus rides on the daily reward
// once the simulated consecutive-day count reaches the streak threshold.
func (s *RewardService) Apply(ctx context.Context, ledger Crediter, fresh bool) (RewardResult, error) {
	var res RewardResult

	if fresh && s.cfg.NewUserBonus > 0 {
		if _, err := ledger.Credit(ctx, s.cfg.NewUserBonus, "new user bonus"); err != nil {
			return res, fmt.Errorf("reward_service: new user bonus: %w", err)
		}
		res.NewUser = true
	}

	now := s.now()
	due, err := s.dailyDue(ctx, now)
	if err != nil {
		return res, err
	}
	if !due {
		return res, nil
	}

	if _, err := ledger.Credit(ctx, s.cfg.DailyReward, "daily reward"); err != nil {
		return res, fmt.Errorf("reward_service: daily reward: %w", err)
	}
	res.Daily = s.cfg.DailyReward

	res.StreakDays = domain.IntBetween(s.rng, 1, 14)
	if res.StreakDays >= s.cfg.LoyaltyStreakDays && s.cfg.LoyaltyBonus > 0 {
		if _, err := ledger.Credit(ctx, s.cfg.LoyaltyBonus, fmt.Sprintf("%d day login streak", res.StreakDays)); err != nil {
			return res, fmt.Errorf("reward_service: loyalty bonus: %w", err)
		}
		res.Loyalty = s.cfg.LoyaltyBonus
	}

	if err := s.state.Set(ctx, domain.StateLastDailyReward, now.Format(time.RFC3339)); err != nil {
		return res, fmt.Errorf("reward_service: store reward day: %w", err)
	}

	s.logger.InfoContext(ctx, "reward_service: rewards granted",
		slog.Bool("new_user", res.NewUser),
		slog.Int("daily", res.Daily),
		slog.Int("loyalty", res.Loyalty),
		slog.Int("streak_days", res.StreakDays),
	)
	return res, nil
}

func (s *RewardService) dailyDue(ctx context.Context, now time.Time) (bool, error) {
	raw, err := s.state.Get(ctx, domain.StateLastDailyReward)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reward_service: load reward day: %w", err)
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true, nil
	}
	return !sameDay(last, now), nil
}

// sameDay compares calendar days in now's location.
func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
