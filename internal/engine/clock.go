package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// ClockConfig holds the simulation cadence. Zero fields fall back to
// DefaultClockConfig.
type ClockConfig struct {
	HeatInterval         time.Duration
	HeatSample           int
	HeatDeltaMin         int
	HeatDeltaMax         int
	HeatFloor            int
	HeatCeiling          int
	CommunityInterval    time.Duration
	CommunityProbability float64
	SettleDelay          time.Duration
	ReviewDelayMin       time.Duration
	ReviewDelayMax       time.Duration
	PromoteDelayMin      time.Duration
	PromoteDelayMax      time.Duration
}

// DefaultClockConfig returns the reference cadence.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		HeatInterval:         15 * time.Second,
		HeatSample:           3,
		HeatDeltaMin:         -5,
		HeatDeltaMax:         8,
		HeatFloor:            20,
		HeatCeiling:          100,
		CommunityInterval:    20 * time.Second,
		CommunityProbability: 0.25,
		SettleDelay:          2 * time.Second,
		ReviewDelayMin:       10 * time.Second,
		ReviewDelayMax:       30 * time.Second,
		PromoteDelayMin:      30 * time.Second,
		PromoteDelayMax:      60 * time.Second,
	}
}

func (c ClockConfig) withDefaults() ClockConfig {
	d := DefaultClockConfig()
	if c.HeatInterval <= 0 {
		c.HeatInterval = d.HeatInterval
	}
	if c.HeatSample <= 0 {
		c.HeatSample = d.HeatSample
	}
	if c.HeatDeltaMin == 0 && c.HeatDeltaMax == 0 {
		c.HeatDeltaMin, c.HeatDeltaMax = d.HeatDeltaMin, d.HeatDeltaMax
	}
	if c.HeatFloor == 0 && c.HeatCeiling == 0 {
		c.HeatFloor, c.HeatCeiling = d.HeatFloor, d.HeatCeiling
	}
	if c.CommunityInterval <= 0 {
		c.CommunityInterval = d.CommunityInterval
	}
	if c.CommunityProbability < 0 {
		c.CommunityProbability = 0
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = d.SettleDelay
	}
	if c.ReviewDelayMin <= 0 || c.ReviewDelayMax < c.ReviewDelayMin {
		c.ReviewDelayMin, c.ReviewDelayMax = d.ReviewDelayMin, d.ReviewDelayMax
	}
	if c.PromoteDelayMin <= 0 || c.PromoteDelayMax < c.PromoteDelayMin {
		c.PromoteDelayMin, c.PromoteDelayMax = d.PromoteDelayMin, d.PromoteDelayMax
	}
	return c
}

// Community submission pools.
var (
	communityNames        = []string{"流苏耳环", "厚底凉鞋", "透明包包", "拼接牛仔裤", "荧光腰带"}
	communityInspirations = []string{"小红书", "TikTok", "Instagram", "街拍", "时装周"}
)

const (
	communityDescription = "来自社区的新发现，具有很大潜力"
	communitySupportMin  = 1
	communitySupportMax  = 5
)

// Clock drives the simulation: periodic heat drift and community
// submissions, plus the one-off settle, review and promote callbacks. Apart
// from Run, its methods must be called on the engine loop.
type Clock struct {
	cfg     ClockConfig
	sched   Scheduler
	rng     domain.Rand
	catalog *Catalog
	book    *PredictionBook
	board   *SubmissionBoard
	logger  *slog.Logger

	tasks map[string]Task // keyed by kind + entity id
}

// NewClock wires a clock to the components it drives.
func NewClock(
	cfg ClockConfig,
	sched Scheduler,
	rng domain.Rand,
	catalog *Catalog,
	book *PredictionBook,
	board *SubmissionBoard,
	logger *slog.Logger,
) *Clock {
	return &Clock{
		cfg:     cfg.withDefaults(),
		sched:   sched,
		rng:     rng,
		catalog: catalog,
		book:    book,
		board:   board,
		logger:  logger.With(slog.String("component", "sim_clock")),
		tasks:   make(map[string]Task),
	}
}

// Run fires the periodic ticks through exec until ctx is cancelled.
func (c *Clock) Run(ctx context.Context, exec func(context.Context, func()) error) error {
	heat := time.NewTicker(c.cfg.HeatInterval)
	defer heat.Stop()
	community := time.NewTicker(c.cfg.CommunityInterval)
	defer community.Stop()

	c.logger.InfoContext(ctx, "sim_clock: started",
		slog.Duration("heat_interval", c.cfg.HeatInterval),
		slog.Duration("community_interval", c.cfg.CommunityInterval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-heat.C:
			if err := exec(ctx, c.HeatTick); err != nil {
				return err
			}
		case <-community.C:
			if err := exec(ctx, c.CommunityTick); err != nil {
				return err
			}
		}
	}
}

// HeatTick nudges the heat of a random sample of trends.
func (c *Clock) HeatTick() {
	trends := c.catalog.All()
	n := min(c.cfg.HeatSample, len(trends))

	// Partial Fisher-Yates: the first n slots end up a uniform sample.
	for i := 0; i < n; i++ {
		j := i + c.rng.IntN(len(trends)-i)
		trends[i], trends[j] = trends[j], trends[i]

		t := trends[i]
		delta := domain.IntBetween(c.rng, c.cfg.HeatDeltaMin, c.cfg.HeatDeltaMax)
		heat := domain.ClampHeat(t.HeatScore+delta, c.cfg.HeatFloor, c.cfg.HeatCeiling)
		c.catalog.UpdateHeat(t.ID, heat)
	}
	if n > 0 {
		c.logger.Debug("sim_clock: heat tick", slog.Int("updated", n))
	}
}

// CommunityTick occasionally files a submission on behalf of another user.
func (c *Clock) CommunityTick() {
	if c.rng.Float64() >= c.cfg.CommunityProbability {
		return
	}
	draft := domain.SubmissionDraft{
		Name:        communityNames[c.rng.IntN(len(communityNames))],
		Category:    domain.Categories[c.rng.IntN(len(domain.Categories))],
		Description: communityDescription,
		Inspiration: communityInspirations[c.rng.IntN(len(communityInspirations))],
	}
	s := c.board.add(draft, domain.IntBetween(c.rng, communitySupportMin, communitySupportMax))
	c.ScheduleReview(s.ID)

	c.logger.Info("sim_clock: community submission",
		slog.String("submission_id", s.ID),
		slog.String("name", s.Name),
	)
}

// ScheduleSettlement settles a prediction after the settle delay.
func (c *Clock) ScheduleSettlement(predictionID string) {
	c.schedule("settle:"+predictionID, c.cfg.SettleDelay, func() {
		p, ok := c.book.Settle(predictionID)
		if !ok {
			return
		}
		c.logger.Info("sim_clock: prediction settled",
			slog.String("prediction_id", p.ID),
			slog.String("trend", p.TrendName),
			slog.String("outcome", string(p.Outcome)),
			slog.Int("payout", p.Payout),
		)
	})
}

// ScheduleReview reviews a submission after a random review delay.
func (c *Clock) ScheduleReview(submissionID string) {
	delay := c.between(c.cfg.ReviewDelayMin, c.cfg.ReviewDelayMax)
	c.schedule("review:"+submissionID, delay, func() {
		s, ok := c.board.Review(submissionID)
		if !ok {
			return
		}
		c.logger.Info("sim_clock: submission reviewed",
			slog.String("submission_id", s.ID),
			slog.String("status", string(s.Status)),
		)
		if s.Status == domain.SubmissionApproved {
			c.SchedulePromotion(submissionID)
		}
	})
}

// SchedulePromotion attempts promotion of an approved submission after a random
// delay.
func (c *Clock) SchedulePromotion(submissionID string) {
	delay := c.between(c.cfg.PromoteDelayMin, c.cfg.PromoteDelayMax)
	c.schedule("promote:"+submissionID, delay, func() {
		if s, promoted := c.board.Promote(submissionID); promoted {
			c.logger.Info("sim_clock: submission trending",
				slog.String("submission_id", s.ID),
				slog.Int("support", s.SupportCount),
			)
		}
	})
}

// Cancel drops every outstanding callback for the entity.
func (c *Clock) Cancel(entityID string) {
	for _, kind := range []string{"settle:", "review:", "promote:"} {
		if t, ok := c.tasks[kind+entityID]; ok {
			t.Cancel()
			delete(c.tasks, kind+entityID)
		}
	}
}

// Stop cancels all outstanding callbacks.
func (c *Clock) Stop() {
	for key, t := range c.tasks {
		t.Cancel()
		delete(c.tasks, key)
	}
}

// Outstanding returns the number of scheduled callbacks that have not run.
func (c *Clock) Outstanding() int { return len(c.tasks) }

func (c *Clock) schedule(key string, delay time.Duration, fn func()) {
	if _, exists := c.tasks[key]; exists {
		return
	}
	c.tasks[key] = c.sched.After(delay, func() {
		delete(c.tasks, key)
		fn()
	})
}

func (c *Clock) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(c.rng.Float64()*float64(hi-lo))
}
