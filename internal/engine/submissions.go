package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Review and promotion parameters.
const (
	approvalChance  = 0.5
	promotionChance = 0.3

	approvalSupportMin  = 3
	approvalSupportMax  = 15
	promotionSupportMin = 20
	promotionSupportMax = 50

	newTrendHeatMin   = 35
	newTrendHeatMax   = 50
	newTrendGrowthMin = 10.0
	newTrendGrowthMax = 30.0

	promotedHeatMin = 75
	promotedHeatMax = 95

	distanceJitter = 0.1
)

// SubmissionBoard owns nominated trends and moves them through review and
// promotion. Approved nominations become niche trends in the catalog.
type SubmissionBoard struct {
	catalog *Catalog
	rng     domain.Rand
	events  emitter

	order []string // ids, oldest first
	byID  map[string]*domain.Submission
}

// NewSubmissionBoard creates an empty board. sink may be nil.
func NewSubmissionBoard(catalog *Catalog, rng domain.Rand, sink domain.EventSink, now func() time.Time) *SubmissionBoard {
	return &SubmissionBoard{
		catalog: catalog,
		rng:     rng,
		events:  newEmitter(sink, now),
		byID:    make(map[string]*domain.Submission),
	}
}

// Restore loads historical submissions, ordered oldest first. An approved or
// trending submission whose trend is missing from the catalog gets it rebuilt
// under the same id; trending ones land in the promoted heat band.
func (b *SubmissionBoard) Restore(submissions []domain.Submission) {
	for _, s := range submissions {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		if s.Status == "" {
			s.Status = domain.SubmissionPending
		}
		b.put(s)
		b.relink(s)
	}
}

func (b *SubmissionBoard) relink(s domain.Submission) {
	if s.TrendID == "" {
		return
	}
	if s.Status != domain.SubmissionApproved && s.Status != domain.SubmissionTrending {
		return
	}
	if _, ok := b.catalog.ByID(s.TrendID); ok {
		return
	}

	trend := b.newTrend(s)
	trend.ID = s.TrendID
	if s.Status == domain.SubmissionTrending {
		trend.HeatScore = domain.IntBetween(b.rng, promotedHeatMin, promotedHeatMax)
		trend.Zone = domain.ZoneOf(trend.HeatScore)
		trend.Distance = radarDistance(b.rng, trend.Zone)
	}
	b.catalog.insert(trend)
}

// Submit validates the draft and records a pending submission with a single
// supporter.
func (b *SubmissionBoard) Submit(draft domain.SubmissionDraft) (domain.Submission, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Submission{}, fmt.Errorf("submission_board: submit: %w", err)
	}
	return b.add(draft, 1), nil
}

func (b *SubmissionBoard) add(draft domain.SubmissionDraft, support int) domain.Submission {
	s := domain.Submission{
		ID:           uuid.New().String(),
		Name:         draft.Name,
		Category:     draft.Category,
		Description:  draft.Description,
		Inspiration:  draft.Inspiration,
		SubmittedAt:  b.events.clock(),
		Status:       domain.SubmissionPending,
		SupportCount: support,
	}
	b.put(s)
	b.events.submission(domain.EventSubmissionCreated, s)
	return s
}

// Review approves or rejects a pending submission on a fair coin. Approval
// adds support and a new niche trend. It reports false when the submission is
// unknown or no longer pending.
func (b *SubmissionBoard) Review(id string) (domain.Submission, bool) {
	s, ok := b.byID[id]
	if !ok || s.Status != domain.SubmissionPending {
		return domain.Submission{}, false
	}

	if b.rng.Float64() >= approvalChance {
		s.Status = domain.SubmissionRejected
		b.events.submission(domain.EventSubmissionReviewed, *s)
		return *s, true
	}

	s.Status = domain.SubmissionApproved
	s.SupportCount += domain.IntBetween(b.rng, approvalSupportMin, approvalSupportMax)

	trend := b.catalog.Add(b.newTrend(*s))
	s.TrendID = trend.ID

	b.events.submission(domain.EventSubmissionReviewed, *s)
	return *s, true
}

// Promote turns an approved submission into a trending one with a 30% chance,
// boosting its support and the heat of its trend. A failed draw leaves it
// approved. It reports whether the submission was promoted.
func (b *SubmissionBoard) Promote(id string) (domain.Submission, bool) {
	s, ok := b.byID[id]
	if !ok || s.Status != domain.SubmissionApproved {
		return domain.Submission{}, false
	}
	if b.rng.Float64() >= promotionChance {
		return *s, false
	}

	s.Status = domain.SubmissionTrending
	s.SupportCount += domain.IntBetween(b.rng, promotionSupportMin, promotionSupportMax)

	trendID := s.TrendID
	if trendID == "" {
		if t, found := b.catalog.ByName(s.Name); found {
			trendID = t.ID
		}
	}
	if trendID != "" {
		b.catalog.UpdateHeat(trendID, domain.IntBetween(b.rng, promotedHeatMin, promotedHeatMax))
	}

	b.events.submission(domain.EventSubmissionPromoted, *s)
	return *s, true
}

// Get returns a submission by id.
func (b *SubmissionBoard) Get(id string) (domain.Submission, bool) {
	s, ok := b.byID[id]
	if !ok {
		return domain.Submission{}, false
	}
	return *s, true
}

// All returns every submission, newest first.
func (b *SubmissionBoard) All() []domain.Submission {
	return b.ByStatus("")
}

// ByStatus returns the submissions in the given status, newest first. An
// empty status matches everything.
func (b *SubmissionBoard) ByStatus(status domain.SubmissionStatus) []domain.Submission {
	var out []domain.Submission
	for i := len(b.order) - 1; i >= 0; i-- {
		s := b.byID[b.order[i]]
		if status == "" || s.Status == status {
			out = append(out, *s)
		}
	}
	return out
}

// Pending returns submissions awaiting review.
func (b *SubmissionBoard) Pending() []domain.Submission { return b.ByStatus(domain.SubmissionPending) }

// Approved returns approved submissions that have not become trending.
func (b *SubmissionBoard) Approved() []domain.Submission { return b.ByStatus(domain.SubmissionApproved) }

// Rejected returns rejected submissions.
func (b *SubmissionBoard) Rejected() []domain.Submission { return b.ByStatus(domain.SubmissionRejected) }

// Trending returns submissions that became trends.
func (b *SubmissionBoard) Trending() []domain.Submission { return b.ByStatus(domain.SubmissionTrending) }

// Stats counts submissions per status.
func (b *SubmissionBoard) Stats() domain.SubmissionStats {
	var st domain.SubmissionStats
	for _, s := range b.byID {
		st.Total++
		switch s.Status {
		case domain.SubmissionPending:
			st.Pending++
		case domain.SubmissionApproved:
			st.Approved++
		case domain.SubmissionRejected:
			st.Rejected++
		case domain.SubmissionTrending:
			st.Trending++
		}
	}
	return st
}

func (b *SubmissionBoard) newTrend(s domain.Submission) domain.TrendItem {
	angle := domain.FloatBetween(b.rng, 0, 360)
	heat := domain.IntBetween(b.rng, newTrendHeatMin, newTrendHeatMax)
	growth := domain.FloatBetween(b.rng, newTrendGrowthMin, newTrendGrowthMax)
	return domain.TrendItem{
		Name:        s.Name,
		Category:    s.Category,
		Zone:        domain.ZoneNiche,
		Angle:       angle,
		Distance:    radarDistance(b.rng, domain.ZoneNiche),
		HeatScore:   heat,
		GrowthRate:  growth,
		Description: s.Description,
	}
}

func (b *SubmissionBoard) put(s domain.Submission) {
	if _, exists := b.byID[s.ID]; !exists {
		b.order = append(b.order, s.ID)
	}
	b.byID[s.ID] = &s
}

// radarDistance places a trend on its zone ring with a little jitter.
func radarDistance(rng domain.Rand, zone domain.Zone) float64 {
	return zone.Radius() + domain.FloatBetween(rng, -distanceJitter, distanceJitter)
}
