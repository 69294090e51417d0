package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Radar and prediction visibility thresholds.
const (
	RadarMinHeat       = 30
	PredictableMinHeat = 35
)

// Catalog owns every known TrendItem. Items are appended and re-scored but
// never removed.
type Catalog struct {
	items  []domain.TrendItem
	byID   map[string]int
	events emitter
}

// NewCatalog creates a catalog holding the given items. Items without an ID
// are assigned one. sink may be nil.
func NewCatalog(items []domain.TrendItem, sink domain.EventSink, now func() time.Time) *Catalog {
	c := &Catalog{
		items:  make([]domain.TrendItem, 0, len(items)),
		byID:   make(map[string]int, len(items)),
		events: newEmitter(sink, now),
	}
	for _, it := range items {
		c.insert(it)
	}
	return c
}

// All returns a copy of every trend in insertion order.
func (c *Catalog) All() []domain.TrendItem {
	out := make([]domain.TrendItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of trends.
func (c *Catalog) Len() int { return len(c.items) }

// AboveHeat returns the trends whose heat is at least threshold.
func (c *Catalog) AboveHeat(threshold int) []domain.TrendItem {
	return c.filter(func(t domain.TrendItem) bool { return t.HeatScore >= threshold })
}

// Radar returns the trends hot enough to be drawn on the radar.
func (c *Catalog) Radar() []domain.TrendItem {
	return c.AboveHeat(RadarMinHeat)
}

// Predictable returns the niche trends warm enough to be staked on.
func (c *Catalog) Predictable() []domain.TrendItem {
	return c.filter(func(t domain.TrendItem) bool {
		return t.Zone == domain.ZoneNiche && t.HeatScore >= PredictableMinHeat
	})
}

// ByID looks a trend up by id.
func (c *Catalog) ByID(id string) (domain.TrendItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.TrendItem{}, false
	}
	return c.items[i], true
}

// ByName returns the first trend with the given name.
func (c *Catalog) ByName(name string) (domain.TrendItem, bool) {
	for _, t := range c.items {
		if t.Name == name {
			return t, true
		}
	}
	return domain.TrendItem{}, false
}

// HeatByName maps each trend name to the heat of its first occurrence.
func (c *Catalog) HeatByName() map[string]int {
	out := make(map[string]int, len(c.items))
	for _, t := range c.items {
		if _, seen := out[t.Name]; !seen {
			out[t.Name] = t.HeatScore
		}
	}
	return out
}

// UpdateHeat sets a trend's heat, clamped to 0..100, and recomputes its growth
// rate and zone. Unknown ids are ignored.
func (c *Catalog) UpdateHeat(id string, heat int) (domain.TrendItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.TrendItem{}, false
	}
	heat = domain.ClampHeat(heat, 0, domain.MaxHeat)

	t := c.items[i]
	t.GrowthRate = domain.GrowthRate(t.HeatScore, heat)
	t.HeatScore = heat
	t.Zone = domain.ZoneOf(heat)
	c.items[i] = t

	c.events.trend(domain.EventTrendHeat, t)
	return t, true
}

// Add appends a trend and returns it with its assigned id.
func (c *Catalog) Add(item domain.TrendItem) domain.TrendItem {
	item = c.insert(item)
	c.events.trend(domain.EventTrendAdded, item)
	return item
}

func (c *Catalog) insert(item domain.TrendItem) domain.TrendItem {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.HeatScore = domain.ClampHeat(item.HeatScore, 0, domain.MaxHeat)
	c.byID[item.ID] = len(c.items)
	c.items = append(c.items, item)
	return item
}

func (c *Catalog) filter(keep func(domain.TrendItem) bool) []domain.TrendItem {
	var out []domain.TrendItem
	for _, t := range c.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
