package domain

import "fmt"

// Zone is the popularity tier of a trend, ordered niche < trending < mainstream.
type Zone string

const (
	ZoneNiche      Zone = "niche"
	ZoneTrending   Zone = "trending"
	ZoneMainstream Zone = "mainstream"
)

// Heat thresholds for zone classification.
const (
	MainstreamHeat = 80
	TrendingHeat   = 60
	MaxHeat        = 100
)

// ZoneOf classifies a heat score: >=80 mainstream, 60-79 trending, else niche.
func ZoneOf(heat int) Zone {
	switch {
	case heat >= MainstreamHeat:
		return ZoneMainstream
	case heat >= TrendingHeat:
		return ZoneTrending
	default:
		return ZoneNiche
	}
}

// Rank orders zones by popularity. Unknown zones rank -1.
func (z Zone) Rank() int {
	switch z {
	case ZoneNiche:
		return 0
	case ZoneTrending:
		return 1
	case ZoneMainstream:
		return 2
	default:
		return -1
	}
}

// Valid reports whether z is one of the three known zones.
func (z Zone) Valid() bool { return z.Rank() >= 0 }

// Radius is the radar ring of the zone, 0 at the center and 1 at the edge.
func (z Zone) Radius() float64 {
	switch z {
	case ZoneMainstream:
		return 0.3
	case ZoneTrending:
		return 0.6
	default:
		return 0.85
	}
}

// ParseZone converts a string into a Zone.
func ParseZone(s string) (Zone, error) {
	z := Zone(s)
	if !z.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidZone, s)
	}
	return z, nil
}

// Category is the fashion category of a trend or submission.
type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryStyle       Category = "style"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTops, CategoryBottoms, CategoryShoes, CategoryAccessories, CategoryStyle,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// TrendItem is a trend shown on the radar.
type TrendItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Zone        Zone     `json:"zone"`
	Angle       float64  `json:"angle"`    // radar bearing, 0-360
	Distance    float64  `json:"distance"` // radar distance from center, 0-1
	HeatScore   int      `json:"heat_score"`
	GrowthRate  float64  `json:"growth_rate"` // percent
	Description string   `json:"description"`
}

// ClampHeat bounds heat to [lo, hi].
func ClampHeat(heat, lo, hi int) int {
	if heat < lo {
		return lo
	}
	if heat > hi {
		return hi
	}
	return heat
}

// GrowthRate is the percent change from oldHeat to newHeat, 0 when oldHeat is 0.
func GrowthRate(oldHeat, newHeat int) float64 {
	if oldHeat == 0 {
		return 0
	}
	return float64(newHeat-oldHeat) / float64(oldHeat) * 100
}
