package engine

import (
	"strings"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Compatibility weights. A trend scoring above CompatibleScore is shown on
// the personalised radar.
const (
	compatibilityBase = 50
	brandMatchBonus   = 15
	brandMissPenalty  = -10
	styleMatchBonus   = 20
	styleMissPenalty  = -15
	budgetFitBonus    = 5
	budgetMissPenalty = -5

	CompatibleScore = 60
)

// Name fragments that tie a trend to a style. Styles without an entry never
// match by name.
var styleKeywords = map[domain.StyleType][]string{
	domain.StyleMinimalist: {"简约", "基础"},
	domain.StyleStreetwear: {"街头", "潮"},
	domain.StyleVintage:    {"复古", "奶奶", "爷爷"},
	domain.StyleElegant:    {"优雅", "珍珠", "丝巾"},
	domain.StyleSporty:     {"运动", "帽"},
}

// Compatibility scores how well trend suits the profile, from 0 to 100.
// Brands and styles only count when the profile lists some; the budget
// always counts against a price band inferred from heat.
func Compatibility(p domain.StyleProfile, trend domain.TrendItem) int {
	score := compatibilityBase

	if len(p.Brands) > 0 {
		if anyBrandMatches(p.Brands, trend.Name) {
			score += brandMatchBonus
		} else {
			score += brandMissPenalty
		}
	}
	if len(p.Styles) > 0 {
		if anyStyleMatches(p.Styles, trend.Name) {
			score += styleMatchBonus
		} else {
			score += styleMissPenalty
		}
	}
	if p.Budget >= EstimatedBudget(trend.HeatScore) {
		score += budgetFitBonus
	} else {
		score += budgetMissPenalty
	}

	return min(max(score, 0), 100)
}

// EstimatedBudget infers the price band of a trend: hotter trends cost more.
func EstimatedBudget(heat int) domain.Budget {
	switch {
	case heat > 80:
		return domain.BudgetHigh
	case heat > 50:
		return domain.BudgetMedium
	default:
		return domain.BudgetLow
	}
}

func anyBrandMatches(brands []domain.Brand, name string) bool {
	for _, b := range brands {
		if anyStyleMatches(b.Styles(), name) {
			return true
		}
	}
	return false
}

func anyStyleMatches(styles []domain.StyleType, name string) bool {
	for _, s := range styles {
		for _, kw := range styleKeywords[s] {
			if strings.Contains(name, kw) {
				return true
			}
		}
	}
	return false
}

// FilterRadar narrows radar trends to one category, when set, and to those
// compatible with profile, when it is non-nil and personalised.
func FilterRadar(trends []domain.TrendItem, category domain.Category, profile *domain.StyleProfile) []domain.TrendItem {
	var out []domain.TrendItem
	for _, t := range trends {
		if category != "" && t.Category != category {
			continue
		}
		if profile != nil && profile.Personalized() && Compatibility(*profile, t) <= CompatibleScore {
			continue
		}
		out = append(out, t)
	}
	return out
}
