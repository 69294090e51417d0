package domain

import (
	"fmt"
	"slices"
)

// StyleType is a dress style the user can prefer.
type StyleType string

const (
	StyleMinimalist StyleType = "minimalist"
	StyleStreetwear StyleType = "streetwear"
	StylePreppy     StyleType = "preppy"
	StyleBohemian   StyleType = "bohemian"
	StyleElegant    StyleType = "elegant"
	StyleCasual     StyleType = "casual"
	StyleVintage    StyleType = "vintage"
	StyleSporty     StyleType = "sporty"
	StyleRomantic   StyleType = "romantic"
	StyleEdgy       StyleType = "edgy"
)

// StyleTypes lists every style in display order.
var StyleTypes = []StyleType{
	StyleMinimalist, StyleStreetwear, StylePreppy, StyleBohemian, StyleElegant,
	StyleCasual, StyleVintage, StyleSporty, StyleRomantic, StyleEdgy,
}

// Valid reports whether s is a known style.
func (s StyleType) Valid() bool { return slices.Contains(StyleTypes, s) }

// Brand is a favourite brand. Each brand stands for a pair of styles.
type Brand string

const (
	BrandUniqlo      Brand = "uniqlo"
	BrandZara        Brand = "zara"
	BrandHM          Brand = "hm"
	BrandNike        Brand = "nike"
	BrandAdidas      Brand = "adidas"
	BrandMuji        Brand = "muji"
	BrandChanel      Brand = "chanel"
	BrandGucci       Brand = "gucci"
	BrandConverse    Brand = "converse"
	BrandVans        Brand = "vans"
	BrandCeline      Brand = "celine"
	BrandAcneStudios Brand = "acne_studios"
	BrandLemaire     Brand = "lemaire"
	BrandJilSander   Brand = "jil_sander"
	BrandAnta        Brand = "anta"
	BrandLining      Brand = "lining"
	BrandPeacebird   Brand = "peacebird"
	BrandJNBY        Brand = "jnby"
)

var brandStyles = map[Brand][]StyleType{
	BrandUniqlo:      {StyleMinimalist, StyleCasual},
	BrandMuji:        {StyleMinimalist, StyleCasual},
	BrandZara:        {StyleCasual, StyleElegant},
	BrandHM:          {StyleCasual, StyleElegant},
	BrandNike:        {StyleSporty, StyleStreetwear},
	BrandAdidas:      {StyleSporty, StyleStreetwear},
	BrandAnta:        {StyleSporty, StyleStreetwear},
	BrandLining:      {StyleSporty, StyleStreetwear},
	BrandChanel:      {StyleElegant, StyleRomantic},
	BrandGucci:       {StyleElegant, StyleRomantic},
	BrandCeline:      {StyleElegant, StyleRomantic},
	BrandConverse:    {StyleStreetwear, StyleCasual},
	BrandVans:        {StyleStreetwear, StyleCasual},
	BrandAcneStudios: {StyleMinimalist, StyleEdgy},
	BrandLemaire:     {StyleMinimalist, StyleEdgy},
	BrandJilSander:   {StyleMinimalist, StyleEdgy},
	BrandPeacebird:   {StyleCasual, StylePreppy},
	BrandJNBY:        {StyleBohemian, StyleVintage},
}

// Valid reports whether b is a known brand.
func (b Brand) Valid() bool {
	_, ok := brandStyles[b]
	return ok
}

// Styles returns the styles the brand is associated with.
func (b Brand) Styles() []StyleType { return brandStyles[b] }

// Budget is the spending band, ordered from low to luxury.
type Budget int

const (
	BudgetLow Budget = iota + 1
	BudgetMedium
	BudgetHigh
	BudgetLuxury
)

// Valid reports whether b is a known band.
func (b Budget) Valid() bool { return b >= BudgetLow && b <= BudgetLuxury }

// StyleProfile holds the taste used to personalise the radar.
type StyleProfile struct {
	Styles []StyleType `json:"preferred_styles"`
	Brands []Brand     `json:"favorite_brands"`
	Budget Budget      `json:"budget"`
}

// DefaultStyleProfile has no preferences and a medium budget.
func DefaultStyleProfile() StyleProfile {
	return StyleProfile{Styles: []StyleType{}, Brands: []Brand{}, Budget: BudgetMedium}
}

// Personalized reports whether the profile can filter the radar. Only
// preferred styles switch filtering on.
func (p StyleProfile) Personalized() bool { return len(p.Styles) > 0 }

// Normalize drops duplicates, keeping first occurrences, and defaults a
// zero budget to medium.
func (p StyleProfile) Normalize() StyleProfile {
	out := StyleProfile{Styles: []StyleType{}, Brands: []Brand{}, Budget: p.Budget}
	for _, s := range p.Styles {
		if !slices.Contains(out.Styles, s) {
			out.Styles = append(out.Styles, s)
		}
	}
	for _, b := range p.Brands {
		if !slices.Contains(out.Brands, b) {
			out.Brands = append(out.Brands, b)
		}
	}
	if out.Budget == 0 {
		out.Budget = BudgetMedium
	}
	return out
}

// Validate checks every style, brand and the budget band.
func (p StyleProfile) Validate() error {
	for _, s := range p.Styles {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown style %q", ErrInvalidProfile, s)
		}
	}
	for _, b := range p.Brands {
		if !b.Valid() {
			return fmt.Errorf("%w: unknown brand %q", ErrInvalidProfile, b)
		}
	}
	if !p.Budget.Valid() {
		return fmt.Errorf("%w: budget must be %d-%d", ErrInvalidProfile, BudgetLow, BudgetLuxury)
	}
	return nil
}
