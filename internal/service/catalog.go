package service

import "strings"

// PlanPrice holds the rupee price per plan type within a category.
type PlanPrice struct {
	Standard int
	Elite    int
}

// PlanLink holds the community invite link per plan type within a category.
type PlanLink struct {
	Standard string
	Elite    string
}

// Catalog is the static pricing and community-link configuration. It is
// built once at startup and injected; prices must match what the frontend
// displays.
type Catalog struct {
	prices map[string]PlanPrice
	links  map[string]PlanLink
}

func NewCatalog(prices map[string]PlanPrice, links map[string]PlanLink) *Catalog {
	return &Catalog{prices: prices, links: links}
}

func DefaultCatalog() *Catalog {
	return NewCatalog(
		map[string]PlanPrice{
			"jan":          {Standard: 699, Elite: 999},
			"april-boards": {Standard: 699, Elite: 999},
			"april":        {Standard: 499, Elite: 699},
		},
		map[string]PlanLink{
			"april": {
				Standard: "https://chat.whatsapp.com/D5jRDS7Kqjb1LUF0O9VXY7",
				Elite:    "https://chat.whatsapp.com/JRYpdmuAweo2VL6Zuud60N",
			},
			"april-boards": {
				Standard: "https://chat.whatsapp.com/KMgl7zS0d6v3Zuq06Cubzm",
				Elite:    "https://chat.whatsapp.com/DobPEtJV5MSICtNiQRWCXD",
			},
		},
	)
}

// Price returns the rupee price for a (category, plan type) pair.
func (c *Catalog) Price(category, planType string) (int, bool) {
	p, ok := c.prices[category]
	if !ok {
		return 0, false
	}
	switch planType {
	case PlanElite:
		return p.Elite, true
	case PlanStandard:
		return p.Standard, true
	}
	return 0, false
}

// CommunityLink returns the invite link for a (category, plan type) pair.
func (c *Catalog) CommunityLink(category, planType string) (string, bool) {
	l, ok := c.links[category]
	if !ok {
		return "", false
	}
	switch planType {
	case PlanElite:
		return l.Elite, true
	case PlanStandard:
		return l.Standard, true
	}
	return "", false
}

const (
	PlanStandard = "standard"
	PlanElite    = "elite"
)

// NormalizePlanType lower-cases the input and maps the "std" shorthand
// that the frontend sometimes sends.
func NormalizePlanType(planType string) string {
	planType = strings.ToLower(planType)
	if planType == "std" {
		return PlanStandard
	}
	return planType
}

// PlanTypeOf derives a plan type from a free-form plan name or type
// string by substring match, the same rule the original pricing uses.
func PlanTypeOf(s string) string {
	if strings.Contains(strings.ToLower(s), PlanElite) {
		return PlanElite
	}
	return PlanStandard
}
