package service

import "testing"

func TestCatalogPrices(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		category string
		planType string
		want     int
		ok       bool
	}{
		{"april", "standard", 499, true},
		{"april", "elite", 699, true},
		{"april-boards", "standard", 699, true},
		{"april-boards", "elite", 999, true},
		{"jan", "standard", 699, true},
		{"jan", "elite", 999, true},
		{"summer", "standard", 0, false},
		{"april", "premium", 0, false},
	}
	for _, tt := range tests {
		got, ok := c.Price(tt.category, tt.planType)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Price(%q, %q) = (%d, %v), want (%d, %v)",
				tt.category, tt.planType, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCatalogCommunityLinks(t *testing.T) {
	c := DefaultCatalog()

	if _, ok := c.CommunityLink("april", "elite"); !ok {
		t.Error("expected a community link for april/elite")
	}
	if _, ok := c.CommunityLink("jan", "elite"); ok {
		t.Error("jan has no community link configured")
	}
}

func TestNormalizePlanType(t *testing.T) {
	tests := map[string]string{
		"std":      "standard",
		"STD":      "standard",
		"Standard": "standard",
		"ELITE":    "elite",
		"elite":    "elite",
	}
	for in, want := range tests {
		if got := NormalizePlanType(in); got != want {
			t.Errorf("NormalizePlanType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlanTypeOf(t *testing.T) {
	tests := map[string]string{
		"Elite Plan (April)": "elite",
		"standard":           "standard",
		"Something Else":     "standard",
		"ELITE":              "elite",
		"":                   "standard",
	}
	for in, want := range tests {
		if got := PlanTypeOf(in); got != want {
			t.Errorf("PlanTypeOf(%q) = %q, want %q", in, got, want)
		}
	}
}
