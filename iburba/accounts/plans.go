package accounts

import (
	"fmt"
	"strings"
)

var catalog = map[Plan]PlanInfo{
	PlanFree: {
		Plan:         PlanFree,
		Name:         "Free",
		MonthlyPrice: 0,
		Quality:      "standard",
		MaxHeight:    512,
		Mode:         "performance",
		Features:     []string{"standard quality", "basic support"},
	},
	PlanPro: {
		Plan:         PlanPro,
		Name:         "Pro",
		MonthlyPrice: 9.99,
		Quality:      "hd",
		MaxHeight:    768,
		Mode:         "balanced",
		Features:     []string{"hd quality", "priority processing", "email support"},
	},
	PlanBusiness: {
		Plan:         PlanBusiness,
		Name:         "Business",
		MonthlyPrice: 49.99,
		Quality:      "ultra",
		MaxHeight:    1024,
		Mode:         "quality",
		Features:     []string{"ultra quality", "api access", "dedicated support"},
	},
}

// reports whether p is a known plan
func (p Plan) IsValid() bool {
	_, ok := catalog[p]
	return ok
}

func (p Plan) String() string {
	return string(p)
}

// returns the catalog entry for p, falling back to free for unknown plans
func (p Plan) Info() PlanInfo {
	if info, ok := catalog[p]; ok {
		return info
	}

	return catalog[PlanFree]
}

// parses a plan name, case-insensitively
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown plan: %q", s)
	}

	return p, nil
}

// returns every plan in ascending price order
func Catalog() []PlanInfo {
	return []PlanInfo{catalog[PlanFree], catalog[PlanPro], catalog[PlanBusiness]}
}

// lowercases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
