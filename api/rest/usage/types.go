package usage

import (
	"context"

	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/iburba/usage"
)

// reads usage summaries and configured ceilings
type StatsReader interface {
	Stats(ctx context.Context, userID string, plan accounts.Plan) (*usage.Stats, error)
	Limits() usage.Limits
}

// PlanPricing is one entry of the pricing page
type PlanPricing struct {
	accounts.PlanInfo
	DailyLimit int  `json:"daily_limit"` // -1 for unlimited
	Unlimited  bool `json:"unlimited"`
}

type PricingResponse struct {
	Plans []PlanPricing `json:"plans"`
}
