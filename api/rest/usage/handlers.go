package usage

import (
	"net/http"

	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/internal/auth"
	"codeberg.org/iburba/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// GetStats godoc
// @Summary Get usage statistics
// @Description Returns today's try-on count, the plan's daily limit, what is left, and the last 30 days of history
// @Tags usage
// @Produce json
// @Success 200 {object} usage.Stats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage/stats [get]
// @Security BearerAuth
func GetStats(ledger StatsReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.GetIdentity(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		stats, err := ledger.Stats(c.Request.Context(), identity.UserID, identity.Plan)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage data", err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

// GetPricing godoc
// @Summary List plans
// @Description Returns every plan with its price, quality settings and daily try-on limit
// @Tags usage
// @Produce json
// @Success 200 {object} PricingResponse
// @Router /api/v1/pricing [get]
func GetPricing(ledger StatsReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		limits := ledger.Limits()
		catalog := accounts.Catalog()

		plans := make([]PlanPricing, 0, len(catalog))
		for _, info := range catalog {
			limit := limits.ForPlan(info.Plan)
			plans = append(plans, PlanPricing{
				PlanInfo:   info,
				DailyLimit: limit,
				Unlimited:  limit < 0,
			})
		}

		c.JSON(http.StatusOK, PricingResponse{Plans: plans})
	}
}
