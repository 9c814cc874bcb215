package usage

import (
	"codeberg.org/iburba/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, ledger StatsReader, resolver auth.Resolver) {
	rg.GET("/pricing", GetPricing(ledger))

	usage := rg.Group("/usage")
	usage.Use(auth.AuthMiddleware(resolver)) // stats are per account

	usage.GET("/stats", GetStats(ledger))
}
