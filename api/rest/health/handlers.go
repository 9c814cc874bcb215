package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/iburba/server/internal/logger"
	"github.com/gin-gonic/gin"
)

const probeTimeout = 2 * time.Second

// Handler godoc
// @Summary Health check
// @Description Reports service health and the state of its storage dependencies
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: "iburba",
			Version: "1.0.0",
		}
		status := http.StatusOK

		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}

		for _, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
			err := check.Probe(ctx)
			cancel()

			if err != nil {
				logger.FromContext(c.Request.Context()).Warn("health check failed", "check", check.Name, "error", err)
				resp.Checks[check.Name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}

			resp.Checks[check.Name] = "ok"
		}

		c.JSON(status, resp)
	}
}

// PingHandler godoc
// @Summary Ping
// @Description Responds with pong
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/v1/ping [get]
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
