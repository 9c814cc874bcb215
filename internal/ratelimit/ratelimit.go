package ratelimit

import (
	"fmt"

	apierrors "codeberg.org/iburba/server/internal/errors"
	"codeberg.org/iburba/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "iburba:ratelimit"

// inbound request limiting settings
type Config struct {
	// formatted rate, e.g. "60-M" for 60 requests per minute
	Rate string

	// shared counters across instances; nil keeps counters in process
	Redis *redis.Client
}

// returns a per-client-IP limiter middleware
func New(cfg Config) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", cfg.Rate, err)
	}

	store, err := newStore(cfg.Redis)
	if err != nil {
		return nil, err
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			apierrors.TooManyRequests(c, "rate limit exceeded, please slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// counters unavailable, let the request through
			logger.FromContext(c.Request.Context()).Warn("rate limiter failed", "error", err)
			c.Next()
		}),
	), nil
}

func newStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   keyPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	return store, nil
}
