package main

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/iburba/server/api/rest/health"
	"codeberg.org/iburba/server/internal/config"
	"codeberg.org/iburba/server/internal/logger"
	"codeberg.org/iburba/server/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const startupTimeout = 15 * time.Second

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	stores, err := InitializeStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	redisClient, err := newRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		stores.Close()
		return nil, err
	}

	if redisClient != nil {
		stores.checks = append(stores.checks, health.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	recorder := metrics.NewPrometheus()

	services, err := InitializeServices(cfg, stores, recorder)
	if err != nil {
		closeRedis(redisClient)
		stores.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// rate limit buckets are keyed on ClientIP, which must not come from an untrusted header
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		closeRedis(redisClient)
		stores.Close()
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	server := &Server{
		config:   cfg,
		stores:   stores,
		services: services,
		redis:    redisClient,
		metrics:  recorder,
		router:   router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return server, nil
}

// releases every connection held by the server
func (s *Server) Close() {
	closeRedis(s.redis)
	s.stores.Close()
}

// connects to redis when a url is configured; nil means in-process rate limiting
func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		logger.Info("REDIS_URL not set, rate limit counters are kept in process")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func closeRedis(client *redis.Client) {
	if client != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
}
