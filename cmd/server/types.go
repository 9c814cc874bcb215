package main

import (
	"database/sql"

	"codeberg.org/iburba/server/api/rest/health"
	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/iburba/tryon"
	"codeberg.org/iburba/server/iburba/usage"
	"codeberg.org/iburba/server/internal/auth"
	"codeberg.org/iburba/server/internal/config"
	"codeberg.org/iburba/server/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	stores   *Stores
	services *Services
	redis    *redis.Client
	metrics  *metrics.PrometheusRecorder
	router   *gin.Engine
}

// holds the selected storage backend; exactly one of pool and sqlite is set unless the driver is memory
type Stores struct {
	Accounts accounts.Store
	Usage    usage.Store

	pool   *pgxpool.Pool
	sqlite *sql.DB
	checks []health.Check
}

// holds the domain services built on top of the stores
type Services struct {
	Tokens *auth.TokenManager
	Gate   *auth.Gate
	Ledger *usage.Ledger
	Tryon  *tryon.Service
}
