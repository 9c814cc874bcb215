package main

import (
	"context"
	"fmt"

	"codeberg.org/iburba/server/api/rest/health"
	"codeberg.org/iburba/server/iburba/accounts"
	"codeberg.org/iburba/server/iburba/tryon"
	"codeberg.org/iburba/server/iburba/usage"
	"codeberg.org/iburba/server/internal/auth"
	"codeberg.org/iburba/server/internal/config"
	"codeberg.org/iburba/server/internal/fashn"
	"codeberg.org/iburba/server/internal/imageprep"
	"codeberg.org/iburba/server/internal/logger"
	"codeberg.org/iburba/server/internal/metrics"
	"codeberg.org/iburba/server/internal/storage"
)

// opens the configured database and creates the account and usage tables
func InitializeStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores := &Stores{}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		stores.pool = pool
		stores.Accounts = accounts.NewRepository(pool)
		stores.Usage = usage.NewPostgresStore(pool)
		stores.checks = append(stores.checks, health.Check{Name: "database", Probe: pool.Ping})
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}

		stores.sqlite = db
		stores.Accounts = accounts.NewSQLiteStore(db)
		stores.Usage = usage.NewSQLiteStore(db)
		stores.checks = append(stores.checks, health.Check{Name: "database", Probe: db.PingContext})
	case config.DriverMemory:
		logger.Warn("using in-memory storage, accounts and usage are lost on restart")
		stores.Accounts = accounts.NewMemoryStore()
		stores.Usage = usage.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}

	if err := stores.Accounts.Initialize(ctx); err != nil {
		stores.Close()
		return nil, fmt.Errorf("failed to initialize accounts store: %w", err)
	}

	if err := stores.Usage.Initialize(ctx); err != nil {
		stores.Close()
		return nil, fmt.Errorf("failed to initialize usage store: %w", err)
	}

	logger.Info("storage initialized", "driver", cfg.DatabaseDriver)

	return stores, nil
}

// releases database handles
func (s *Stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}

	if s.sqlite != nil {
		s.sqlite.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
}

// creates and configures all domain services
func InitializeServices(cfg *config.Config, stores *Stores, rec metrics.Recorder) (*Services, error) {
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	gate := auth.NewGate(tokens, stores.Accounts)

	ledger := usage.NewLedger(stores.Usage, usage.Config{
		Limits: usage.Limits{
			Free:     cfg.Quota.FreeDaily,
			Pro:      cfg.Quota.ProDaily,
			Business: cfg.Quota.BusinessDaily,
		},
		SystemDailyCost: cfg.Quota.SystemDailyCost,
		Location:        cfg.QuotaLocation(),
	})

	orchestrator := tryon.NewOrchestrator(
		newFashnClient(cfg),
		ledger,
		imageprep.New(),
		rec,
		tryon.Config{
			PollInterval: cfg.Tryon.PollInterval,
			PollDeadline: cfg.Tryon.PollDeadline,
			CostPerJob:   cfg.Tryon.CostPerJob,
		},
	)

	return &Services{
		Tokens: tokens,
		Gate:   gate,
		Ledger: ledger,
		Tryon:  tryon.NewService(gate, orchestrator),
	}, nil
}

func newFashnClient(cfg *config.Config) fashn.Client {
	if cfg.Fashn.Mode == config.FashnModeStub {
		logger.Warn("FASHN_MODE=stub, try-on jobs return sample images")
		return fashn.NewDemoClient()
	}

	return fashn.NewHTTPClient(fashn.Config{
		APIKey:            cfg.Fashn.APIKey,
		BaseURL:           cfg.Fashn.BaseURL,
		SubmitTimeout:     cfg.Fashn.SubmitTimeout,
		PollTimeout:       cfg.Fashn.PollTimeout,
		RequestsPerSecond: cfg.Fashn.RequestsPerSecond,
	})
}
