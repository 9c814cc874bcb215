package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// checks required values and cross-field constraints
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH environment variable is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", c.DatabaseDriver)
	}

	switch c.Fashn.Mode {
	case FashnModeLive:
		if c.Fashn.APIKey == "" {
			return fmt.Errorf("FASHN_API_KEY environment variable is required")
		}
	case FashnModeStub:
	default:
		return fmt.Errorf("unsupported FASHN_MODE: %s", c.Fashn.Mode)
	}

	if c.Tryon.PollInterval <= 0 {
		return fmt.Errorf("TRYON_POLL_INTERVAL must be positive")
	}

	if c.Tryon.PollDeadline < c.Tryon.PollInterval {
		return fmt.Errorf("TRYON_POLL_DEADLINE must be at least TRYON_POLL_INTERVAL")
	}

	if c.Tryon.CostPerJob < 0 {
		return fmt.Errorf("TRYON_COST_PER_JOB must not be negative")
	}

	if c.Quota.SystemDailyCost <= 0 {
		return fmt.Errorf("QUOTA_SYSTEM_DAILY_COST must be positive")
	}

	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		return fmt.Errorf("invalid QUOTA_TIMEZONE %q: %w", c.Quota.Timezone, err)
	}

	return nil
}

// returns the location used to decide the calendar day for usage records
func (c *Config) QuotaLocation() *time.Location {
	loc, err := time.LoadLocation(c.Quota.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// worst-case wall time of one try-on: the submit plus every poll running to its
// own timeout before the interval wait
func (c *Config) MaxJobDuration() time.Duration {
	polls := c.Tryon.PollDeadline / c.Tryon.PollInterval
	if c.Tryon.PollDeadline%c.Tryon.PollInterval != 0 {
		polls++
	}
	return c.Fashn.SubmitTimeout + polls*(c.Fashn.PollTimeout+c.Tryon.PollInterval)
}
