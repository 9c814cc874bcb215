package config

import "time"

// storage backends selectable through DATABASE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// remote try-on client strategies selectable through FASHN_MODE
const (
	FashnModeLive = "live"
	FashnModeStub = "stub"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"30m"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"./data/iburba.db"`
	RedisURL       string `env:"REDIS_URL"`

	Fashn  FashnConfig
	Tryon  TryonConfig
	Quota  QuotaConfig
	Server ServerConfig
}

// settings for the remote try-on vendor
type FashnConfig struct {
	Mode              string        `env:"FASHN_MODE" envDefault:"live"`
	APIKey            string        `env:"FASHN_API_KEY"`
	BaseURL           string        `env:"FASHN_BASE_URL" envDefault:"https://api.fashn.ai/v1"`
	SubmitTimeout     time.Duration `env:"FASHN_SUBMIT_TIMEOUT" envDefault:"30s"`
	PollTimeout       time.Duration `env:"FASHN_POLL_TIMEOUT" envDefault:"10s"`
	RequestsPerSecond float64       `env:"FASHN_REQUESTS_PER_SECOND" envDefault:"10"`
}

// settings for the job poll loop and billing
type TryonConfig struct {
	PollInterval time.Duration `env:"TRYON_POLL_INTERVAL" envDefault:"3s"`
	PollDeadline time.Duration `env:"TRYON_POLL_DEADLINE" envDefault:"60s"`
	CostPerJob   float64       `env:"TRYON_COST_PER_JOB" envDefault:"0.075"`
}

// per-tier daily ceilings (-1 means unlimited) and the system-wide cost ceiling
type QuotaConfig struct {
	FreeDaily       int     `env:"QUOTA_FREE_DAILY" envDefault:"3"`
	ProDaily        int     `env:"QUOTA_PRO_DAILY" envDefault:"50"`
	BusinessDaily   int     `env:"QUOTA_BUSINESS_DAILY" envDefault:"-1"`
	SystemDailyCost float64 `env:"QUOTA_SYSTEM_DAILY_COST" envDefault:"50.0"`
	Timezone        string  `env:"QUOTA_TIMEZONE" envDefault:"UTC"`
}

// settings for the HTTP surface
type ServerConfig struct {
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimit           string   `env:"RATE_LIMIT" envDefault:"60-M"`
	MaxRequestBodyBytes int64    `env:"MAX_REQUEST_BODY_BYTES" envDefault:"20971520"`

	// proxies whose X-Forwarded-For is honoured; empty means the socket address is the client
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}
