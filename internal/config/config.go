package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// MLB Stats API
	StatsAPIBaseURL string        `envconfig:"STATSAPI_BASE_URL" default:"https://statsapi.mlb.com/api/v1"`
	SavantBaseURL   string        `envconfig:"SAVANT_BASE_URL" default:"https://baseballsavant.mlb.com"`
	StatsAPITimeout time.Duration `envconfig:"STATSAPI_TIMEOUT" default:"30s"`

	// Ingestion
	BackfillStart string        `envconfig:"BACKFILL_START" default:"1969-01-01"`
	BackfillEnd   string        `envconfig:"BACKFILL_END" default:"2024-12-31"`
	WindowTimeout time.Duration `envconfig:"WINDOW_TIMEOUT" default:"2m"`
	LoadDatabase  bool          `envconfig:"LOAD_DATABASE" default:"false"`

	// Dataset output
	DatasetCSVPath      string `envconfig:"DATASET_CSV_PATH" default:"all_games_data.csv"`
	DatasetSnapshotPath string `envconfig:"DATASET_SNAPSHOT_PATH" default:"all_games_data.gob"`
	MissedLedgerPath    string `envconfig:"MISSED_LEDGER_PATH" default:"missed_dates.json"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"mlb_excitement"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"mlb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	DailyIngestCron string `envconfig:"DAILY_INGEST_CRON" default:"0 6 * * *"`

	// Caching TTL (in seconds)
	CacheTTLTeams    int `envconfig:"CACHE_TTL_TEAMS" default:"86400"` // 24 hours
	CacheTTLSchedule int `envconfig:"CACHE_TTL_SCHEDULE" default:"3600"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	start, end, err := c.BackfillRange()
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("BACKFILL_START %s is after BACKFILL_END %s", c.BackfillStart, c.BackfillEnd)
	}

	if c.WindowTimeout <= 0 {
		return fmt.Errorf("WINDOW_TIMEOUT must be positive")
	}

	return nil
}

// BackfillRange parses the configured backfill start and end dates.
func (c *Config) BackfillRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.BackfillStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid BACKFILL_START %q: %w", c.BackfillStart, err)
	}
	end, err := time.Parse("2006-01-02", c.BackfillEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid BACKFILL_END %q: %w", c.BackfillEnd, err)
	}
	return start, end, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
