package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabasePassword: "secret",
		BackfillStart:    "1969-01-01",
		BackfillEnd:      "2024-12-31",
		WindowTimeout:    2 * time.Minute,
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_MissingPassword(t *testing.T) {
	cfg := validConfig()
	cfg.DatabasePassword = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_PASSWORD")
}

func TestConfigValidate_BadDates(t *testing.T) {
	cfg := validConfig()
	cfg.BackfillStart = "July 1 2024"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.BackfillStart = "2024-12-31"
	cfg.BackfillEnd = "2024-01-01"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after")
}

func TestConfigValidate_WindowTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.WindowTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestBackfillRange(t *testing.T) {
	cfg := validConfig()
	start, end, err := cfg.BackfillRange()
	require.NoError(t, err)
	assert.Equal(t, 1969, start.Year())
	assert.Equal(t, time.December, end.Month())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseHost = "db.internal"
	cfg.DatabasePort = 5432
	cfg.DatabaseUser = "mlb_user"
	cfg.DatabaseName = "mlb_excitement"
	cfg.DatabaseSSLMode = "disable"

	dsn := cfg.DatabaseDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=mlb_excitement")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisAddr(t *testing.T) {
	cfg := validConfig()
	cfg.RedisHost = "localhost"
	cfg.RedisPort = 6379
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}
