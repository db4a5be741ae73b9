package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"stock-advisor-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "ALLOW_ORIGINS", "STORE_DB_PATH",
		"REDIS_ADDR", "MARKET_DATA_BASE_URL", "MARKET_DATA_TIMEOUT",
		"SIM_TRADING_DAYS", "SIM_NUM_PATHS", "SIM_SEED",
		"SCHEDULER_ENABLED", "POST_MARKET_UPDATE_TIME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:8080", "http://localhost:5173"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "finance_app.sqlite3", cfg.Store.DBPath)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.Cache.QuoteTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.ProfileTTL)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.MarketData.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.MarketData.Timeout)
	assert.Equal(t, 5, cfg.MarketData.RatePerSec)
	assert.Equal(t, 252, cfg.Simulation.TradingDays)
	assert.Equal(t, 10000, cfg.Simulation.NumPaths)
	assert.Equal(t, 4, cfg.Simulation.Workers)
	assert.Equal(t, int64(0), cfg.Simulation.Seed)
	assert.Equal(t, "2021-01-01", cfg.Simulation.DefaultStartDate)
	assert.Equal(t, "gemini-2.5-flash", cfg.Advisor.Model)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "16:30", cfg.Scheduler.RunAt)
	assert.Equal(t, 3, cfg.Scheduler.RetryCount)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.RetryInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOW_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SIM_NUM_PATHS", "500")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("MARKET_DATA_TIMEOUT", "3s")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("POST_MARKET_UPDATE_TIME", "17:45")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 500, cfg.Simulation.NumPaths)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, 3*time.Second, cfg.MarketData.Timeout)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "17:45", cfg.Scheduler.RunAt)
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "7070"
store:
  db_path: "from_yaml.sqlite3"
simulation:
  num_paths: 123
scheduler:
  run_at: "18:00"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("CONFIG_FILE", path)
	// 环境变量优先于YAML
	t.Setenv("PORT", "6060")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "6060", cfg.Server.Port)
	assert.Equal(t, "from_yaml.sqlite3", cfg.Store.DBPath)
	assert.Equal(t, 123, cfg.Simulation.NumPaths)
	assert.Equal(t, "18:00", cfg.Scheduler.RunAt)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}
