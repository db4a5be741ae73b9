package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 服务全局配置
type Config struct {
	// HTTP服务配置
	Server struct {
		Port         string   `yaml:"port"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"server"`

	// 用户/自选股存储配置
	Store struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"store"`

	// 缓存配置
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		QuoteTTL      time.Duration `yaml:"quote_ttl"`   // 行情类缓存时长
		ProfileTTL    time.Duration `yaml:"profile_ttl"` // 公司概况缓存时长
	} `yaml:"cache"`

	// 行情数据源配置
	MarketData struct {
		BaseURL    string        `yaml:"base_url"`
		Timeout    time.Duration `yaml:"timeout"`
		RatePerSec int           `yaml:"rate_per_sec"` // 对外请求限速
		RateBurst  int           `yaml:"rate_burst"`
	} `yaml:"market_data"`

	// 蒙特卡洛模拟配置
	Simulation struct {
		TradingDays      int    `yaml:"trading_days"`
		NumPaths         int    `yaml:"num_paths"`
		Workers          int    `yaml:"workers"`
		Seed             int64  `yaml:"seed"` // 0表示按时间播种
		MinObservations  int    `yaml:"min_observations"`
		DefaultStartDate string `yaml:"default_start_date"`
	} `yaml:"simulation"`

	// AI顾问配置
	Advisor struct {
		Model       string `yaml:"model"`
		StatsDBPath string `yaml:"stats_db_path"`
	} `yaml:"advisor"`

	// 收盘后自选股刷新配置
	Scheduler struct {
		Enabled       bool          `yaml:"enabled"`
		RunAt         string        `yaml:"run_at"` // "HH:MM"
		RetryCount    int           `yaml:"retry_count"`
		RetryInterval time.Duration `yaml:"retry_interval"`
	} `yaml:"scheduler"`
}

// Load 加载配置：.env文件 -> 可选的YAML文件 -> 环境变量覆盖 -> 默认值
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Port = getEnvString("PORT", c.Server.Port)
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		c.Server.AllowOrigins = origins
	}

	c.Store.DBPath = getEnvString("STORE_DB_PATH", c.Store.DBPath)

	c.Cache.RedisAddr = getEnvString("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnvString("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("REDIS_DB", c.Cache.RedisDB)
	c.Cache.QuoteTTL = getEnvDuration("CACHE_QUOTE_TTL", c.Cache.QuoteTTL)
	c.Cache.ProfileTTL = getEnvDuration("CACHE_PROFILE_TTL", c.Cache.ProfileTTL)

	c.MarketData.BaseURL = getEnvString("MARKET_DATA_BASE_URL", c.MarketData.BaseURL)
	c.MarketData.Timeout = getEnvDuration("MARKET_DATA_TIMEOUT", c.MarketData.Timeout)
	c.MarketData.RatePerSec = getEnvInt("MARKET_DATA_RATE_PER_SEC", c.MarketData.RatePerSec)
	c.MarketData.RateBurst = getEnvInt("MARKET_DATA_RATE_BURST", c.MarketData.RateBurst)

	c.Simulation.TradingDays = getEnvInt("SIM_TRADING_DAYS", c.Simulation.TradingDays)
	c.Simulation.NumPaths = getEnvInt("SIM_NUM_PATHS", c.Simulation.NumPaths)
	c.Simulation.Workers = getEnvInt("SIM_WORKERS", c.Simulation.Workers)
	c.Simulation.Seed = getEnvInt64("SIM_SEED", c.Simulation.Seed)
	c.Simulation.MinObservations = getEnvInt("SIM_MIN_OBSERVATIONS", c.Simulation.MinObservations)
	c.Simulation.DefaultStartDate = getEnvString("SIM_DEFAULT_START_DATE", c.Simulation.DefaultStartDate)

	c.Advisor.Model = getEnvString("LLM_MODEL", c.Advisor.Model)
	c.Advisor.StatsDBPath = getEnvString("MARKET_STATS_PATH", c.Advisor.StatsDBPath)

	c.Scheduler.Enabled = getEnvBool("SCHEDULER_ENABLED", c.Scheduler.Enabled)
	c.Scheduler.RunAt = getEnvString("POST_MARKET_UPDATE_TIME", c.Scheduler.RunAt)
	c.Scheduler.RetryCount = getEnvInt("SCHEDULER_RETRY_COUNT", c.Scheduler.RetryCount)
	c.Scheduler.RetryInterval = getEnvDuration("SCHEDULER_RETRY_INTERVAL", c.Scheduler.RetryInterval)
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:8080", "http://localhost:5173"}
	}
	if c.Store.DBPath == "" {
		c.Store.DBPath = "finance_app.sqlite3"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.QuoteTTL <= 0 {
		c.Cache.QuoteTTL = 30 * time.Second
	}
	if c.Cache.ProfileTTL <= 0 {
		c.Cache.ProfileTTL = 24 * time.Hour
	}
	if c.MarketData.BaseURL == "" {
		c.MarketData.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.MarketData.Timeout <= 0 {
		c.MarketData.Timeout = 15 * time.Second
	}
	if c.MarketData.RatePerSec <= 0 {
		c.MarketData.RatePerSec = 5
	}
	if c.MarketData.RateBurst <= 0 {
		c.MarketData.RateBurst = 5
	}
	if c.Simulation.TradingDays <= 0 {
		c.Simulation.TradingDays = 252
	}
	if c.Simulation.NumPaths <= 0 {
		c.Simulation.NumPaths = 10000
	}
	if c.Simulation.Workers <= 0 {
		c.Simulation.Workers = 4
	}
	if c.Simulation.DefaultStartDate == "" {
		c.Simulation.DefaultStartDate = "2021-01-01"
	}
	if c.Advisor.Model == "" {
		c.Advisor.Model = "gemini-2.5-flash"
	}
	if c.Scheduler.RunAt == "" {
		c.Scheduler.RunAt = "16:30"
	}
	if c.Scheduler.RetryCount <= 0 {
		c.Scheduler.RetryCount = 3
	}
	if c.Scheduler.RetryInterval <= 0 {
		c.Scheduler.RetryInterval = 10 * time.Minute
	}
}

// 辅助函数
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
