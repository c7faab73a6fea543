package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the configuration file is looked up when CONFIG_PATH is unset.
const DefaultPath = "config/config.yml"

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	EnablePprof  bool   `yaml:"enablePprof"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	APIPlan              string `yaml:"apiPlan"` // demo or pro, selects the API key header
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute"`
	VsCurrency           string `yaml:"vsCurrency"`
}

// MarketConfig holds polling settings of the market views.
type MarketConfig struct {
	ListIntervalSeconds     int    `yaml:"listIntervalSeconds"`
	OverviewIntervalSeconds int    `yaml:"overviewIntervalSeconds"`
	FeaturedCount           int    `yaml:"featuredCount"`
	IdleTimeoutSeconds      int    `yaml:"idleTimeoutSeconds"`
	DefaultTimeRange        string `yaml:"defaultTimeRange"`
}

// StoreConfig selects where the portfolio is persisted.
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	Key       string `yaml:"key"`
	RedisAddr string `yaml:"redisAddr"`
	RedisDB   int    `yaml:"redisDB"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Market    MarketConfig    `yaml:"market"`
	Store     StoreConfig     `yaml:"store"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file is not an error: defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
		logrus.Infof("Loaded configuration from %s", path)
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	loadDotenv()
	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with only defaults applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %q backend", StoreBackendFile)
		}
	case StoreBackendMemory:
	case StoreBackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redisAddr is required for the %q backend", StoreBackendRedis)
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	switch c.CoinGecko.APIPlan {
	case "demo", "pro":
	default:
		return fmt.Errorf("unknown coingecko.apiPlan %q (expected demo or pro)", c.CoinGecko.APIPlan)
	}
	return nil
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	paths := []string{".env"}
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		paths = []string{envFile}
	}
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Warnf("Failed to load %s: %v", strings.Join(paths, ","), err)
	}
}

func applyEnv(cfg *Config) {
	setString := func(env string, dst *string) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
	setString("COINGECKO_API_KEY", &cfg.CoinGecko.APIKey)
	setString("COINGECKO_API_PLAN", &cfg.CoinGecko.APIPlan)
	setString("COINGECKO_BASE_URL", &cfg.CoinGecko.BaseURL)
	setString("CRYPTODASH_STORE_BACKEND", &cfg.Store.Backend)
	setString("CRYPTODASH_STORE_PATH", &cfg.Store.Path)
	setString("CRYPTODASH_REDIS_ADDR", &cfg.Store.RedisAddr)
	setString("CRYPTODASH_PORT", &cfg.Server.Port)
	setString("CRYPTODASH_LOG_LEVEL", &cfg.Logging.Level)

	if v := os.Getenv("CRYPTODASH_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			logrus.Warnf("Ignoring CRYPTODASH_REDIS_DB=%q: %v", v, err)
		} else {
			cfg.Store.RedisDB = db
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	cfg.Server.Port = strings.TrimPrefix(cfg.Server.Port, ":")
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
		logrus.Debugf("coingecko.baseURL not set, defaulting to %s", cfg.CoinGecko.BaseURL)
	}
	cfg.CoinGecko.BaseURL = strings.TrimRight(cfg.CoinGecko.BaseURL, "/")
	if cfg.CoinGecko.APIPlan == "" {
		cfg.CoinGecko.APIPlan = "demo"
	}
	if cfg.CoinGecko.RequestTimeoutMillis <= 0 {
		cfg.CoinGecko.RequestTimeoutMillis = 10000
	}
	if cfg.CoinGecko.RequestsPerMinute <= 0 {
		cfg.CoinGecko.RequestsPerMinute = 30 // public API limit
		logrus.Debugf("coingecko.requestsPerMinute not set, defaulting to %d", cfg.CoinGecko.RequestsPerMinute)
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}

	if cfg.Market.ListIntervalSeconds <= 0 {
		cfg.Market.ListIntervalSeconds = 60
	}
	if cfg.Market.OverviewIntervalSeconds <= 0 {
		cfg.Market.OverviewIntervalSeconds = 120
	}
	if cfg.Market.FeaturedCount <= 0 {
		cfg.Market.FeaturedCount = 6
	}
	if cfg.Market.IdleTimeoutSeconds <= 0 {
		cfg.Market.IdleTimeoutSeconds = 300
	}
	if cfg.Market.DefaultTimeRange == "" {
		cfg.Market.DefaultTimeRange = "7"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreBackendFile
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/portfolio.json"
	}
	if cfg.Store.Key == "" {
		cfg.Store.Key = "cryptoPortfolio"
	}
}
