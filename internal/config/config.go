package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the landminer client.
type Config struct {
	APIURL       string `yaml:"api_url" validate:"required,url"`
	Token        string `yaml:"token"`
	TimeoutMs    int    `yaml:"timeout_ms" validate:"gt=0"`
	MaxRetries   int    `yaml:"max_retries" validate:"gte=0,lte=5"`
	DBPath       string `yaml:"db" validate:"required"`
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat    string `yaml:"log_format" validate:"oneof=text json"`
	LogFile      string `yaml:"log_file"`
	LogCalls     bool   `yaml:"log_calls"`
	CacheTTLSec  int    `yaml:"cache_ttl_sec" validate:"gte=0"`
	MetricsAddr  string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	PollInterval int    `yaml:"poll_interval_sec" validate:"gte=5"`
}

// MinPollSec is the shortest dashboard poll; shorter settings are raised to it.
const MinPollSec = 5

// DefaultDataDir returns ~/.landminer, or the working directory when the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".landminer"
	}
	return filepath.Join(home, ".landminer")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dir := DefaultDataDir()
	return Config{
		APIURL:       "http://localhost:8000",
		TimeoutMs:    10000,
		MaxRetries:   1,
		DBPath:       filepath.Join(dir, "landminer.db"),
		LogLevel:     "info",
		LogFormat:    "text",
		LogFile:      filepath.Join(dir, "landminer.log"),
		CacheTTLSec:  60,
		PollInterval: 30,
	}
}

// Timeout returns the per-call API timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CacheTTL returns the lands/tools cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Poll returns the dashboard refresh interval.
func (c Config) Poll() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// LoadConfig builds the configuration in three layers: defaults, the YAML file
// named by LANDMINER_CONFIG (or ~/.landminer/config.yaml), then environment
// variables. A .env file in the working directory is loaded first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := getEnv("LANDMINER_CONFIG", filepath.Join(DefaultDataDir(), "config.yaml"))
	if err := loadFile(path, &cfg); err != nil {
		return Config{}, err
	}

	applyEnv(&cfg)
	cfg.PollInterval = max(cfg.PollInterval, MinPollSec)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LANDMINER_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("LANDMINER_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("LANDMINER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("LANDMINER_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("LANDMINER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LANDMINER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LANDMINER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("LANDMINER_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("LANDMINER_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LANDMINER_CACHE_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheTTLSec = n
		}
	}
	if v := os.Getenv("LANDMINER_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LANDMINER_POLL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = n
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags on cfg and reports the first failing field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
