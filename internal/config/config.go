package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the comparables service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	StaticDir       string   `yaml:"static_dir"`     // empty disables the static frontend
	RateLimitRPS    float64  `yaml:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	CORSOrigins     []string `yaml:"cors_origins"` // empty = any origin
}

// Supported database drivers.
const (
	DriverSQLite  = "sqlite"
	DriverPostGIS = "postgis"
	DriverRedis   = "redis"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // sqlite, postgis, redis (default: sqlite)
	DSN              string   `yaml:"dsn"`    // sqlite file path or postgres URL
	Addrs            []string `yaml:"addrs"`  // redis only
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	QueryTimeoutMS   int      `yaml:"query_timeout_ms"`
	MaxConns         int      `yaml:"max_conns"`
}

// IngestConfig holds batch load settings.
type IngestConfig struct {
	MaxBatchSize int    `yaml:"max_batch_size"`
	ZeroValues   string `yaml:"zero_values"` // missing (default) or value
}

// SearchConfig holds comparable search settings.
type SearchConfig struct {
	MaxResults int `yaml:"max_results"` // cap on returned comparables, 0 = no cap
}

// QueryTimeout returns the per-call store deadline.
func (d DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(d.QueryTimeoutMS) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 50 << 20
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = int(c.HTTP.RateLimitRPS) + 1
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.DSN == "" {
		c.Database.DSN = "comparables.db"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.QueryTimeoutMS <= 0 {
		c.Database.QueryTimeoutMS = 5000
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "cmp:"
	}
	if c.Ingest.MaxBatchSize <= 0 {
		c.Ingest.MaxBatchSize = 5000
	}
	if c.Ingest.ZeroValues == "" {
		c.Ingest.ZeroValues = "missing"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must not be negative, got %v", c.HTTP.RateLimitRPS)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostGIS:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of sqlite, postgis, redis, got %q", c.Database.Driver)
	}
	switch c.Ingest.ZeroValues {
	case "missing", "value":
		// ok
	default:
		return fmt.Errorf("ingest.zero_values must be \"missing\" or \"value\", got %q", c.Ingest.ZeroValues)
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must not be negative, got %d", c.Search.MaxResults)
	}
	return nil
}

// findConfigPath resolves <env>.yaml from $CONFIG_DIR, then ./config, then the
// config directory of the source checkout (for go test and go run).
func findConfigPath(env string) string {
	name := env + ".yaml"

	var dirs []string
	if d := os.Getenv("CONFIG_DIR"); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs, "config")
	if _, file, _, ok := runtime.Caller(0); ok {
		dirs = append(dirs, filepath.Join(filepath.Dir(file), "..", "..", "config"))
	}

	for _, d := range dirs {
		if path := filepath.Join(d, name); fileExists(path) {
			return path
		}
	}
	return filepath.Join("config", name)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
