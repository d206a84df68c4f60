// Package common provides shared utilities for the RaymondsIndex client
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultAPIBaseURL is used when neither the config file nor RAYMONDS_API_URL set a backend.
const DefaultAPIBaseURL = "http://localhost:8000/api"

// Config holds all configuration for the client and dashboard
type Config struct {
	Environment string        `toml:"environment"`
	API         APIConfig     `toml:"api"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Query       QueryConfig   `toml:"query"`
	Compare     CompareConfig `toml:"compare"`
	Stepper     StepperConfig `toml:"stepper"`
	Logging     LoggingConfig `toml:"logging"`
}

// APIConfig selects the scoring/auth backend
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"` // requests per second
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ServerConfig holds dashboard HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds durable client storage configuration.
// Backend is one of "file", "memory" or "surrealdb".
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`      // file backend directory
	Address   string `toml:"address"`   // surrealdb ws address
	Namespace string `toml:"namespace"` // surrealdb namespace
	Database  string `toml:"database"`  // surrealdb database
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// QueryConfig holds fetch cache configuration
type QueryConfig struct {
	StaleTime string `toml:"stale_time"`
}

// GetStaleTime parses and returns the cache stale window
func (c *QueryConfig) GetStaleTime() time.Duration {
	d, err := time.ParseDuration(c.StaleTime)
	if err != nil {
		return FreshnessQuery
	}
	return d
}

// CompareConfig holds comparison selection configuration
type CompareConfig struct {
	MaxItems int `toml:"max_items"`
}

// StepperConfig holds the ranking score-range stepper configuration
type StepperConfig struct {
	Min            float64 `toml:"min"`
	Max            float64 `toml:"max"`
	Step           float64 `toml:"step"`
	Delay          string  `toml:"delay"`
	Interval       string  `toml:"interval"`
	AccelIncrement float64 `toml:"accel_increment"`
	MaxAccel       float64 `toml:"max_accel"`
}

// GetDelay parses the press-and-hold delay
func (c *StepperConfig) GetDelay() time.Duration {
	d, err := time.ParseDuration(c.Delay)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// GetInterval parses the repeat interval
func (c *StepperConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 80 * time.Millisecond
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   "30s",
			RateLimit: 10,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3000,
		},
		Storage: StorageConfig{
			Backend:   "file",
			Path:      "data/session",
			Namespace: "raymonds",
			Database:  "client",
		},
		Query: QueryConfig{
			StaleTime: "5m",
		},
		Compare: CompareConfig{
			MaxItems: 4,
		},
		Stepper: StepperConfig{
			Min:            0,
			Max:            120,
			Step:           1,
			Delay:          "300ms",
			Interval:       "80ms",
			AccelIncrement: 0.5,
			MaxAccel:       5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/raymonds.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalize(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RAYMONDS_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("RAYMONDS_API_URL"); url != "" {
		config.API.BaseURL = url
	}

	if host := os.Getenv("RAYMONDS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("RAYMONDS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("RAYMONDS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("RAYMONDS_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "session")
	}

	if backend := os.Getenv("RAYMONDS_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}
}

// normalize repairs values that would otherwise break the client at runtime.
func normalize(config *Config) {
	config.API.BaseURL = strings.TrimRight(strings.TrimSpace(config.API.BaseURL), "/")
	if config.API.BaseURL == "" {
		config.API.BaseURL = DefaultAPIBaseURL
	}
	if config.API.RateLimit <= 0 {
		config.API.RateLimit = 10
	}
	if config.Compare.MaxItems < 2 {
		config.Compare.MaxItems = 2
	}
	if config.Stepper.Step <= 0 {
		config.Stepper.Step = 1
	}
	if config.Stepper.Max-config.Stepper.Min < config.Stepper.Step {
		config.Stepper.Min, config.Stepper.Max = 0, 120
	}
	if config.Stepper.MaxAccel < 1 {
		config.Stepper.MaxAccel = 1
	}
	switch config.Storage.Backend {
	case "file", "memory", "surrealdb":
	default:
		config.Storage.Backend = "file"
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveConfigPath picks the config file: explicit path, RAYMONDS_CONFIG,
// raymonds.toml next to the binary, then config/raymonds.toml.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("RAYMONDS_CONFIG"); env != "" {
		return env
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "raymonds.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "config/raymonds.toml"
}
