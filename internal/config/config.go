package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the service.
type Config struct {
	// Testing disables error masking so panics surface in problem details.
	Testing bool `env:"APP_TESTING" envDefault:"false"`

	Port     int    `env:"PORT"      envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	DocsPath       string `env:"DOCS_PATH"       envDefault:"/api-docs"`

	Timeouts TimeoutConfig
}

// TimeoutConfig holds HTTP server and shutdown timeouts.
type TimeoutConfig struct {
	Read       time.Duration `env:"READ_TIMEOUT"        envDefault:"5s"`
	ReadHeader time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"2s"`
	Write      time.Duration `env:"WRITE_TIMEOUT"       envDefault:"10s"`
	Idle       time.Duration `env:"IDLE_TIMEOUT"        envDefault:"60s"`
	Shutdown   time.Duration `env:"SHUTDOWN_TIMEOUT"    envDefault:"10s"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load reads an optional .env file and then parses the environment.
// Variables already present in the environment take precedence over the file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		Port:           8080,
		LogLevel:       "info",
		MetricsEnabled: true,
		DocsPath:       "/api-docs",
		Timeouts: TimeoutConfig{
			Read:       5 * time.Second,
			ReadHeader: 2 * time.Second,
			Write:      10 * time.Second,
			Idle:       60 * time.Second,
			Shutdown:   10 * time.Second,
		},
	}
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	if !strings.HasPrefix(c.DocsPath, "/") {
		return fmt.Errorf("docs path must start with '/': %q", c.DocsPath)
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read", c.Timeouts.Read},
		{"read header", c.Timeouts.ReadHeader},
		{"write", c.Timeouts.Write},
		{"idle", c.Timeouts.Idle},
		{"shutdown", c.Timeouts.Shutdown},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s timeout must be positive, got %s", t.name, t.value)
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
