// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"go-quality-pipeline/pkg/utils"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// HTTP
	HTTPAddr    string
	CORSOrigins []string

	// Database
	DBDriver string
	DBDSN    string

	// Runs
	SampleSize      int
	IngestRecords   int
	ScoringStrategy string
	RunTimeout      time.Duration
	// DefinitionsFile, when set, replaces the built-in sample definitions
	DefinitionsFile string

	// Observability
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// Load reads envFiles into the process environment, without overriding
// variables already set, and then builds the configuration. Missing env
// files are skipped.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return LoadFrom(os.Getenv)
}

// LoadFrom builds the configuration from getenv
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := envReader(getenv)
	cfg := &Config{
		HTTPAddr:        env.str("HTTP_ADDR", ":8001"),
		CORSOrigins:     env.list("CORS_ORIGINS", []string{"*"}),
		DBDriver:        env.str("DB_DRIVER", "sqlite"),
		DBDSN:           env.str("DB_DSN", "pipeline.db"),
		SampleSize:      env.int("SAMPLE_SIZE", 50),
		IngestRecords:   env.int("INGEST_RECORDS", 100),
		ScoringStrategy: env.str("SCORING_STRATEGY", "unweighted"),
		RunTimeout:      env.duration("RUN_TIMEOUT", 5*time.Minute),
		DefinitionsFile: env.str("DEFINITIONS_FILE", ""),
		LogLevel:        env.str("LOG_LEVEL", "info"),
		LogFormat:       env.str("LOG_FORMAT", "json"),
		MetricsEnabled:  env.bool("METRICS_ENABLED", true),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.SampleSize <= 0 {
		return errors.New("SAMPLE_SIZE must be positive")
	}
	if c.IngestRecords <= 0 {
		return errors.New("INGEST_RECORDS must be positive")
	}
	switch c.ScoringStrategy {
	case "unweighted", "severity":
	default:
		return fmt.Errorf("SCORING_STRATEGY must be unweighted or severity, got %q", c.ScoringStrategy)
	}
	if c.RunTimeout < 0 {
		return errors.New("RUN_TIMEOUT cannot be negative")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// Helper functions for environment variables
type envReader func(string) string

func (e envReader) str(key, def string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return def
}

func (e envReader) int(key string, def int) int {
	v, err := strconv.Atoi(e.str(key, ""))
	if err != nil {
		return def
	}
	return v
}

func (e envReader) bool(key string, def bool) bool {
	v, err := strconv.ParseBool(e.str(key, ""))
	if err != nil {
		return def
	}
	return v
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	// "0" disables the limit
	if raw == "0" {
		return 0
	}
	return utils.ParseDuration(raw, def)
}

func (e envReader) list(key string, def []string) []string {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
