// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the warehouse service.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. When empty the service
	// runs on the in-memory store and skips migrations.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// RawDataPath points at the raw_rides CSV. When empty the service runs
	// on the built-in deterministic sample source.
	RawDataPath string

	// SampleSize is the number of generated records when RawDataPath is
	// empty. Defaults to 100.
	SampleSize int

	// EvaluatedAt is the evaluation timestamp for age derivation. Every
	// derived value is a pure function of (raw input, EvaluatedAt), so
	// pinning EVALUATION_DATE makes a run fully reproducible.
	// Defaults to midnight UTC of the current day.
	EvaluatedAt time.Time

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		RawDataPath: os.Getenv("RAW_DATA_PATH"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	sampleSize := getEnv("SAMPLE_SIZE", "100")
	n, err := strconv.Atoi(sampleSize)
	if err != nil || n < 1 {
		return Config{}, fmt.Errorf("SAMPLE_SIZE %q is not a positive integer", sampleSize)
	}
	cfg.SampleSize = n

	if raw := os.Getenv("EVALUATION_DATE"); raw != "" {
		ts, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return Config{}, fmt.Errorf("EVALUATION_DATE %q is not a YYYY-MM-DD date", raw)
		}
		cfg.EvaluatedAt = ts
	} else {
		now := time.Now().UTC()
		cfg.EvaluatedAt = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
