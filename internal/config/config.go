// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxBodyBytes caps request bodies, uploads included, at 10 MiB.
const DefaultMaxBodyBytes = 10 << 20

// DefaultPort is the API listen port and the port in fuelctl's default URL.
const DefaultPort = "5000"

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "5000", where fuelctl looks by default.
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFile, when set, receives a copy of the JSON log in a size-rotated file.
	LogFile string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes limits request body size. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool
}

// ClientConfig holds the settings of the fuelctl command.
type ClientConfig struct {
	// APIURL is the base URL of the fleet log API, including the /api prefix.
	APIURL string

	// HTTPTimeout bounds each upload. Zero leaves the transport default.
	HTTPTimeout time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is read first; variables already set
// in the environment win.
// Returns an error listing any required variables that are not set or invalid.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:        getEnv("PORT", DefaultPort),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var problems []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL")
	}

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", strconv.Itoa(DefaultMaxBodyBytes)), 10, 64)
	if err != nil || maxBody < 0 {
		problems = append(problems, "MAX_BODY_BYTES (must be a non-negative integer)")
	}
	cfg.MaxBodyBytes = maxBody

	autoMigrate, err := strconv.ParseBool(getEnv("AUTO_MIGRATE", "false"))
	if err != nil {
		problems = append(problems, "AUTO_MIGRATE (must be a boolean)")
	}
	cfg.AutoMigrate = autoMigrate

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set or invalid: %s", strings.Join(problems, ", "))
	}

	return cfg, nil
}

// LoadClient reads the fuelctl settings. Nothing is required.
func LoadClient() (ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{
		APIURL: strings.TrimRight(getEnv("FLEETLOG_API_URL", "http://127.0.0.1:"+DefaultPort+"/api"), "/"),
	}
	if v := os.Getenv("FLEETLOG_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return ClientConfig{}, fmt.Errorf("FLEETLOG_HTTP_TIMEOUT: invalid duration %q", v)
		}
		cfg.HTTPTimeout = d
	}
	return cfg, nil
}

// loadDotEnv reads ./.env if present. A missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: read .env: %w", err)
	}
	return nil
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
