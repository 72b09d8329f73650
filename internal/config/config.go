package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// Backends lists the accepted values of LEDGER_BACKEND.
var Backends = []string{"json", "sqlite", "memory"}

var logLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	// Storage
	Backend    string
	DataDir    string
	SQLitePath string

	// Logging
	LogLevel string

	// AMQP (events are disabled when AMQPURL is empty)
	AMQPURL      string
	AMQPExchange string
}

// LoadEnvFiles loads variables from the given dotenv files (".env" when none
// are given) into the process environment. Missing files are skipped and
// variables that are already set are never overridden.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Backend:    strings.ToLower(getEnv("LEDGER_BACKEND", "json")),
		DataDir:    getEnv("LEDGER_DATA_DIR", "./storage"),
		SQLitePath: getEnv("LEDGER_SQLITE_PATH", "./data/ledger.db"),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(Backends, c.Backend) {
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, Backends))
	}
	if c.Backend == "json" && c.DataDir == "" {
		errors = append(errors, "data directory cannot be empty when using json backend")
	}
	if c.Backend == "sqlite" && c.SQLitePath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
