package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"invoicer/internal/logger"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Document store
	StoreBackend string        `validate:"oneof=firestore postgres sqlite"`
	SQLitePath   string        `validate:"required_if=StoreBackend sqlite"`
	DatabaseDSN  string        `validate:"required_if=StoreBackend postgres"`
	StoreTimeout time.Duration `validate:"gt=0"`

	// Google Cloud Configuration
	GoogleCloudProject           string `validate:"required_if=StoreBackend firestore"`
	FirestoreCollection          string `validate:"required"`
	GoogleCredentialsJSON        string
	GoogleApplicationCredentials string

	// Google Sheets Configuration
	GoogleSheetURL       string `validate:"omitempty,url"`
	GoogleSheetWorksheet string `validate:"required"`

	// Export
	ExportTimeout time.Duration `validate:"gt=0"`

	// Preview server
	ServerAddr string `validate:"required"`

	// Logging Configuration
	LogLevel      string `validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat     string `validate:"oneof=json console"`
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	storeTimeout, err := getDuration("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	exportTimeout, err := getDuration("EXPORT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	config := &Config{
		StoreBackend:                 strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		SQLitePath:                   getEnv("SQLITE_PATH", "invoices.db"),
		DatabaseDSN:                  getEnv("DATABASE_DSN", ""),
		StoreTimeout:                 storeTimeout,
		GoogleCloudProject:           getEnv("GOOGLE_CLOUD_PROJECT", ""),
		FirestoreCollection:          getEnv("FIRESTORE_COLLECTION", "invoices"),
		GoogleCredentialsJSON:        getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleApplicationCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleSheetURL:               getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:         getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		ExportTimeout:                exportTimeout,
		ServerAddr:                   getEnv("SERVER_ADDR", "127.0.0.1:8080"),
		LogLevel:                     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:                    strings.ToLower(getEnv("LOG_FORMAT", "console")),
		LogTimeFormat:                getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:                    getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}
