package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Export
	ExportPath string

	// Category suggestions, one per line
	CategoriesFile string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		DataBackend:    getEnv("LEDGER_BACKEND", "sqlite"),
		SQLiteDBPath:   getEnv("LEDGER_DB_PATH", "finance.db"),
		ExportPath:     getEnv("LEDGER_EXPORT_PATH", "transactions.csv"),
		CategoriesFile: getEnv("LEDGER_CATEGORIES_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "warn"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if info, err := os.Stat(c.SQLiteDBPath); err == nil && info.IsDir() {
			errors = append(errors, fmt.Sprintf("SQLite database path '%s' is a directory", c.SQLiteDBPath))
		}
	}

	if c.ExportPath == "" {
		errors = append(errors, "export path cannot be empty")
	} else {
		dir := filepath.Dir(c.ExportPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("export directory '%s' does not exist", dir))
		}
	}

	if c.CategoriesFile != "" {
		if _, err := os.Stat(c.CategoriesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("categories file does not exist: %s", c.CategoriesFile))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
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
