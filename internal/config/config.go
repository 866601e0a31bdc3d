// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shelfward/shelfward/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Catalog CatalogConfig
	Images  ImagesConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// CatalogConfig holds catalog storage and query defaults.
type CatalogConfig struct {
	// DataPath is the base directory for the catalog database and covers.
	DataPath string
	// DefaultSort is the sort order new queries start with.
	// This replaces ambient preference state: it travels explicitly into Query construction.
	DefaultSort domain.SortOrder
	// PageSize is the default page size for paged retrieval.
	PageSize int
}

// ImagesConfig holds cover image storage configuration.
type ImagesConfig struct {
	// CoversPath is the directory for stored cover files (default: {data}/covers).
	CoversPath string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for catalog storage")
	coversPath := flag.String("covers-path", "", "Path for stored cover images")
	defaultSort := flag.String("default-sort", "", "Default sort order (title, date-added)")
	pageSize := flag.String("page-size", "", "Default page size (default: 100)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
			PageSize: getIntConfigValue(*pageSize, "PAGE_SIZE", 100),
		},
		Images: ImagesConfig{
			CoversPath: getConfigValue(*coversPath, "COVERS_PATH", ""),
		},
	}

	// Parse the default sort order.
	sortStr := getConfigValue(*defaultSort, "DEFAULT_SORT", "title")
	switch strings.ToLower(sortStr) {
	case "title":
		cfg.Catalog.DefaultSort = domain.SortByTitle
	case "date-added", "dateadded":
		cfg.Catalog.DefaultSort = domain.SortByDateAdded
	default:
		return nil, fmt.Errorf("invalid default sort %q (must be title or date-added)", sortStr)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if err := cfg.expandCoversPath(); err != nil {
		return nil, fmt.Errorf("invalid covers path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Catalog.DataPath == "" {
		return errors.New("catalog data path cannot be empty after expansion")
	}

	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("invalid page size: %d", c.Catalog.PageSize)
	}

	return nil
}

// DatabasePath returns the path of the catalog SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Catalog.DataPath, "catalog.db")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Shelfward.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Shelfward")

	expanded, err := expandPath(c.Catalog.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Catalog.DataPath = expanded
	return nil
}

// expandCoversPath expands ~ and makes the path absolute.
// Defaults to {data}/covers if not specified.
func (c *Config) expandCoversPath() error {
	defaultPath := filepath.Join(c.Catalog.DataPath, "covers")

	expanded, err := expandPath(c.Images.CoversPath, defaultPath)
	if err != nil {
		return err
	}
	c.Images.CoversPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
