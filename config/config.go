// ABOUTME: Configuration loaded from the XDG config file, .env and DEALFLOW_* variables
// ABOUTME: Later sources override earlier ones; CLI flags override all of them in main
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// AppName names the XDG config and data directories.
	AppName = "dealflow"

	// ConfigFileName is the JSON file under the XDG config directory.
	ConfigFileName = "config.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DEALFLOW"
)

// Config holds user settings. The API key is never written to disk.
type Config struct {
	Backend     string `json:"backend,omitempty" envconfig:"BACKEND"`
	DBPath      string `json:"db_path,omitempty" envconfig:"DB_PATH"`
	Classifier  string `json:"classifier,omitempty" envconfig:"CLASSIFIER"`
	GeminiModel string `json:"gemini_model,omitempty" envconfig:"GEMINI_MODEL"`
	APIKey      string `json:"-" envconfig:"API_KEY"`
	LogLevel    string `json:"log_level,omitempty" envconfig:"LOG_LEVEL"`
	PageSize    int    `json:"page_size,omitempty" envconfig:"PAGE_SIZE"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:     "sqlite",
		Classifier:  "gemini",
		GeminiModel: "gemini-2.5-flash",
		LogLevel:    "warn",
		PageSize:    25,
	}
}

// Path returns where the config file lives.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads the default config file, then .env, then the environment.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom is Load with an explicit config file path. A missing file is fine.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.Classifier == "" {
		c.Classifier = d.Classifier
	}
	if c.GeminiModel == "" {
		c.GeminiModel = d.GeminiModel
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
}

// Save writes the config as indented JSON, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ResolveDBPath returns DBPath, or the XDG data location for the backend.
func (c *Config) ResolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	if c.Backend == "badger" {
		return filepath.Join(xdg.DataHome, AppName, "badger")
	}
	return filepath.Join(xdg.DataHome, AppName, "dealflow.db")
}

// NewLogger builds the stderr logger at the configured level.
func (c *Config) NewLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          AppName,
		ReportTimestamp: true,
	})
	level, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = log.WarnLevel
		logger.Warn("unknown log level, using warn", "level", c.LogLevel)
	}
	logger.SetLevel(level)
	return logger
}
