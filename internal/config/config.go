// Package config loads fairway configuration from YAML with environment
// variable overrides. Missing files fall back to defaults so the engine is
// usable with zero setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all fairway configuration.
type Config struct {
	// LLM classification service
	LLM LLMConfig `yaml:"llm"`

	// Classifier decision thresholds
	Classifier ClassifierConfig `yaml:"classifier"`

	// Session memory
	Session SessionConfig `yaml:"session"`

	// Retry / recovery tuning
	Recovery RecoveryConfig `yaml:"recovery"`

	// Normalizer lexicon
	Lexicon LexiconConfig `yaml:"lexicon"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the external classification service.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, offline
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// ClassifierConfig holds the confidence band boundaries. RouteThreshold and
// ConfirmThreshold are inclusive at the low end of their bands.
type ClassifierConfig struct {
	RouteThreshold   float64 `yaml:"route_threshold"`
	ConfirmThreshold float64 `yaml:"confirm_threshold"`
}

// SessionConfig configures conversational memory.
type SessionConfig struct {
	HistoryCapacity int `yaml:"history_capacity"`

	// DatabasePath enables the sqlite repository when non-empty.
	DatabasePath string `yaml:"database_path"`
}

// RecoveryConfig tunes the retry policy.
type RecoveryConfig struct {
	MaxAttempts   int    `yaml:"max_attempts"`
	BackoffBase   string `yaml:"backoff_base"`
	BackoffCap    string `yaml:"backoff_cap"`
	ArenaCapacity int    `yaml:"arena_capacity"`
}

// LexiconConfig points at an optional lexicon override file for the
// normalizer. When Path is set and Watch is true, edits are hot-reloaded.
type LexiconConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// LoggingConfig configures the zap backend.
type LoggingConfig struct {
	Level       string `yaml:"level"`  // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  "15s",
		},
		Classifier: ClassifierConfig{
			RouteThreshold:   0.75,
			ConfirmThreshold: 0.50,
		},
		Session: SessionConfig{
			HistoryCapacity: 10,
		},
		Recovery: RecoveryConfig{
			MaxAttempts:   3,
			BackoffBase:   "250ms",
			BackoffCap:    "5s",
			ArenaCapacity: 64,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fairway.yaml"
	}
	return filepath.Join(home, ".fairway", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file returns
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, cfg.validate()
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides applies FAIRWAY_* / GEMINI_API_KEY overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "gemini"
		}
	}
	if key := os.Getenv("FAIRWAY_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("FAIRWAY_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if path := os.Getenv("FAIRWAY_DB"); path != "" {
		c.Session.DatabasePath = path
	}
	if level := os.Getenv("FAIRWAY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if cap := os.Getenv("FAIRWAY_HISTORY_CAPACITY"); cap != "" {
		if n, err := strconv.Atoi(cap); err == nil && n > 0 {
			c.Session.HistoryCapacity = n
		}
	}
}

func (c *Config) validate() error {
	if c.Classifier.RouteThreshold < c.Classifier.ConfirmThreshold {
		return fmt.Errorf("route_threshold %.2f below confirm_threshold %.2f",
			c.Classifier.RouteThreshold, c.Classifier.ConfirmThreshold)
	}
	if c.Session.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be positive")
	}
	if c.Recovery.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive")
	}
	return nil
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetBackoffBase returns the retry backoff base as a duration.
func (c *Config) GetBackoffBase() time.Duration {
	d, err := time.ParseDuration(c.Recovery.BackoffBase)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// GetBackoffCap returns the retry backoff cap as a duration.
func (c *Config) GetBackoffCap() time.Duration {
	d, err := time.ParseDuration(c.Recovery.BackoffCap)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
