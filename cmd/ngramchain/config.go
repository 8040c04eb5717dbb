package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/ngramchain/pkg/ngram"
	"github.com/CTAG07/ngramchain/pkg/store"
	"github.com/natefinch/atomic"
)

// ModelConfig holds the settings used when a command creates a new model.
// A Grams value of zero selects the default of the chosen variant.
type ModelConfig struct {
	Variant    string `json:"variant"`
	Grams      int    `json:"grams"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Separation string `json:"separation"`
	From       string `json:"from"`
	Backward   bool   `json:"backward"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	LogLevel     string       `json:"log_level"`
	DatabasePath string       `json:"database_path"`
	Model        *ModelConfig `json:"model_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DatabasePath: "./data/ngramchain.db",
		Model: &ModelConfig{
			Variant:    string(store.KindIndexed),
			Grams:      0,
			Start:      ngram.DefaultStart,
			End:        ngram.DefaultEnd,
			Separation: ngram.DefaultSeparation,
			From:       "",
			Backward:   false,
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The defaults are still usable without a file on disk.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Model == nil {
		config.Model = DefaultConfig().Model
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the values that commands rely on.
func (c *Config) Validate() error {
	switch store.Kind(c.Model.Variant) {
	case store.KindString, store.KindIndexed:
	default:
		return fmt.Errorf("unknown model variant %q, expected %q or %q", c.Model.Variant, store.KindString, store.KindIndexed)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	return nil
}

// chainOptions converts the model settings into options for a new chain.
func (m *ModelConfig) chainOptions(logger *slog.Logger) []ngram.Option {
	opts := []ngram.Option{
		ngram.WithGrams(m.Grams),
		ngram.WithSeparation(m.Separation),
		ngram.WithLogger(logger),
	}
	if m.Start != "" && m.End != "" {
		opts = append(opts, ngram.WithSentinels(m.Start, m.End))
	}
	return opts
}

// indexedConfig returns the stored generation defaults for a new indexed model.
func (m *ModelConfig) indexedConfig() ngram.IndexedConfig {
	cfg := ngram.IndexedConfig{From: m.From, Grams: m.Grams, Backward: m.Backward}
	if cfg.Grams < 1 {
		cfg.Grams = ngram.DefaultIndexedGrams
	}
	return cfg
}

// parseLogLevel maps the configured level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ensureDataDir creates the directory holding the database file.
func ensureDataDir(databasePath string) error {
	path, _, _ := strings.Cut(databasePath, "?")
	path = strings.TrimPrefix(path, "file:")
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
