// Package config loads the mutation options and runtime settings used by the
// symgenctl command.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"symgen/internal/model"
	"symgen/internal/storage"
)

type StoreConfig struct {
	Kind string `json:"kind" yaml:"kind"`
	Path string `json:"path" yaml:"path"`
}

type Config struct {
	Options  model.Options `json:"options" yaml:"options"`
	Features int           `json:"features" yaml:"features"`
	Store    StoreConfig   `json:"store" yaml:"store"`
	Workers  int           `json:"workers" yaml:"workers"`
	Seed     int64         `json:"seed" yaml:"seed"`
	LogLevel string        `json:"log_level" yaml:"log_level"`
}

func Default() Config {
	return Config{
		Options:  model.DefaultOptions(),
		Features: 3,
		Store:    StoreConfig{Kind: storage.DefaultStoreKind(), Path: storage.DefaultSQLitePath},
		Workers:  4,
		Seed:     1,
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, then the file at path (YAML or JSON),
// then SYMGEN_* environment variables, and validates the result. An empty
// path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv("SYMGEN_PERTURBATION_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SYMGEN_PERTURBATION_FACTOR: %w", err)
		}
		cfg.Options.PerturbationFactor = f
	}
	if v := os.Getenv("SYMGEN_PROBABILITY_NEGATE_CONSTANT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SYMGEN_PROBABILITY_NEGATE_CONSTANT: %w", err)
		}
		cfg.Options.ProbabilityNegateConstant = f
	}
	if v := os.Getenv("SYMGEN_NODE_TYPE"); v != "" {
		cfg.Options.NodeType = model.Kind(strings.ToLower(v))
	}
	if v := os.Getenv("SYMGEN_FEATURES"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SYMGEN_FEATURES: %w", err)
		}
		cfg.Features = i
	}
	if v := os.Getenv("SYMGEN_WORKERS"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SYMGEN_WORKERS: %w", err)
		}
		cfg.Workers = i
	}
	if v := os.Getenv("SYMGEN_STORE"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("SYMGEN_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SYMGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	if c.Features < 1 {
		return fmt.Errorf("features must be >= 1: %d", c.Features)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1: %d", c.Workers)
	}
	switch c.Store.Kind {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Kind)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel accepts slog level names such as "debug" or "warn+2". An
// empty string means info.
func ParseLogLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.New("unknown log level: " + s)
	}
	return level, nil
}
