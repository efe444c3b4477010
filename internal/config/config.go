// Package config loads service settings in three layers: struct defaults,
// an optional YAML file, then STORMHAVEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location. Without it, no file is
// loaded and defaults plus environment variables apply.
const ConfigPathEnvVar = "STORMHAVEN_CONFIG"

const envPrefix = "STORMHAVEN_"

// Config holds all service settings.
type Config struct {
	HTTPAddr        string        `koanf:"http_addr" validate:"required"`
	DatabasePath    string        `koanf:"database_path"`
	BadgerDir       string        `koanf:"badger_dir"`
	LogLevel        string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `koanf:"log_format" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min" validate:"gte=0"`

	Kafka KafkaConfig `koanf:"kafka"`
}

// KafkaConfig configures the optional declarations-ingest consumer.
type KafkaConfig struct {
	Enabled   bool     `koanf:"enabled"`
	Brokers   []string `koanf:"brokers"`
	Topic     string   `koanf:"topic"`
	GroupID   string   `koanf:"group_id"`
	BatchSize int      `koanf:"batch_size" validate:"gt=0"`
}

func defaultConfig() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		DatabasePath:    "stormhaven.duckdb",
		BadgerDir:       "",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: 10 * time.Second,
		RateLimitPerMin: 300,
		Kafka: KafkaConfig{
			Enabled:   false,
			Brokers:   []string{"localhost:9092"},
			Topic:     "disaster-declarations",
			GroupID:   "stormhaven-ingest",
			BatchSize: 50,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// STORMHAVEN_CONFIG if set, then environment variables. A double underscore
// in an env name descends into a nested section, so STORMHAVEN_KAFKA__TOPIC
// sets kafka.topic.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Brokers arrive from the environment as one comma-separated string.
	if v := k.Get("kafka.brokers"); v != nil {
		if s, ok := v.(string); ok {
			if err := k.Set("kafka.brokers", splitAndTrim(s)); err != nil {
				return nil, fmt.Errorf("parse kafka.brokers: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies struct tag rules plus the cross-field constraints the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka enabled but no brokers configured")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka enabled but no topic configured")
		}
		if c.Kafka.GroupID == "" {
			return errors.New("kafka enabled but no group id configured")
		}
	}
	return nil
}

func envKeyToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
