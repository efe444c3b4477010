package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "stormhaven.duckdb", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 300, cfg.RateLimitPerMin)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 50, cfg.Kafka.BatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORMHAVEN_HTTP_ADDR", ":9999")
	t.Setenv("STORMHAVEN_LOG_LEVEL", "debug")
	t.Setenv("STORMHAVEN_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("STORMHAVEN_KAFKA__TOPIC", "fema-declarations")
	t.Setenv("STORMHAVEN_KAFKA__BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "fema-declarations", cfg.Kafka.Topic)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http_addr: \":7070\"\nbadger_dir: /data/favorites\nkafka:\n  batch_size: 100\n",
	), 0o600))
	t.Setenv("STORMHAVEN_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "/data/favorites", cfg.BadgerDir)
	assert.Equal(t, 100, cfg.Kafka.BatchSize)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":7070\"\n"), 0o600))
	t.Setenv("STORMHAVEN_CONFIG", path)
	t.Setenv("STORMHAVEN_HTTP_ADDR", ":6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.HTTPAddr)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("STORMHAVEN_LOG_LEVEL", "verbose")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_KafkaEnabledNeedsTopic(t *testing.T) {
	t.Setenv("STORMHAVEN_KAFKA__ENABLED", "true")
	t.Setenv("STORMHAVEN_KAFKA__TOPIC", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic")
}

func TestLoad_MissingConfigFileFails(t *testing.T) {
	t.Setenv("STORMHAVEN_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
