package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "0.0.0.0", c.Server.Host)
	assert.True(t, c.Server.CORS)
	assert.Equal(t, "redis", c.Store.Type)
	assert.Equal(t, 5*time.Minute, c.Snapshot.RTHCadence)
	assert.Equal(t, time.Hour, c.Snapshot.ETHCadence)
	assert.Equal(t, 15*time.Second, c.Snapshot.Grace)
	assert.Equal(t, 50, c.Snapshot.MaxSymbols)
	assert.Equal(t, "5min", c.TwelveData.Interval)
	assert.Equal(t, 300, c.TwelveData.OutputSize)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.Equal(t, []string{"MSFT", "CRM", "JPM", "AXP", "NKE", "IBM"}, c.BasketSymbols())
	assert.NoError(t, c.Validate())
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: test
store:
  type: memory
snapshot:
  rth_cadence: 1m
basket:
  - { symbol: spy, name: SPDR }
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, "memory", c.Store.Type)
	assert.Equal(t, time.Minute, c.Snapshot.RTHCadence)
	assert.Equal(t, time.Hour, c.Snapshot.ETHCadence)
	assert.Equal(t, []string{"SPY"}, c.BasketSymbols())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"TWELVE_DATA_API_KEY": "td-key",
		"OPENAI_KEY":          "oa-key",
		"REDIS_ADDR":          "cache.internal:6380",
		"KAFKA_BROKERS":       "k1:9092, k2:9092",
		"PORT":                "9090",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "td-key", c.TwelveData.APIKey)
	assert.Equal(t, "oa-key", c.Coach.APIKey)
	assert.Equal(t, "cache.internal", c.Store.Redis.Host)
	assert.Equal(t, 6380, c.Store.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 9090, c.Server.Port)
}

func TestValidate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	c.Store.Type = "kv"
	assert.ErrorContains(t, c.Validate(), "store.type")

	c.Store.Type = "memory"
	c.Snapshot.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, c.Validate(), "timezone")

	c.Snapshot.Timezone = "America/New_York"
	c.Snapshot.MaxSymbols = 0
	assert.Error(t, c.Validate())
}
