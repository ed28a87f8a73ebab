package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, c.Batch.MaxPairs)
	assert.Equal(t, 25, c.Backtest.MaxPairs)
	assert.Equal(t, 500*time.Millisecond, c.Provider.MinInterval)
	assert.Equal(t, 24, c.Provider.LookbackMonths)
	assert.Equal(t, ".NS", c.Provider.SymbolSuffix)
	assert.Equal(t, ".", c.Output.Dir)
	assert.Equal(t, "bounded", c.Backtest.M2Policy)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
environment: production
batch:
  max_pairs: 10
output:
  dir: /tmp/reports
provider:
  min_interval: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 10, c.Batch.MaxPairs)
	assert.Equal(t, "/tmp/reports", c.Output.Dir)
	assert.Equal(t, time.Second, c.Provider.MinInterval)
	assert.Equal(t, 25, c.Backtest.MaxPairs)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kafka:\n  enabled: true\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("backtest:\n  m2_policy: loose\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PAIRSCOPE_OUTPUT_DIR", "/data/out")
	t.Setenv("PAIRSCOPE_SYMBOL_SUFFIX", "")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/out", c.Output.Dir)
	assert.Equal(t, "", c.Provider.SymbolSuffix)
	assert.Equal(t, "cache", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}
