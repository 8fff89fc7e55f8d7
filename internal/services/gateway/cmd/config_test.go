package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
listen = ":9090"
allow_origin = "https://portal.example.org"

[upstreams]
ingest = "http://ingest:8081"
weather = "http://weather:8082"
market = "http://market:8083"
news = "http://news:8084"
advisor = "http://advisor:8085"

[defaults]
lat = 9.93
lon = 76.26
commodity = "Banana"

[breaker]
failures = 5
open_for_ms = 20000
timeout_ms = 2500
`

func TestLoadConfigFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "http://ingest:8081", cfg.IngestURL)
	assert.Equal(t, "http://advisor:8085", cfg.AdvisorURL)
	assert.Equal(t, 9.93, cfg.DefaultLat)
	assert.Equal(t, "Banana", cfg.DefaultCommodity)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 20*time.Second, cfg.BreakerOpenFor)
	assert.Equal(t, 2500*time.Millisecond, cfg.HTTPTimeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))

	t.Setenv("GATEWAY_LISTEN", ":7000")
	t.Setenv("INGEST_URL", "http://other-ingest:8081")
	t.Setenv("CB_FAILURES", "2")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "http://other-ingest:8081", cfg.IngestURL)
	assert.Equal(t, 2, cfg.BreakerFailures)
	// untouched values still come from the file
	assert.Equal(t, "https://portal.example.org", cfg.AllowOrigin)
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 3, cfg.BreakerFailures)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Banana", cfg.DefaultCommodity)
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen = [broken"), 0o644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}
