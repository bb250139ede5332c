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

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.False(t, cfg.Discovery.StrictRadius)
	assert.Equal(t, 20, cfg.Discovery.DefaultPageSize)
	assert.Equal(t, 100, cfg.Discovery.MaxPageSize)
	assert.Equal(t, 20, cfg.Discovery.FacilitySearchLimit)
	assert.Equal(t, 50, cfg.Discovery.PractitionerSearchLimit)
	assert.Equal(t, 3*time.Second, cfg.Discovery.StoreTimeout)
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_DiscoveryFromEnv(t *testing.T) {
	t.Setenv("DISCOVERY_STRICT_RADIUS", "true")
	t.Setenv("DISCOVERY_FACILITY_SEARCH_LIMIT", "5")
	t.Setenv("DISCOVERY_PRACTITIONER_SEARCH_LIMIT", "7")
	t.Setenv("DISCOVERY_STORE_TIMEOUT", "750ms")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORE_SEED_FILE", "/data/seed.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Discovery.StrictRadius)
	assert.Equal(t, 5, cfg.Discovery.FacilitySearchLimit)
	assert.Equal(t, 7, cfg.Discovery.PractitionerSearchLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.Discovery.StoreTimeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "/data/seed.json", cfg.Store.SeedFile)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("DISCOVERY_STRICT_RADIUS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Discovery.StrictRadius)
}

func TestLoad_ConfigFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 9090
database:
  host: db.internal
discovery:
  strict_radius: true
  max_page_size: 50
  store_timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_HOST", "override.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.True(t, cfg.Discovery.StrictRadius)
	assert.Equal(t, 50, cfg.Discovery.MaxPageSize)
	assert.Equal(t, 5*time.Second, cfg.Discovery.StoreTimeout)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=d sslmode=disable", cfg.DatabaseDSN())
}
