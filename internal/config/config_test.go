package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Setenv(telegramTokenEnv, "")
	t.Setenv(apiBaseURLEnv, "")
	t.Setenv(postgresPassEnv, "")
}

func Test_OnMinimalConfig_ShouldApplyDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api:
  base-url: "http://localhost:5000"
`)

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.API().BaseURL())
	assert.Equal(t, time.Duration(0), cfg.API().Timeout())
	assert.Equal(t, StoreMemory, cfg.App().CredentialStore())
	assert.Equal(t, ":9090", cfg.App().MetricsAddr())
	assert.Equal(t, time.UTC, cfg.App().Location())
	assert.Equal(t, 60, cfg.Telegram().PollTimeout())
	assert.True(t, cfg.Jaeger().IsDisabled())
	assert.False(t, cfg.Kafka().Enabled())
}

func Test_OnEnvOverrides_ShouldReplaceSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv(telegramTokenEnv, "tg-secret")
	t.Setenv(apiBaseURLEnv, "https://api.example.com")
	t.Setenv(postgresPassEnv, "pg-secret")

	path := writeConfig(t, `
telegram:
  token: "from-file"
api:
  base-url: "http://localhost:5000"
  timeout-seconds: 15
postgres:
  host: db
  db: expenses
  username: bot
`)

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tg-secret", cfg.Telegram().Token())
	assert.Equal(t, "https://api.example.com", cfg.API().BaseURL())
	assert.Equal(t, 15*time.Second, cfg.API().Timeout())
	assert.Equal(t, "user=bot password=pg-secret host=db port=5432 dbname=expenses sslmode=disable", cfg.Postgres().DSN())
}

func Test_OnMissingBaseURL_ShouldFailValidation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
app:
  credential-store: memory
`)

	_, err := NewFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base-url")
}

func Test_OnUnknownStore_ShouldFailValidation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api:
  base-url: "http://localhost:5000"
app:
  credential-store: localstorage
`)

	_, err := NewFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown credential store "localstorage"`)
}

func Test_OnMemcachedStoreWithoutHosts_ShouldFailValidation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api:
  base-url: "http://localhost:5000"
app:
  credential-store: memcached
`)

	_, err := NewFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached hosts")
}

func Test_OnKafkaBrokersWithoutTopic_ShouldFailValidation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api:
  base-url: "http://localhost:5000"
kafka:
  brokers: ["localhost:9092"]
`)

	_, err := NewFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events-topic")
}

func Test_OnUnknownLocation_ShouldFallBackToUTC(t *testing.T) {
	app := AppConfig{TimeZone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, app.Location())
}
