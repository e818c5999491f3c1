package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "sqlite", c.Storage.Driver)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, 10*time.Minute, c.Session.NonceTTL)
	assert.Equal(t, 5*time.Second, c.Outbound.ConnectTimeout)
	assert.Equal(t, 15*time.Second, c.Outbound.RequestTimeout)
	assert.False(t, c.Outbound.InsecureSkipVerify)
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	p := writeYAML(t, `
app:
  env: staging
  base_url: https://accounts.example.com/
server:
  addr: ":9000"
session:
  nonce_ttl: 2m
providers:
  twitter:
    enabled: true
    consumer_key: yaml-key
    consumer_secret: yaml-secret
`)
	t.Setenv("ACCOUNTS_SERVER_ADDR", ":7000")
	t.Setenv("ACCOUNTS_PROVIDERS_TWITTER_CONSUMER_KEY", "env-key")
	t.Setenv("ACCOUNTS_APP_ALLOWED_REDIRECT_HOSTS", "a.example.com,b.example.com")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "staging", c.App.Env)
	assert.Equal(t, "https://accounts.example.com", c.App.BaseURL)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.Equal(t, 2*time.Minute, c.Session.NonceTTL)
	assert.Equal(t, "env-key", c.Providers.Twitter.ConsumerKey)
	assert.Equal(t, "yaml-secret", c.Providers.Twitter.ConsumerSecret, "unset env must not clobber yaml")
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, c.App.AllowedRedirectHosts)
}

func TestLoad_ValidationErrors(t *testing.T) {
	p := writeYAML(t, `
storage:
  driver: mongo
cache:
  kind: memcached
providers:
  google:
    enabled: true
`)
	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
	assert.Contains(t, err.Error(), "cache.kind")
	assert.Contains(t, err.Error(), "providers.google")
}

func TestLoad_PostgresNeedsDSN(t *testing.T) {
	t.Setenv("ACCOUNTS_STORAGE_DRIVER", "postgres")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.dsn")
}
