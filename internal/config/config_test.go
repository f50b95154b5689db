package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	return FromViper(v)
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "exposure", cfg.Risk.Policy)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "rbo_session", cfg.Session.CookieName)
}

func TestValidate_RejectsUnknownPolicy(t *testing.T) {
	cfg := defaults()
	cfg.Risk.Policy = "matrix"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := defaults()
	cfg.DB.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionNeedsSecrets(t *testing.T) {
	cfg := defaults()
	cfg.AppEnv = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Session.CookieSecure = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_AdminPair(t *testing.T) {
	cfg := defaults()
	cfg.Admin.Username = "admin"
	assert.Error(t, cfg.Validate())

	cfg.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("RBO_DB_DRIVER", "sqlite")
	t.Setenv("RBO_RISK_POLICY", "findings")
	t.Setenv("RBO_SESSION_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "findings", cfg.Risk.Policy)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rbo.yaml")
	body := "http_addr: \":9090\"\nrisk:\n  policy: sms\ndb:\n  driver: sqlite\n  path: /tmp/rbo-test.db\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "sms", cfg.Risk.Policy)
	assert.Equal(t, "/tmp/rbo-test.db", cfg.DB.Path)
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "rbo", Password: "p@ss", Name: "rbo", SSLMode: "disable"}
	assert.Equal(t, "postgres://rbo:p%40ss@db:5432/rbo?sslmode=disable", d.PostgresDSN())

	d.URL = "postgresql://u:p@h/x"
	assert.Equal(t, "postgresql://u:p@h/x", d.PostgresDSN())
}

func TestTrustedProxyPrefixes(t *testing.T) {
	cfg := defaults()
	cfg.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.7", " ::1 "}

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.168.1.7/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())
	assert.NoError(t, cfg.Validate())

	cfg.TrustedProxies = []string{"proxy.internal"}
	assert.Error(t, cfg.Validate())
}
