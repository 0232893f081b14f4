package pinger_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Engine.Window)
	assert.Equal(t, 8, cfg.Engine.Concurrency)
	assert.Equal(t, time.Duration(0), cfg.Engine.Interval)
	assert.Equal(t, int64(7451), cfg.Engine.LockKey)
	assert.Equal(t, []string{"metrics"}, cfg.Engine.ResponseHandlers)
	assert.Equal(t, []string{"logging"}, cfg.Engine.NotificationHandlers)

	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.False(t, cfg.HTTP.FollowRedirects)
	assert.True(t, cfg.HTTP.VerifyTLS)

	assert.Equal(t, "scout.status.changed", cfg.Kafka.Topic)
	assert.Equal(t, 2*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, "[scout]", cfg.SMTP.SubjPrefix)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pinger.yaml")
	yaml := `
pinger:
  window: 30m
  concurrency: 2
  interval: 5m
  notification_handlers: [logging, admin_email]
http:
  timeout: 3s
  follow_redirects: true
email:
  admin_emails: [ops@acme.example]
server:
  metrics_addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Engine.Window)
	assert.Equal(t, 2, cfg.Engine.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.Engine.Interval)
	assert.Equal(t, []string{"logging", "admin_email"}, cfg.Engine.NotificationHandlers)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.HTTP.FollowRedirects)
	assert.Equal(t, []string{"ops@acme.example"}, cfg.Email.AdminEmails)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)

	// Untouched keys keep their defaults.
	assert.Equal(t, int64(7451), cfg.Engine.LockKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PINGER_CONCURRENCY", "16")
	t.Setenv("DB_DSN", "postgres://scout:x@db:5432/scout")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Engine.Concurrency)
	assert.Equal(t, "postgres://scout:x@db:5432/scout", cfg.DB.URL)
}

func TestValidate_Rejections(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base(t)
	cfg.Engine.Window = 0
	assert.ErrorContains(t, cfg.Validate(), "pinger.window")

	cfg = base(t)
	cfg.Engine.Concurrency = 0
	assert.ErrorContains(t, cfg.Validate(), "pinger.concurrency")

	cfg = base(t)
	cfg.HTTP.Timeout = 0
	assert.ErrorContains(t, cfg.Validate(), "http.timeout")

	cfg = base(t)
	cfg.Engine.Interval = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "pinger.interval")

	cfg = base(t)
	cfg.Engine.Window = 0
	cfg.HTTP.Timeout = 0
	err := cfg.Validate()
	assert.ErrorContains(t, err, "pinger.window")
	assert.ErrorContains(t, err, "http.timeout")
}
