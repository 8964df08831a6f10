package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSessionSecret = "session-secret-0123456789abcdefghij"
	testJWTSecret     = "jwt-secret-0123456789abcdefghijklmno"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsFromEnvOnly(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSessionSecret)
	t.Setenv("JWT_SECRET", testJWTSecret)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5000", cfg.GetServerAddress())
	assert.Equal(t, "", cfg.Server.BasePath)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, "outbox", cfg.Waitlist.NotificationPolicy)
	assert.Equal(t, 5, cfg.Waitlist.MaxNotificationAttempts)
	assert.Equal(t, filepath.Join("instance", "safoai.db"), cfg.DatabasePath("safoai"))
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.RetryNotifications)
}

func TestLoad_FileWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  base_path: api/
database:
  dir: /var/lib/appsuite
mail:
  user: file@example.com
auth:
  session_secret: `+testSessionSecret+`
  jwt_secret: `+testJWTSecret+`
waitlist:
  notification_policy: strict
`)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SENDER_EMAIL", "relay@example.com")
	t.Setenv("SENDER_PASSWORD", "app-password")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.BasePath)
	assert.Equal(t, "relay@example.com", cfg.Mail.User)
	assert.Equal(t, "relay@example.com", cfg.Mail.From)
	assert.Equal(t, "app-password", cfg.Mail.Password)
	assert.Equal(t, "strict", cfg.Waitlist.NotificationPolicy)
	assert.Equal(t, "/var/lib/appsuite/pomegrid.db", cfg.DatabasePath("pomegrid"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "server: [not, a, map"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{Auth: AuthConfig{SessionSecret: testSessionSecret, JWTSecret: testJWTSecret}}
		c.applyDefaults()
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"unknown provider", func(c *Config) { c.Mail.Provider = "pigeon" }, "unsupported mail provider"},
		{"sendgrid without key", func(c *Config) { c.Mail.Provider = "sendgrid" }, "sendgrid API key"},
		{"unknown policy", func(c *Config) { c.Waitlist.NotificationPolicy = "yolo" }, "unsupported notification policy"},
		{"short session secret", func(c *Config) { c.Auth.SessionSecret = "short" }, "session secret"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "JWT secret"},
		{"zero attempts", func(c *Config) { c.Waitlist.MaxNotificationAttempts = -1 }, "max notification attempts"},
		{"bad schedule", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.RetryNotifications = "*/5 * * * *"
		}, "retry_notifications"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	assert.Equal(t, "", NormalizeBasePath(""))
	assert.Equal(t, "", NormalizeBasePath("/"))
	assert.Equal(t, "/api", NormalizeBasePath("api/"))
	assert.Equal(t, "/api", NormalizeBasePath(" /api/ "))
	assert.Equal(t, "/api/v1", NormalizeBasePath("/api/v1"))
}
