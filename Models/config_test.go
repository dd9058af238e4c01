package Models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestConfigFrom_Defaults(t *testing.T) {
	cfg, err := configFrom(lookupFrom(map[string]string{
		"SMTP_HOST": "smtp.example.com",
		"SMTP_USER": "relay@example.com",
		"TO_EMAIL":  "owner@example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, "relay@example.com", cfg.Email.FromEmail, "from defaults to the SMTP user")
	assert.False(t, cfg.Email.Secure)
	assert.Equal(t, 15*time.Second, cfg.Email.Timeout)
	assert.Equal(t, 8787, cfg.Port)
	assert.Equal(t, 20, cfg.RateLimit.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "memory", cfg.RateLimit.Store)
	assert.Equal(t, "Portfolio contact", cfg.SubjectLabel)
	assert.Equal(t, TransportSMTP, cfg.Transport)
}

func TestConfigFrom_Overrides(t *testing.T) {
	cfg, err := configFrom(lookupFrom(map[string]string{
		"SMTP_HOST":         "smtp.example.com",
		"SMTP_PORT":         "465",
		"SMTP_USER":         "relay",
		"SMTP_PASS":         "secret",
		"SMTP_SECURE":       "true",
		"SMTP_TIMEOUT":      "5s",
		"FROM_EMAIL":        "Folio <noreply@example.com>",
		"TO_EMAIL":          "owner@example.com",
		"PORT_SERVER":       "9000",
		"RATE_LIMIT_MAX":    "5",
		"RATE_LIMIT_WINDOW": "120",
		"RATE_LIMIT_STORE":  "SQLite",
		"MAIL_TRANSPORT":    "LOG",
		"PROXY_HEADER":      "X-Forwarded-For",
		"TRUSTED_PROXIES":   "10.0.0.1, 172.16.0.0/12,",
	}))
	require.NoError(t, err)

	assert.Equal(t, 465, cfg.Email.SMTPPort)
	assert.True(t, cfg.Email.Secure)
	assert.Equal(t, "secret", cfg.Email.Password)
	assert.Equal(t, 5*time.Second, cfg.Email.Timeout)
	assert.Equal(t, "Folio <noreply@example.com>", cfg.Email.FromEmail)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "sqlite", cfg.RateLimit.Store)
	assert.Equal(t, TransportLog, cfg.Transport)
	assert.Equal(t, "X-Forwarded-For", cfg.ProxyHeader)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestConfigFrom_Invalid(t *testing.T) {
	t.Run("malformed values", func(t *testing.T) {
		_, err := configFrom(lookupFrom(map[string]string{
			"SMTP_HOST":   "smtp.example.com",
			"TO_EMAIL":    "owner@example.com",
			"SMTP_PORT":   "five-eight-seven",
			"SMTP_SECURE": "maybe",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SMTP_PORT")
		assert.Contains(t, err.Error(), "SMTP_SECURE")
	})

	t.Run("missing destination", func(t *testing.T) {
		_, err := configFrom(lookupFrom(map[string]string{"SMTP_HOST": "smtp.example.com", "SMTP_USER": "u"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TO_EMAIL")
	})

	t.Run("smtp transport needs a host", func(t *testing.T) {
		_, err := configFrom(lookupFrom(map[string]string{"TO_EMAIL": "owner@example.com"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SMTP_HOST")
	})

	t.Run("log transport needs no host", func(t *testing.T) {
		_, err := configFrom(lookupFrom(map[string]string{
			"TO_EMAIL":       "owner@example.com",
			"MAIL_TRANSPORT": "log",
		}))
		assert.NoError(t, err)
	})

	t.Run("proxy header needs trusted proxies", func(t *testing.T) {
		_, err := configFrom(lookupFrom(map[string]string{
			"TO_EMAIL":       "owner@example.com",
			"MAIL_TRANSPORT": "log",
			"PROXY_HEADER":   "X-Forwarded-For",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := configFrom(lookupFrom(map[string]string{
			"TO_EMAIL":         "owner@example.com",
			"MAIL_TRANSPORT":   "log",
			"RATE_LIMIT_STORE": "redis",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RATE_LIMIT_STORE")
	})
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
  // relay settings
  SMTP_HOST: 'smtp.file.example',
  SMTP_PORT: 2525,
  TO_EMAIL: "owner@example.com",
  FROM_EMAIL: "relay@example.com",
  RATE_LIMIT_MAX: 7,
}`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SMTP_HOST", "smtp.env.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "smtp.env.example", cfg.Email.SMTPServer, "environment wins over the file")
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.Equal(t, 7, cfg.RateLimit.Max)
	assert.Equal(t, "owner@example.com", cfg.Email.ToEmail)
}

func TestLoadConfig_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json5"))
	_, err := LoadConfig()
	assert.Error(t, err)
}
