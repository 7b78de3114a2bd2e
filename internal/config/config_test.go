package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "support-case-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, "plain", cfg.Email.AuthType)
	assert.Equal(t, "Tax Support", cfg.Email.CompanyName)
	assert.Equal(t, "TAX", cfg.Email.TicketPrefix)
	assert.Equal(t, 15*time.Second, cfg.Email.SendTimeout())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("EMAIL_SENDER_ADDRESS", "support@example.com")
	t.Setenv("SMTP_TLS", "true")
	t.Setenv("EMAIL_SEND_TIMEOUT_SECONDS", "5")
	t.Setenv("TICKET_NUMBER_PREFIX", "SUP")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "mail.example.com", cfg.Email.SMTPHost)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.Equal(t, "support@example.com", cfg.Email.SenderAddress)
	assert.True(t, cfg.Email.UseTLS)
	assert.Equal(t, 5*time.Second, cfg.Email.SendTimeout())
	assert.Equal(t, "SUP", cfg.Email.TicketPrefix)
}

func TestEnvParseFallbacks(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("SMTP_TLS", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.False(t, cfg.Email.UseTLS)
}
