package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, "INV-", cfg.Billing.InvoicePrefix)
	assert.True(t, cfg.Billing.DefaultTaxRate.IsZero())
	assert.Equal(t, time.Hour, cfg.Jobs.OverdueInterval)
	assert.False(t, cfg.MailEnabled())
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("DEFAULT_TAX_RATE", "0.0825")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "claude", cfg.Vision.Backend)
	assert.Equal(t, "sk-test123", cfg.Vision.ClaudeAPIKey)
	assert.Equal(t, "0.0825", cfg.Billing.DefaultTaxRate.String())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SMTP_HOST=mail.example.com\nSMTP_FROM=office@example.com\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("SMTP_HOST")
		_ = os.Unsetenv("SMTP_FROM")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.True(t, cfg.MailEnabled())
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("JOB_OVERDUE_INTERVAL", "often")

	_, err := Load("")
	assert.Error(t, err)
}
