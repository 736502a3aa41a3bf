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
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.Equal(t, "marketplace.exchange", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 5*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 64, cfg.Workers)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := []byte(`
http:
  port: "9000"
mysql:
  host: db.internal
  database: shop
smtp:
  host: smtp.internal
  port: 2525
payment:
  timeout: 3s
`)
	require.NoError(t, os.WriteFile(path, yml, 0o600))

	t.Setenv("MYSQL_DATABASE", "shop_test")
	t.Setenv("SMTP_PORT", "1025")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, "shop_test", cfg.MySQL.Database)
	assert.Equal(t, 1025, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
