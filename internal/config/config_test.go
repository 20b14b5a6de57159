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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "http://localhost:7000/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, uint32(5), cfg.Backend.Breaker.FailureThreshold)
	assert.Equal(t, CartStoreMySQL, cfg.Cart.Store)
	assert.Equal(t, []string{"Cash", "Bank/Card", "Ecocash"}, cfg.Checkout.PaymentMethods)
	assert.True(t, cfg.Pricing.TaxRate.IsZero())
	assert.Equal(t, int64(100), cfg.Inventory.InStockAbove)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9191
backend:
  base_url: http://inventory.local/api/v1/
cart:
  store: redis
  ttl: 12h
pricing:
  tax_rate: "0.15"
inventory:
  in_stock_above: 20
checkout:
  payment_methods: [Cash]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "http://inventory.local/api/v1", cfg.Backend.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, CartStoreRedis, cfg.Cart.Store)
	assert.Equal(t, 12*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, "0.15", cfg.Pricing.TaxRate.String())
	assert.Equal(t, int64(20), cfg.Inventory.InStockAbove)
	assert.Equal(t, []string{"Cash"}, cfg.Checkout.PaymentMethods)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o600))
	t.Setenv("POSTERMINAL_SERVER_PORT", "7070")
	t.Setenv("POSTERMINAL_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown cart store", content: "cart:\n  store: sqlite\n"},
		{name: "malformed tax rate", content: "pricing:\n  tax_rate: lots\n"},
		{name: "negative tax rate", content: "pricing:\n  tax_rate: \"-0.1\"\n"},
		{name: "write timeout shorter than checkout", content: "server:\n  write_timeout: 20s\ncheckout:\n  timeout: 30s\n"},
		{name: "backend timeout not shorter than checkout", content: "backend:\n  timeout: 30s\ncheckout:\n  timeout: 30s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ShippedConfigFile(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, CartStoreMySQL, cfg.Cart.Store)
	assert.Equal(t, 30*time.Second, cfg.Checkout.Timeout)
	assert.Equal(t, "LOC-1", cfg.Inventory.DefaultLocation)
}
