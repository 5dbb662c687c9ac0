package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liarbar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

var envKeys = []string{
	"LIARBAR_CONFIG", "LIARBAR_ADDR", "LIARBAR_PUBLIC_URL", "LIARBAR_LOG_LEVEL",
	"LIARBAR_LOG_FILE", "LIARBAR_LOG_JSON", "LIARBAR_CARDS_PER_PLAYER",
	"LIARBAR_CONSUL_ENABLED", "LIARBAR_SERVICE_NAME", "LIARBAR_SERVICE_HOST",
	"CONSUL_HTTP_ADDR", "NATS_URL", "PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 6, cfg.CardsPerPlayer)
	assert.Equal(t, 6, cfg.RoomIDLength)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
addr: ":8080"
publicUrl: "https://bar.example.com"
cardsPerPlayer: 5
shutdownTimeout: 3s
log:
  level: debug
  json: true
consul:
  enabled: true
  serviceName: bar
nats:
  url: nats://nats:4222
`)
	t.Setenv("LIARBAR_LOG_LEVEL", "warn")
	t.Setenv("LIARBAR_CARDS_PER_PLAYER", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://bar.example.com", cfg.PublicURL)
	assert.Equal(t, 7, cfg.CardsPerPlayer, "environment wins over file")
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.Consul.Enabled)
	assert.Equal(t, "bar", cfg.Consul.ServiceName)
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)
	assert.Equal(t, "liarbar", cfg.NATS.SubjectPrefix, "untouched fields keep defaults")
}

func TestLoadPortFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "4000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Addr)

	t.Setenv("LIARBAR_ADDR", "127.0.0.1:5000")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"missing file", nil, filepath.Join(os.TempDir(), "does-not-exist.yaml")},
		{"bad yaml", nil, "::not yaml"},
		{"bad int", map[string]string{"LIARBAR_CARDS_PER_PLAYER": "six"}, ""},
		{"bad bool", map[string]string{"LIARBAR_CONSUL_ENABLED": "maybe"}, ""},
		{"bad port", map[string]string{"PORT": "http"}, ""},
		{"cards out of range", map[string]string{"LIARBAR_CARDS_PER_PLAYER": "53"}, ""},
		{"relative public url", map[string]string{"LIARBAR_PUBLIC_URL": "bar.example.com"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := tt.file
			if tt.name == "bad yaml" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.RoomIDLength = 2
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Consul.Enabled = true
	cfg.Consul.ServiceName = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.QRSize = 10
	assert.Error(t, cfg.Validate())
}
