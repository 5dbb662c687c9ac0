package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"liarbar/internal/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.Log{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liarbar.log")
	log, err := New(config.Log{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Debug("filtered")
	log.Info("room created", zap.String("roomId", "abc123"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "room created", entry["msg"])
	assert.Equal(t, "abc123", entry["roomId"])
	assert.Equal(t, "info", entry["level"])
}
