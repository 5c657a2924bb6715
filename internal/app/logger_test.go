package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("reason", "expired"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "expired", entry["reason"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerTextDefault(t *testing.T) {
	var buf bytes.Buffer
	newLogger(nil, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
