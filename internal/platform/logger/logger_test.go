package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmitsJSONAtLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info("hidden")
	log.Warn("visible", "task_id", "task1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "task1", entry["task_id"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "loud")

	log.Debug("hidden")
	log.Info("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for level, want := range map[string]string{
		"debug": "DEBUG",
		"INFO":  "INFO",
		"Warn":  "WARN",
		"error": "ERROR",
	} {
		parsed, ok := parseLevel(level)
		assert.True(t, ok, level)
		assert.Equal(t, want, parsed.Level().String())
	}

	_, ok := parseLevel("fatal")
	assert.False(t, ok)
}
