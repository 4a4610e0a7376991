package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "text", "info")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("session started", "session", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "session started")
	assert.Contains(t, out, "session=abc")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "debug")
	require.NoError(t, err)

	logger.Warn("frame dropped", "type", "duck")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "frame dropped", rec["msg"])
	assert.Equal(t, "duck", rec["type"])
}

func TestNew_Logrus(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "logrus", "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Error("read failed", "addr", "127.0.0.1:4242", "attempt", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "read failed")
	assert.Contains(t, out, "addr=")
	assert.Contains(t, out, "attempt=2")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "xml", "info")
	assert.EqualError(t, err, `unknown log format "xml"`)

	_, err = New(&bytes.Buffer{}, "text", "loud")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "logrus", "loud")
	assert.Error(t, err)
}

func TestLogrus_OddArgs(t *testing.T) {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	adapter := NewLogrus(logrus.NewEntry(l))

	entry := adapter.with([]any{"key", "value", "dangling"})
	assert.Equal(t, "value", entry.Data["key"])
	assert.Equal(t, "dangling", entry.Data["!BADKEY"])
}
