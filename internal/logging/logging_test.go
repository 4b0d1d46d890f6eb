package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestZapLoggerJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "debug"
	l := New(cfg, zapcore.AddSync(&buf))

	child := l.With(Field{Key: "component", Value: "matcher"})
	child.Info("clauses matched", Field{Key: "count", Value: 3}, Field{Key: "error", Value: errors.New("boom")})

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "clauses matched", entry["msg"])
	assert.Equal(t, "matcher", entry["component"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "clauseguard", entry["logger"])
}

func TestZapLoggerLevelFilter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "warn"
	l := New(cfg, zapcore.AddSync(&buf))

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestZapLoggerBadLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Level = "loud"
	l := New(cfg, zapcore.AddSync(&buf))
	l.Debug("no")
	l.Info("yes")
	assert.NotContains(t, buf.String(), `"no"`)
	assert.Contains(t, buf.String(), `"yes"`)
}

func TestZapLoggerConsoleColors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := New(DefaultConfig(), zapcore.AddSync(&buf))
	l.Error("failed")
	out := buf.String()
	assert.Contains(t, out, "\x1b[31mERROR"+colorReset)
	assert.Contains(t, out, "clauseguard.")
}

func TestZapLoggerWritesRotatingFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "clauseguard.log")
	var console bytes.Buffer
	l := New(cfg, zapcore.AddSync(&console))
	l.Info("to file")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestWrapZaptest(t *testing.T) {
	t.Parallel()
	l := Wrap(zaptest.NewLogger(t))
	Component(l, "test").Info("hello")
	assert.NotNil(t, l.Zap())
}

func TestComponentNilLogger(t *testing.T) {
	t.Parallel()
	l := Component(nil, "x")
	assert.NotPanics(t, func() { l.With(Field{Key: "k", Value: 1}).Error("ignored") })
}
