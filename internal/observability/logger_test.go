package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/layoutcore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func logConfig(format string) config.LogConfig {
	return config.LogConfig{Level: "debug", Format: format}
}

func TestConsoleLogger(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	var buf bytes.Buffer
	Initialize(logConfig("console"), zapcore.AddSync(&buf))
	GetLogger().Info("pass published", zap.Uint64("pass", 3))
	Sync()
	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "layoutcore.")
	assert.Contains(t, out, "pass published")
	assert.Contains(t, out, `"pass": 3`)
}

func TestJSONLogger(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	var buf bytes.Buffer
	Initialize(logConfig("json"), zapcore.AddSync(&buf))
	zap.L().Warn("layout diagnostic", zap.String("kind", "depth-exceeded"))
	Sync()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, ServiceName, entry["logger"])
	assert.Equal(t, "layout diagnostic", entry["msg"])
	assert.Equal(t, "depth-exceeded", entry["kind"])
}

func TestLevelFiltersEntries(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	var buf bytes.Buffer
	cfg := logConfig("json")
	cfg.Level = "warn"
	Initialize(cfg, zapcore.AddSync(&buf))
	GetLogger().Info("hidden")
	GetLogger().Error("shown")
	Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	var buf bytes.Buffer
	cfg := logConfig("json")
	cfg.Level = "chatty"
	Initialize(cfg, zapcore.AddSync(&buf))
	GetLogger().Debug("hidden")
	GetLogger().Info("shown")
	Sync()
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFileLogger(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	file := filepath.Join(t.TempDir(), "layoutcore.log")
	cfg := logConfig("console")
	cfg.File = file
	cfg.MaxSize = 1
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	GetLogger().Info("written twice")
	Sync()
	assert.Contains(t, buf.String(), "written twice")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry), "log file is JSON")
	assert.Equal(t, "written twice", entry["msg"])
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	defer ResetForTest()
	var first, second bytes.Buffer
	Initialize(logConfig("json"), zapcore.AddSync(&first))
	Initialize(logConfig("json"), zapcore.AddSync(&second))
	GetLogger().Info("once")
	Sync()
	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.String())
}

func TestUninitializedLoggerIsNop(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
	assert.NotPanics(t, func() {
		GetLogger().Info("nowhere")
		Sync()
	})
}
