// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/axtract/internal/config"
)

// -- Test Helper Functions --

// captureStdout redirects stdout into a buffer for the duration of a test.
// The returned cleanup must run before the buffer is inspected.
func captureStdout(t *testing.T) (*bytes.Buffer, func()) {
	t.Helper()
	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	cleanup := func() {
		w.Close()
		<-done
		os.Stdout = originalStdout
	}
	return &buf, cleanup
}

// -- Test Cases --

func TestInitializeLogger(t *testing.T) {

	t.Run("console format colorizes the level", func(t *testing.T) {
		ResetForTest()
		buf, cleanup := captureStdout(t)

		cfg := config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "axtract",
			Colors: config.ColorConfig{
				Info: "green",
			},
		}
		InitializeLogger(cfg)
		GetLogger().Info("profile extraction started")
		Sync()
		cleanup()

		output := buf.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "profile extraction started")
		assert.Contains(t, output, colorGreen, "info level should be colorized green")
		assert.Contains(t, output, colorReset)
	})

	t.Run("json format emits structured entries", func(t *testing.T) {
		ResetForTest()
		buf, cleanup := captureStdout(t)

		cfg := config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "axtract",
		}
		InitializeLogger(cfg)
		GetLogger().Warn("selector escalation hit depth ceiling", zap.Int("depth", 3))
		Sync()
		cleanup()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be one JSON object")

		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "axtract", entry["logger"])
		assert.Equal(t, "selector escalation hit depth ceiling", entry["msg"])
		assert.Equal(t, float64(3), entry["depth"])
	})

	t.Run("log file receives a rotated JSON copy", func(t *testing.T) {
		ResetForTest()
		logPath := filepath.Join(t.TempDir(), "axtract.log")

		cfg := config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logPath,
			MaxSize: 1, // MB
		}
		InitializeLogger(cfg)
		GetLogger().Error("document materialization failed")
		Sync()

		content, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "document materialization failed")
	})

	t.Run("initialization runs only once", func(t *testing.T) {
		ResetForTest()
		buf, cleanup := captureStdout(t)

		InitializeLogger(config.LoggerConfig{Level: "info", ServiceName: "first"})
		logger1 := GetLogger()

		// A second call must not replace the singleton.
		InitializeLogger(config.LoggerConfig{Level: "debug", ServiceName: "second"})
		logger2 := GetLogger()

		assert.Equal(t, logger1, logger2)
		logger2.Info("test")
		Sync()
		cleanup()

		assert.True(t, strings.Contains(buf.String(), "first"))
		assert.False(t, strings.Contains(buf.String(), "second"))
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("returns a fallback before initialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("returns the stored logger after initialization", func(t *testing.T) {
		ResetForTest()
		InitializeLogger(config.LoggerConfig{Level: "info", ServiceName: "axtract"})

		assert.Equal(t, globalLogger.Load(), GetLogger())
	})
}
