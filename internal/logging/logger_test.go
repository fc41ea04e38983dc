package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	l, err := NewLogger(path, "debug")
	require.NoError(t, err)
	l.Named("store").Info("state persisted", zap.Int("forms", 3))
	l.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"state persisted"`)
	assert.Contains(t, out, `"logger":"store"`)
	assert.Contains(t, out, `"forms":3`)
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	l, err := NewLogger(path, "warn")
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	l.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.True(t, strings.Contains(string(data), "shown"))
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	_, err := NewLogger("", "loud")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
		{"dpanic", zapcore.DPanicLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
