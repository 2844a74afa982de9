package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewWithOptionsWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")

	log, err := NewWithOptions(Options{Level: "info", FilePath: path})
	require.NoError(t, err)

	log.Info("chat turn relayed", zap.String("conversation_id", "abc"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"chat turn relayed"`)
	assert.Contains(t, string(data), `"conversation_id":"abc"`)
}

func TestWithRequestKeepsLogger(t *testing.T) {
	l := NewNop().WithRequest("corr-1", "user-1")
	require.NotNil(t, l)
	require.NotNil(t, l.Logger)
}
