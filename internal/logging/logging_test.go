package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerWithPath_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	result := NewLoggerWithPath(Config{Level: "info", Format: FormatJSON}, &buf)
	defer result.Close()

	result.Logger.Info().Str("component", "test").Msg("hello")
	result.Logger.Debug().Msg("hidden")

	assert.False(t, result.UsingFile)
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerWithPath_FileReceivesInfoConsoleOnlyWarn(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "setup.log")

	result := NewLoggerWithPath(Config{Level: "info", Format: FormatJSON, File: logFile}, &buf)
	require.True(t, result.UsingFile)
	assert.Equal(t, logFile, result.FilePath)

	result.Logger.Info().Msg("to-file")
	result.Logger.Warn().Msg("to-both")
	require.NoError(t, result.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to-file")
	assert.Contains(t, string(data), "to-both")
	assert.NotContains(t, buf.String(), "to-file")
	assert.Contains(t, buf.String(), "to-both")
}

func TestNewLoggerWithPath_FallsBackWhenDirUnusable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	var buf bytes.Buffer
	result := NewLoggerWithPath(Config{File: filepath.Join(blocker, "setup.log")}, &buf)

	assert.False(t, result.UsingFile)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.FallbackReason)
}

func TestWithSession_FromContext(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	id := NewSessionID()
	require.Len(t, id, 26)

	ctx := WithSession(context.Background(), ComponentLogger(base, "setup"), id)
	FromContext(ctx).Info().Msg("tagged")

	assert.Contains(t, buf.String(), `"session_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"component":"setup"`)
}

func TestFromContext_NoLoggerIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		FromContext(context.Background()).Info().Msg("dropped")
	})
}

func TestResultClose_Nil(t *testing.T) {
	var r *LogPathResult
	assert.NoError(t, r.Close())
}
