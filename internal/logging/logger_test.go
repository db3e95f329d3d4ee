package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("JSONWithComponent", func(t *testing.T) {
		var buf bytes.Buffer
		l := ComponentLogger(NewLogger(Config{Level: "debug", Format: FormatJSON}, &buf), "cache")
		l.Debug().Str("key", "v").Msg("hello")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "hello", line["message"])
		assert.Equal(t, "cache", line["component"])
		assert.Equal(t, "debug", line["level"])
	})

	t.Run("InvalidLevelDefaultsToInfo", func(t *testing.T) {
		l := NewLogger(Config{Level: "loud"}, &bytes.Buffer{})
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})

	t.Run("ConsoleFormat", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(Config{Level: "info", Format: FormatConsole}, &buf)
		l.Info().Msg("readable")
		assert.Contains(t, buf.String(), "readable")
		assert.NotContains(t, buf.String(), `"message"`)
	})
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "dircache.log")
		result := NewLoggerWithPath(Config{Level: "info", Format: FormatJSON, Output: OutputFile, File: path})
		require.True(t, result.UsingFile)
		assert.Equal(t, path, result.FilePath)

		result.Logger.Info().Msg("to file")
		require.NoError(t, result.Close())
		require.NoError(t, result.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("Stderr", func(t *testing.T) {
		result := NewLoggerWithPath(Config{Level: "info", Output: OutputStderr})
		assert.False(t, result.UsingFile)
		assert.False(t, result.FallbackUsed)
		assert.NoError(t, result.Close())
	})

	t.Run("Fallback", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "not-a-dir")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		result := NewLoggerWithPath(Config{Output: OutputFile, File: filepath.Join(blocker, "app.log")})
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
		assert.False(t, result.UsingFile)
	})
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	PrintLogPathMessage(&buf, "/tmp/x.log")
	PrintFallbackWarning(&buf, "disk full")
	assert.Contains(t, buf.String(), "Logging to /tmp/x.log")
	assert.Contains(t, buf.String(), "disk full")
}

func TestTraceID(t *testing.T) {
	id := NewTraceID()
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	ctx := ContextWithTraceID(context.Background(), id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
	assert.Equal(t, id, GetOrGenerateTraceID(ctx))
	assert.NotEqual(t, id, GetOrGenerateTraceID(context.Background()))

	var buf bytes.Buffer
	l := WithTraceID(ctx, NewLogger(Config{Format: FormatJSON}, &buf))
	l.Info().Msg("traced")
	assert.Contains(t, buf.String(), id)
}
