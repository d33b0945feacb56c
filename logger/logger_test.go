package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krisalay/policycache/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	t.Run("known levels", func(t *testing.T) {
		t.Parallel()

		for in, want := range map[string]slog.Level{
			"":      slog.LevelInfo,
			"DEBUG": slog.LevelDebug,
			"info":  slog.LevelInfo,
			"warn":  slog.LevelWarn,
			"error": slog.LevelError,
		} {
			got, err := logger.ParseLevel(in)
			require.NoError(t, err, in)
			require.Equal(t, want, got, in)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		t.Parallel()

		_, err := logger.ParseLevel("loud")
		require.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("adds run id from context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(&buf, slog.LevelInfo, logger.RunIDExtractor)

		ctx := logger.WithRunID(context.Background(), "run-1")
		log.InfoContext(ctx, "hello")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "hello", rec["msg"])
		require.Equal(t, "run-1", rec["run_id"])
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(&buf, slog.LevelWarn)
		log.Info("dropped")
		require.Zero(t, buf.Len())
	})
}
