package logx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pontual-runner/internal/logx"
)

func newBufLogger(t *testing.T) (logx.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return logx.NewSlogAdapter(slog.New(h)), &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestSlogAdapter_WritesFields(t *testing.T) {
	t.Parallel()

	logger, buf := newBufLogger(t)
	logger.Info("route finished",
		logx.Int64("route_id", 7),
		logx.Int("deliveries_created", 3),
		logx.Duration("took", 250*time.Millisecond),
	)

	entry := lastEntry(t, buf)
	require.Equal(t, "route finished", entry["msg"])
	require.Equal(t, "INFO", entry["level"])
	require.EqualValues(t, 7, entry["route_id"])
	require.EqualValues(t, 3, entry["deliveries_created"])
}

func TestSlogAdapter_Levels(t *testing.T) {
	t.Parallel()

	logger, buf := newBufLogger(t)

	logger.Debug("d")
	require.Equal(t, "DEBUG", lastEntry(t, buf)["level"])
	logger.Warn("w")
	require.Equal(t, "WARN", lastEntry(t, buf)["level"])
	logger.Error("e")
	require.Equal(t, "ERROR", lastEntry(t, buf)["level"])
}

func TestSlogAdapter_WithAttachesFields(t *testing.T) {
	t.Parallel()

	logger, buf := newBufLogger(t)
	bound := logger.With(logx.String("component", "engine"))

	bound.Info("hello")
	entry := lastEntry(t, buf)
	require.Equal(t, "engine", entry["component"])

	// the parent logger is unaffected
	logger.Info("plain")
	entry = lastEntry(t, buf)
	require.NotContains(t, entry, "component")
}

func TestSlogAdapter_SyncIsNoop(t *testing.T) {
	t.Parallel()

	logger, _ := newBufLogger(t)
	require.NoError(t, logger.Sync())
}
