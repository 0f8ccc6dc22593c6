package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuild_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Env: "prod", Level: "info", ServiceName: "vaiki-api", Output: &buf})

	l.Debug("hidden")
	l.Info("playback url issued", Slug("his-girl-friday"), Expires(time.Unix(1700000600, 0)))
	require.NoError(t, l.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	require.Equal(t, "playback url issued", entry["msg"])
	require.Equal(t, "vaiki-api", entry["service"])
	require.Equal(t, "his-girl-friday", entry["slug"])
	require.EqualValues(t, 1700000600, entry["expires"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "debug", parseLevel("DEBUG").String())
	require.Equal(t, "warn", parseLevel("warning").String())
	require.Equal(t, "info", parseLevel("nonsense").String())
}

func TestFrom_ContextAndFallback(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := Set(zap.New(core))
	defer restore()

	From(context.Background()).Info("global")

	scoped := L().With(RequestID("req-1"))
	ctx := ToContext(context.Background(), scoped)
	From(ctx).Info("scoped")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Empty(t, entries[0].ContextMap()["request_id"])
	require.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
}
