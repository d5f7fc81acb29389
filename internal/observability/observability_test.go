package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "chart", "histogram")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "histogram", line["chart"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "debug", "TEXT").Debug("frame")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNewMetricsForTesting_Usable(t *testing.T) {
	m := NewMetricsForTesting()
	m.DatasetLoads.WithLabelValues("tabular", "success").Inc()
	m.Renders.WithLabelValues("histogram", "error").Add(2)
	m.EventsDropped.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("tabular", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Renders.WithLabelValues("histogram", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped))
}

func TestLoggerContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	base := newLogger(&buf, "info", "json")
	ctx := ToContext(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	logger, ctx := With(ctx, "session_id", "s-1")
	assert.Same(t, logger, FromContext(ctx))
	logger.Info("tab shown")
	assert.Contains(t, buf.String(), `"session_id":"s-1"`)
}
