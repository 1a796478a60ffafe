package logctx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/bagtools/bagfetch/internal/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// stubSpan carries a fixed, valid span context so handler output can be
// asserted against known ids.
type stubSpan struct {
	trace.Span
	spanContext trace.SpanContext
}

func (s *stubSpan) SpanContext() trace.SpanContext { return s.spanContext }

func (s *stubSpan) End(...trace.SpanEndOption) {}

func spanContext(t *testing.T) context.Context {
	t.Helper()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	span := &stubSpan{spanContext: trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})}

	return trace.ContextWithSpan(context.Background(), span)
}

func logEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func TestTraceHandler_NoSpanContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logctx.NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "transfer complete", "worker_id", 3)

	entry := logEntry(t, &buf)
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
	assert.Equal(t, "transfer complete", entry["msg"])
	assert.Equal(t, float64(3), entry["worker_id"])
}

func TestTraceHandler_WithValidSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logctx.NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(spanContext(t), "transfer complete", "worker_id", 3)

	entry := logEntry(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.Equal(t, "transfer complete", entry["msg"])
	assert.Equal(t, float64(3), entry["worker_id"])
}

func TestTraceHandler_Enabled(t *testing.T) {
	handler := logctx.NewTraceHandler(slog.NewJSONHandler(nil, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx := context.Background()
	assert.False(t, handler.Enabled(ctx, slog.LevelInfo))
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn))
	assert.True(t, handler.Enabled(ctx, slog.LevelError))
}

func TestTraceHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := logctx.NewTraceHandler(slog.NewJSONHandler(&buf, nil))

	scoped := handler.WithAttrs([]slog.Attr{slog.String("package_id", "1461166900")})
	require.IsType(t, &logctx.TraceHandler{}, scoped)

	slog.New(scoped).InfoContext(spanContext(t), "worker finished")

	entry := logEntry(t, &buf)
	assert.Equal(t, "1461166900", entry["package_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
}

func TestTraceHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := logctx.NewTraceHandler(slog.NewJSONHandler(&buf, nil))

	scoped := handler.WithGroup("transfer")
	require.IsType(t, &logctx.TraceHandler{}, scoped)

	slog.New(scoped).InfoContext(context.Background(), "transfer complete", "exit_code", 0)

	entry := logEntry(t, &buf)
	require.Contains(t, entry, "transfer")
	group, ok := entry["transfer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(0), group["exit_code"])
}

func TestTraceHandler_NilHandler(t *testing.T) {
	assert.Panics(t, func() { logctx.NewTraceHandler(nil) })
}
