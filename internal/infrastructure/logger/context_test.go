package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestContextHelpers(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)

	t.Run("logger round trips through context", func(t *testing.T) {
		ctx := WithContext(context.Background(), logger)
		assert.Same(t, logger, FromContext(ctx))
	})

	t.Run("missing logger falls back to no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))

		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		assert.NotPanics(t, func() { FromContext(ctx).Info("test") })
	})

	t.Run("request and user IDs chain", func(t *testing.T) {
		ctx := context.Background()
		ctx, _ = WithRequestID(ctx, logger, "req-1")
		ctx, enriched := WithUserID(ctx, logger, "user-1")

		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "user-1", GetUserID(ctx))
		assert.Same(t, enriched, FromContext(ctx))
	})

	t.Run("missing IDs are empty", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetUserID(context.Background()))
	})
}

func TestTraceIDs(t *testing.T) {
	t.Run("no span", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetTraceID(ctx))
		assert.Empty(t, GetSpanID(ctx))

		base, buf := newBufferLogger()
		L(WithContext(ctx, base)).Info("untraced")
		assert.NotContains(t, buf.String(), "trace_id")
	})

	t.Run("noop span is invalid", func(t *testing.T) {
		ctx, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "op")
		defer span.End()
		assert.Empty(t, GetTraceID(ctx))
	})

	t.Run("valid span context", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
		assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))

		base, buf := newBufferLogger()
		L(WithContext(ctx, base)).Info("traced")
		assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
		assert.Contains(t, buf.String(), `"span_id":"00f067aa0ba902b7"`)
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("enriches with context fields", func(t *testing.T) {
		base, buf := newBufferLogger()

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
		ctx = context.WithValue(ctx, UserIDKey, "user-789")

		WithLogger(ctx, base).Info("test message", zap.String("extra_field", "extra_value"))

		output := buf.String()
		assert.Contains(t, output, `"request_id":"req-123"`)
		assert.Contains(t, output, `"user_id":"user-789"`)
		assert.Contains(t, output, `"extra_field":"extra_value"`)
		assert.Contains(t, output, `"msg":"test message"`)
	})

	t.Run("omits empty fields", func(t *testing.T) {
		base, buf := newBufferLogger()

		WithLogger(context.Background(), base).Warn("test")

		output := buf.String()
		assert.NotContains(t, output, `"request_id"`)
		assert.NotContains(t, output, `"user_id"`)
	})

	t.Run("with adds fields to child loggers", func(t *testing.T) {
		base, buf := newBufferLogger()

		WithLogger(context.Background(), base).
			With(zap.String("field1", "value1")).
			With(zap.String("field2", "value2")).
			Error("chained")

		assert.Contains(t, buf.String(), `"field1":"value1"`)
		assert.Contains(t, buf.String(), `"field2":"value2"`)
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		cl := &ContextLogger{ctx: context.Background()}
		assert.NotPanics(t, func() {
			cl.Info("test")
			cl.Debug("test")
		})
	})

	t.Run("zap and sugar accessors", func(t *testing.T) {
		cl := WithLogger(context.Background(), zap.NewNop())
		assert.NotNil(t, cl.Zap())
		assert.NotPanics(t, func() { cl.Sugar().Infof("test %s", "message") })
	})
}
