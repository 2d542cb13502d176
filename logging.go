package tether

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an interface for writing informational log messages.
//
// It is satisfied by *zap.Logger.
type Logger interface {
	Info(msg string, fields ...zap.Field)
}

var _ Logger = (*zap.Logger)(nil)

// DefaultLogger returns the logger used when logging is enabled via
// WithLogging() and no other logger is provided.
//
// It writes JSON-encoded messages at the info level and above to stderr.
func DefaultLogger() *zap.Logger {
	return zap.New(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zapcore.InfoLevel,
		),
	).Named("tether")
}

// DefaultTracer returns the logger used when tracing is enabled via
// WithTracing() and no other tracer is provided.
//
// It writes human-readable messages at the info level and above to stderr.
func DefaultTracer() *zap.Logger {
	return zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			zapcore.InfoLevel,
		),
	).Named("tether.trace")
}

// logResponse logs information about a completed request.
func logResponse(
	ctx context.Context,
	l Logger,
	method string,
	u *url.URL,
	res *Response,
	elapsed time.Duration,
) {
	fields := []zap.Field{
		zap.Int("status", res.Status),
		zap.Duration("duration", elapsed),
		zap.Int("body_size", len(res.Body)),
	}

	l.Info(
		method+" "+u.Redacted(),
		appendTraceID(ctx, fields)...,
	)
}

// logError logs information about a request that failed without a response.
func logError(
	ctx context.Context,
	l Logger,
	method string,
	u *url.URL,
	err error,
	elapsed time.Duration,
) {
	fields := []zap.Field{
		zap.String("error", err.Error()),
		zap.Duration("duration", elapsed),
	}

	l.Info(
		method+" "+u.Redacted(),
		appendTraceID(ctx, fields)...,
	)
}

// traceRequest writes a curl command that reproduces a request.
func traceRequest(
	ctx context.Context,
	l Logger,
	method string,
	u *url.URL,
	body []byte,
) {
	var w strings.Builder
	writeCurlCommand(&w, method, u, body)

	l.Info(
		w.String(),
		appendTraceID(ctx, nil)...,
	)
}

// appendTraceID appends the ID of the current trace to fields, if there is a
// recording span in ctx.
func appendTraceID(ctx context.Context, fields []zap.Field) []zap.Field {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		fields = append(fields, zap.String("trace_id", span.SpanContext().TraceID().String()))
	}

	return fields
}

// writeCurlCommand writes a curl command that performs the same request to w.
func writeCurlCommand(w *strings.Builder, method string, u *url.URL, body []byte) {
	fmt.Fprintf(w, "curl -X %s %s", method, shellQuote(u.Redacted()))

	if len(body) != 0 {
		w.WriteString(" -d ")
		w.WriteString(shellQuote(string(body)))
	}
}

// shellQuote quotes s for use as a single argument in a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
