package oteltether

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// instrumentationName is the name of the instrumentation library reported to
// OpenTelemetry.
const instrumentationName = "github.com/dogmatiq/tether/middleware/oteltether"

// requestAttributes returns the OpenTelemetry attributes that describe a
// request.
func requestAttributes(method, path string) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.HTTPMethodKey.String(method),
		semconv.HTTPTargetKey.String(path),
	}
}

// statusAttributes returns the OpenTelemetry attributes that describe a
// response status code.
func statusAttributes(status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.HTTPStatusCodeKey.Int(status),
	}
}
