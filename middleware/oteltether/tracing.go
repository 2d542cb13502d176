package oteltether

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/dogmatiq/tether"
	"github.com/dogmatiq/tether/internal/version"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing is an implementation of tether.Transport that records an
// OpenTelemetry span for each request.
type Tracing struct {
	// Next is the transport that performs the requests.
	Next tether.Transport

	// TracerProvider is the OpenTelemetry TracerProvider to use for creating
	// spans.
	TracerProvider trace.TracerProvider

	once   sync.Once
	tracer trace.Tracer
}

var _ tether.Transport = (*Tracing)(nil)

// WithTracing returns a tether.TransportFactory that wraps the transports
// produced by next in a Tracing transport.
//
// If next is nil, tether.NewHTTPTransport() is used.
func WithTracing(
	next tether.TransportFactory,
	tp trace.TracerProvider,
) tether.TransportFactory {
	if next == nil {
		next = tether.NewHTTPTransport
	}

	return func(cfg tether.TransportConfig) (tether.Transport, error) {
		t, err := next(cfg)
		if err != nil {
			return nil, err
		}

		return &Tracing{
			Next:           t,
			TracerProvider: tp,
		}, nil
	}
}

// PerformRequest performs a request via t.Next within a new client span.
func (t *Tracing) PerformRequest(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*tether.Response, error) {
	t.init()

	ctx, span := t.tracer.Start(
		ctx,
		method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(requestAttributes(method, path)...),
	)
	defer span.End()

	res, err := t.Next.PerformRequest(ctx, method, path, params, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return res, err
	}

	span.SetAttributes(statusAttributes(res.Status)...)

	if res.Status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(res.Status))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return res, nil
}

// Hosts returns the endpoints of t.Next.
func (t *Tracing) Hosts() []tether.Endpoint {
	return t.Next.Hosts()
}

// Logger returns the logger of t.Next.
func (t *Tracing) Logger() tether.Logger {
	return t.Next.Logger()
}

// Tracer returns the tracer of t.Next.
func (t *Tracing) Tracer() tether.Logger {
	return t.Next.Tracer()
}

// init initializes the tracer if it has not already been initialized.
func (t *Tracing) init() {
	t.once.Do(func() {
		t.tracer = t.TracerProvider.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(version.Version),
		)
	})
}
