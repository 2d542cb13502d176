package oteltether

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dogmatiq/tether"
	"github.com/dogmatiq/tether/internal/version"
	"go.opentelemetry.io/otel/metric"
)

// Metrics is an implementation of tether.Transport that records OpenTelemetry
// metrics for each request.
type Metrics struct {
	// Next is the transport that performs the requests.
	Next tether.Transport

	// MeterProvider is the OpenTelemetry MeterProvider used to create meters.
	MeterProvider metric.MeterProvider

	once     sync.Once
	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Int64Histogram
}

var _ tether.Transport = (*Metrics)(nil)

// WithMetrics returns a tether.TransportFactory that wraps the transports
// produced by next in a Metrics transport.
//
// If next is nil, tether.NewHTTPTransport() is used.
func WithMetrics(
	next tether.TransportFactory,
	mp metric.MeterProvider,
) tether.TransportFactory {
	if next == nil {
		next = tether.NewHTTPTransport
	}

	return func(cfg tether.TransportConfig) (tether.Transport, error) {
		t, err := next(cfg)
		if err != nil {
			return nil, err
		}

		return &Metrics{
			Next:          t,
			MeterProvider: mp,
		}, nil
	}
}

// PerformRequest performs a request via m.Next and records its outcome.
//
// A request is counted as an error if the transport returns an error or the
// response has a 4xx or 5xx status.
func (m *Metrics) PerformRequest(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*tether.Response, error) {
	m.init()

	attrs := requestAttributes(method, path)
	m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))

	start := time.Now()
	res, err := m.Next.PerformRequest(ctx, method, path, params, body)
	elapsed := time.Since(start)

	if err == nil {
		attrs = append(attrs, statusAttributes(res.Status)...)
	}

	attrOption := metric.WithAttributes(attrs...)
	m.duration.Record(ctx, durationToMillis(elapsed), attrOption)

	if err != nil || res.Status >= http.StatusBadRequest {
		m.errors.Add(ctx, 1, attrOption)
	}

	return res, err
}

// Hosts returns the endpoints of m.Next.
func (m *Metrics) Hosts() []tether.Endpoint {
	return m.Next.Hosts()
}

// Logger returns the logger of m.Next.
func (m *Metrics) Logger() tether.Logger {
	return m.Next.Logger()
}

// Tracer returns the tracer of m.Next.
func (m *Metrics) Tracer() tether.Logger {
	return m.Next.Tracer()
}

// init initializes the instruments if they have not already been initialized.
func (m *Metrics) init() {
	m.once.Do(func() {
		meter := m.MeterProvider.Meter(
			instrumentationName,
			metric.WithInstrumentationVersion(version.Version),
		)

		var err error

		m.requests, err = meter.Int64Counter(
			"tether.client.requests",
			metric.WithDescription("The number of requests performed by the transport."),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			panic(err)
		}

		m.errors, err = meter.Int64Counter(
			"tether.client.errors",
			metric.WithDescription("The number of requests that failed or produced an error status."),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			panic(err)
		}

		m.duration, err = meter.Int64Histogram(
			"tether.client.duration",
			metric.WithDescription("The amount of time it takes the transport to perform a request."),
			metric.WithUnit("ms"),
		)
		if err != nil {
			panic(err)
		}
	})
}

// durationToMillis converts a duration to milliseconds.
func durationToMillis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}
