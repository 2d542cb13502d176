package fixtures

import (
	"context"
	"net/url"

	"github.com/dogmatiq/tether"
)

// TransportStub is a test implementation of the tether.Transport interface.
type TransportStub struct {
	// Config is the configuration that the stub was constructed with.
	Config tether.TransportConfig

	PerformRequestFunc func(
		ctx context.Context,
		method, path string,
		params url.Values,
		body any,
	) (*tether.Response, error)
}

var _ tether.Transport = (*TransportStub)(nil)

// NewTransportStub returns a new TransportStub constructed from cfg. It is a
// tether.TransportFactory.
func NewTransportStub(cfg tether.TransportConfig) (tether.Transport, error) {
	return &TransportStub{Config: cfg}, nil
}

// PerformRequest calls s.PerformRequestFunc if it is non-nil. Otherwise, it
// returns an empty response with a 200 status.
func (s *TransportStub) PerformRequest(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*tether.Response, error) {
	if s.PerformRequestFunc != nil {
		return s.PerformRequestFunc(ctx, method, path, params, body)
	}

	return &tether.Response{Status: 200}, nil
}

// Hosts returns s.Config.Hosts.
func (s *TransportStub) Hosts() []tether.Endpoint {
	return s.Config.Hosts
}

// Logger returns s.Config.Logger.
func (s *TransportStub) Logger() tether.Logger {
	return s.Config.Logger
}

// Tracer returns s.Config.Tracer.
func (s *TransportStub) Tracer() tether.Logger {
	return s.Config.Tracer
}
