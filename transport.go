package tether

import (
	"context"
	"net/http"
	"net/url"
)

// Transport is an interface for performing requests against a set of
// endpoints.
//
// Connection management, retries, load balancing and serialization are all
// the responsibility of the transport. Implementations define their own rules
// for concurrent use.
type Transport interface {
	// PerformRequest sends a request to one of the transport's endpoints and
	// returns the response.
	PerformRequest(
		ctx context.Context,
		method, path string,
		params url.Values,
		body any,
	) (*Response, error)

	// Hosts returns the endpoints that the transport sends requests to.
	Hosts() []Endpoint

	// Logger returns the logger used to record requests, or nil if requests
	// are not logged.
	Logger() Logger

	// Tracer returns the logger used to trace requests, or nil if requests are
	// not traced.
	Tracer() Logger
}

// TransportFactory is a function that constructs a new transport.
type TransportFactory func(TransportConfig) (Transport, error)

// TransportConfig is the configuration passed to a TransportFactory.
type TransportConfig struct {
	// Hosts is the list of endpoints the transport sends requests to.
	Hosts []Endpoint

	// Logger is the logger used to record requests. It may be nil.
	Logger Logger

	// Tracer is the logger used to trace requests. It may be nil.
	Tracer Logger

	// Options contains transport-specific options, in the order they were
	// supplied.
	Options TransportOptions
}

// TransportOption is a single transport-specific option.
type TransportOption struct {
	Key   string
	Value any
}

// TransportOptions is an ordered set of transport-specific options.
//
// Each key appears at most once.
type TransportOptions []TransportOption

// Lookup returns the value of the option with the given key.
func (o TransportOptions) Lookup(key string) (any, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt.Value, true
		}
	}

	return nil, false
}

// with returns a copy of o with the option k set to v.
//
// If k is already present its value is replaced without changing its
// position, otherwise it is appended.
func (o TransportOptions) with(k string, v any) TransportOptions {
	options := make(TransportOptions, len(o), len(o)+1)
	copy(options, o)

	for i, opt := range options {
		if opt.Key == k {
			options[i].Value = v
			return options
		}
	}

	return append(options, TransportOption{k, v})
}

// Response is the response to a request made via a Transport.
type Response struct {
	// Status is the status code of the response.
	Status int

	// Header contains the response headers.
	Header http.Header

	// Body is the response body.
	Body []byte
}
