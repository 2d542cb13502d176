package tether

import (
	"context"
	"math/rand/v2"
	"net/url"
)

// Client sends requests via a transport.
type Client struct {
	transport Transport
}

// New returns a new client.
//
// If no transport is provided via WithTransport(), one is constructed from
// the resolved hosts using the factory provided via WithTransportFactory(), or
// NewHTTPTransport() if no factory is provided.
func New(options ...Option) (*Client, error) {
	var cfg clientConfig
	for _, opt := range options {
		opt(&cfg)
	}

	hosts, err := ResolveHosts(cfg.hostSpec(), cfg.resolveOptions...)
	if err != nil {
		return nil, err
	}

	if cfg.transport != nil {
		return &Client{cfg.transport}, nil
	}

	factory := cfg.factory
	if factory == nil {
		factory = NewHTTPTransport
	}

	logger := cfg.logger
	if logger == nil && cfg.log {
		logger = DefaultLogger()
	}

	tracer := cfg.tracer
	if tracer == nil && cfg.trace {
		tracer = DefaultTracer()
	}

	t, err := factory(
		TransportConfig{
			Hosts:   hosts,
			Logger:  logger,
			Tracer:  tracer,
			Options: cfg.transportOptions,
		},
	)
	if err != nil {
		return nil, err
	}

	return &Client{t}, nil
}

// Transport returns the client's transport.
func (c *Client) Transport() Transport {
	return c.transport
}

// PerformRequest sends a request via the client's transport.
//
// The arguments are passed to the transport unchanged, and its response and
// error are returned unchanged.
func (c *Client) PerformRequest(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*Response, error) {
	return c.transport.PerformRequest(ctx, method, path, params, body)
}

// Option is an option that changes the behavior of a client.
type Option func(*clientConfig)

type clientConfig struct {
	hosts, host, url HostSpec
	resolveOptions   []ResolveOption

	factory   TransportFactory
	transport Transport

	log, trace     bool
	logger, tracer Logger

	transportOptions TransportOptions
}

// hostSpec returns the first host specification that was supplied, checking
// WithHosts(), WithHost() and WithURL() in that order.
func (cfg *clientConfig) hostSpec() HostSpec {
	for _, s := range []HostSpec{cfg.hosts, cfg.host, cfg.url} {
		if s != nil {
			return s
		}
	}

	return nil
}

// WithHosts is an Option that sets the hosts that the client connects to.
//
// It takes precedence over WithHost() and WithURL().
func WithHosts(s HostSpec) Option {
	return func(cfg *clientConfig) {
		cfg.hosts = s
	}
}

// WithHost is an Option that sets a single host that the client connects to,
// in "host" or "host:port" form.
//
// It takes precedence over WithURL().
func WithHost(h string) Option {
	return func(cfg *clientConfig) {
		cfg.host = Host(h)
	}
}

// WithURL is an Option that sets the host that the client connects to.
//
// The URL is not parsed; it is treated the same as a host passed to
// WithHost().
func WithURL(u string) Option {
	return func(cfg *clientConfig) {
		cfg.url = Host(u)
	}
}

// WithRandomizedHosts is an Option that shuffles the resolved hosts before
// they are passed to the transport.
func WithRandomizedHosts() Option {
	return func(cfg *clientConfig) {
		cfg.resolveOptions = append(cfg.resolveOptions, RandomizeHosts())
	}
}

// WithRandSource is an Option that sets the source of randomness used by
// WithRandomizedHosts().
func WithRandSource(src rand.Source) Option {
	return func(cfg *clientConfig) {
		cfg.resolveOptions = append(cfg.resolveOptions, WithShuffleSource(src))
	}
}

// WithTransportFactory is an Option that sets the factory used to construct
// the client's transport.
func WithTransportFactory(f TransportFactory) Option {
	return func(cfg *clientConfig) {
		cfg.factory = f
	}
}

// WithTransport is an Option that sets a pre-built transport.
//
// The transport is used as-is. The client's host options and transport
// factory are not used to construct a transport.
func WithTransport(t Transport) Option {
	return func(cfg *clientConfig) {
		cfg.transport = t
	}
}

// WithLogging is an Option that passes DefaultLogger() to the transport
// factory, unless a logger is provided via WithLogger().
func WithLogging() Option {
	return func(cfg *clientConfig) {
		cfg.log = true
	}
}

// WithTracing is an Option that passes DefaultTracer() to the transport
// factory, unless a tracer is provided via WithTracer().
func WithTracing() Option {
	return func(cfg *clientConfig) {
		cfg.trace = true
	}
}

// WithLogger is an Option that passes l to the transport factory as the
// transport's logger.
func WithLogger(l Logger) Option {
	return func(cfg *clientConfig) {
		cfg.logger = l
	}
}

// WithTracer is an Option that passes l to the transport factory as the
// transport's tracer.
func WithTracer(l Logger) Option {
	return func(cfg *clientConfig) {
		cfg.tracer = l
	}
}

// WithTransportOption is an Option that passes a transport-specific option to
// the transport factory.
//
// Options are passed in the order they are first given. If the same key is
// given more than once the last value is used.
func WithTransportOption(k string, v any) Option {
	return func(cfg *clientConfig) {
		cfg.transportOptions = cfg.transportOptions.with(k, v)
	}
}
