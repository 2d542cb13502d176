package tether

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrInvalidHostConfig is returned when a host configuration value has a shape
// that cannot be interpreted as a list of endpoints.
var ErrInvalidHostConfig = errors.New("cannot parse host configuration")

// ResolveOption is an option that changes the behavior of ResolveHosts().
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	randomize bool
	source    rand.Source
}

// RandomizeHosts is a ResolveOption that shuffles the resolved endpoints into
// a uniformly random order.
func RandomizeHosts() ResolveOption {
	return func(opts *resolveOptions) {
		opts.randomize = true
	}
}

// WithShuffleSource is a ResolveOption that sets the source of randomness used
// when the endpoints are shuffled. It has no effect unless RandomizeHosts() is
// also used.
//
// If it is not specified the global source from math/rand/v2 is used.
func WithShuffleSource(src rand.Source) ResolveOption {
	return func(opts *resolveOptions) {
		opts.source = src
	}
}

// ResolveHosts converts a host specification into an ordered list of
// endpoints.
//
// If spec is nil, the result contains a single endpoint for DefaultHost. An
// empty HostList produces an empty result.
//
// Strings are split on their first colon into a host and port. A string with
// an empty host name, such as "" or ":9200", is rejected. Endpoint values are
// returned exactly as given.
func ResolveHosts(spec HostSpec, options ...ResolveOption) ([]Endpoint, error) {
	var opts resolveOptions
	for _, opt := range options {
		opt(&opts)
	}

	var endpoints []Endpoint

	switch spec := spec.(type) {
	case nil:
		endpoints = []Endpoint{{Host: DefaultHost}}
	case Host:
		ep, err := parseHost(spec)
		if err != nil {
			return nil, err
		}
		endpoints = []Endpoint{ep}
	case Endpoint:
		endpoints = []Endpoint{spec}
	case HostList:
		endpoints = make([]Endpoint, 0, len(spec))

		for i, s := range spec {
			switch s := s.(type) {
			case Host:
				ep, err := parseHost(s)
				if err != nil {
					return nil, fmt.Errorf("%w (element %d of the host list)", err, i)
				}
				endpoints = append(endpoints, ep)
			case Endpoint:
				endpoints = append(endpoints, s)
			default:
				return nil, fmt.Errorf(
					"%w: element %d of the host list is %s, expected a host string or endpoint",
					ErrInvalidHostConfig,
					i,
					describeValue(s),
				)
			}
		}
	default:
		return nil, fmt.Errorf(
			"%w: unsupported host specification (%s)",
			ErrInvalidHostConfig,
			describeValue(spec),
		)
	}

	if opts.randomize {
		shuffle(endpoints, opts.source)
	}

	return endpoints, nil
}

// parseHost parses a "host" or "host:port" string into an endpoint.
//
// Only the first colon is significant, everything after it is the port.
func parseHost(h Host) (Endpoint, error) {
	host, port, _ := strings.Cut(string(h), ":")

	if host == "" {
		return Endpoint{}, fmt.Errorf(
			"%w: the host name in %q is empty",
			ErrInvalidHostConfig,
			string(h),
		)
	}

	return Endpoint{
		Host: host,
		Port: port,
	}, nil
}

// shuffle permutes endpoints in place using a Fisher-Yates shuffle.
func shuffle(endpoints []Endpoint, src rand.Source) {
	swap := func(i, j int) {
		endpoints[i], endpoints[j] = endpoints[j], endpoints[i]
	}

	if src == nil {
		rand.Shuffle(len(endpoints), swap)
		return
	}

	rand.New(src).Shuffle(len(endpoints), swap)
}

// describeValue returns a short description of v for use in error messages.
func describeValue(v any) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}
