// Package config loads tether client configuration using viper.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dogmatiq/tether"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.infratographer.com/x/viperx"
	"go.uber.org/multierr"
)

// ErrInvalidConfig is returned when a Config cannot be converted to client
// options.
var ErrInvalidConfig = errors.New("invalid client configuration")

// Config defines the client configuration structure.
type Config struct {
	// Hosts is the list of hosts the client connects to. It may be a
	// comma-separated string, a list of strings or a list of endpoint maps.
	Hosts any `mapstructure:"hosts"`

	// Host is a single host, used if Hosts is empty.
	Host string `mapstructure:"host"`

	// URL is a single host, used if Hosts and Host are empty.
	URL string `mapstructure:"url"`

	// Log enables the default request logger.
	Log bool `mapstructure:"log"`

	// Trace enables the default request tracer.
	Trace bool `mapstructure:"trace"`

	// RandomizeHosts shuffles the hosts before they are passed to the
	// transport.
	RandomizeHosts bool `mapstructure:"randomize_hosts"`

	// Transport contains options that are passed to the transport unchanged.
	Transport map[string]any `mapstructure:"transport"`
}

// MustViperFlags adds client config flags and viper bindings
func MustViperFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.StringSlice("hosts", nil, "hosts to connect to, in host[:port] form")
	viperx.MustBindFlag(v, "hosts", flags.Lookup("hosts"))

	flags.String("host", "", "a single host to connect to, used if --hosts is not set")
	viperx.MustBindFlag(v, "host", flags.Lookup("host"))

	flags.String("url", "", "a single host to connect to, used if --hosts and --host are not set")
	viperx.MustBindFlag(v, "url", flags.Lookup("url"))

	flags.Bool("log", false, "log each request")
	viperx.MustBindFlag(v, "log", flags.Lookup("log"))

	flags.Bool("trace", false, "write a curl command for each request")
	viperx.MustBindFlag(v, "trace", flags.Lookup("trace"))

	flags.Bool("randomize-hosts", false, "shuffle the hosts before connecting")
	viperx.MustBindFlag(v, "randomize_hosts", flags.Lookup("randomize-hosts"))
}

// Load decodes the client configuration from v.
func Load(v *viper.Viper) (Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode client configuration: %w", err)
	}

	return c, nil
}

// ClientOptions returns the tether options described by the configuration.
//
// Empty values are treated as absent. All problems with the configuration are
// reported, not just the first.
func (c Config) ClientOptions() ([]tether.Option, error) {
	var (
		options []tether.Option
		err     error
	)

	hosts, hostsErr := parseHosts(c.Hosts)
	err = multierr.Append(err, hostsErr)

	if hosts != nil {
		options = append(options, tether.WithHosts(hosts))
	}

	if c.Host != "" {
		options = append(options, tether.WithHost(c.Host))
	}

	if c.URL != "" {
		options = append(options, tether.WithURL(c.URL))
	}

	if c.RandomizeHosts {
		options = append(options, tether.WithRandomizedHosts())
	}

	if c.Log {
		options = append(options, tether.WithLogging())
	}

	if c.Trace {
		options = append(options, tether.WithTracing())
	}

	keys := make([]string, 0, len(c.Transport))
	for k := range c.Transport {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "" {
			err = multierr.Append(err, fmt.Errorf("%w: transport option names must not be empty", ErrInvalidConfig))
			continue
		}

		options = append(options, tether.WithTransportOption(k, c.Transport[k]))
	}

	if err != nil {
		return nil, err
	}

	return options, nil
}

// parseHosts converts the "hosts" value to a host specification. It returns
// nil if the value is empty.
func parseHosts(v any) (tether.HostSpec, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		var hosts []string
		for _, h := range strings.Split(v, ",") {
			if h = strings.TrimSpace(h); h != "" {
				hosts = append(hosts, h)
			}
		}

		switch len(hosts) {
		case 0:
			return nil, nil
		case 1:
			return tether.Host(hosts[0]), nil
		default:
			return tether.Hosts(hosts...), nil
		}
	case []string:
		if len(v) == 0 {
			return nil, nil
		}
	case []any:
		if len(v) == 0 {
			return nil, nil
		}
	}

	s, err := tether.ParseHostSpec(v)
	if err != nil {
		return nil, fmt.Errorf("%w: hosts: %w", ErrInvalidConfig, err)
	}

	return s, nil
}
