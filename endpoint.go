package tether

import "net"

// DefaultHost is the host used when no host configuration is supplied at all.
const DefaultHost = "localhost"

// Endpoint describes a single host that a transport may send requests to.
type Endpoint struct {
	// Host is the host name or IP address of the endpoint.
	Host string

	// Port is the port number of the endpoint, kept exactly as it was
	// supplied. It is empty if no port was specified, in which case the
	// transport chooses a default.
	Port string

	// Scheme is the URL scheme used to reach the endpoint, such as "http" or
	// "https". It may be empty.
	Scheme string

	// User and Password are credentials associated with the endpoint. They
	// may be empty.
	User     string
	Password string

	// Path is a path prefix that is prepended to the path of each request
	// sent to the endpoint. It may be empty.
	Path string

	// Attributes holds any additional transport-specific information about
	// the endpoint.
	Attributes map[string]any
}

// HasPort returns true if a port was specified for the endpoint.
func (e Endpoint) HasPort() bool {
	return e.Port != ""
}

// Address returns the "host:port" address of the endpoint, or just the host
// if no port was specified.
func (e Endpoint) Address() string {
	if !e.HasPort() {
		return e.Host
	}

	return net.JoinHostPort(e.Host, e.Port)
}

// String returns a human-readable representation of the endpoint.
func (e Endpoint) String() string {
	if e.Scheme == "" {
		return e.Address()
	}

	return e.Scheme + "://" + e.Address() + e.Path
}

func (Endpoint) hostSpec() {}

// HostSpec is a user-supplied description of the hosts that a client should
// connect to.
//
// It is one of Host, HostList or Endpoint. A nil HostSpec means that no hosts
// were specified.
type HostSpec interface {
	hostSpec()
}

// Host is a HostSpec that describes a single host as a string, either just a
// host name ("example.org") or a host and port ("example.org:9200").
type Host string

func (Host) hostSpec() {}

// HostList is a HostSpec that describes an ordered list of hosts.
//
// Each element must be either a Host or an Endpoint.
type HostList []HostSpec

func (HostList) hostSpec() {}

// Hosts returns a HostList containing a Host for each of the given strings.
func Hosts(hosts ...string) HostList {
	list := make(HostList, len(hosts))
	for i, h := range hosts {
		list[i] = Host(h)
	}
	return list
}
