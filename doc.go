// Package tether is a thin client that sends requests via a pluggable
// transport.
//
// A Client is constructed from a flexible host configuration: nothing at all
// (which means "localhost"), a single "host" or "host:port" string, a list of
// such strings, or structured Endpoint values. The configuration is resolved
// into an ordered list of endpoints that is used to construct the transport.
//
// The transport does all of the real work. HTTPTransport is used by default;
// any other implementation of the Transport interface can be supplied,
// either pre-built or via a TransportFactory.
package tether
