// Package oteltether provides OpenTelemetry instrumentation for Tether
// transports.
//
// Tracing and Metrics wrap any tether.Transport. WithTracing() and
// WithMetrics() wrap a tether.TransportFactory so that the instrumentation can
// be installed via tether.WithTransportFactory().
package oteltether
