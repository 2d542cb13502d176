package tether

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dogmatiq/tether/internal/version"
	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNoHosts is returned by NewHTTPTransport() when it is given an empty list
// of endpoints.
var ErrNoHosts = errors.New("at least one host is required")

// HTTPTransport is a Transport that sends requests over HTTP.
//
// Requests are distributed across the endpoints in round-robin order. It does
// not retry failed requests. It is safe for concurrent use.
type HTTPTransport struct {
	hosts  []Endpoint
	logger Logger
	tracer Logger

	client *http.Client
	scheme string
	header http.Header

	// prev is the index of the endpoint that the last request was sent to. It
	// is incremented to select the next endpoint.
	prev uint64 // atomic
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a new HTTPTransport. It is a TransportFactory, and
// is used by New() when no other transport is configured.
//
// It recognizes the following options:
//
//   - "scheme": the URL scheme (string) used for endpoints that do not
//     specify one, defaults to "http"
//   - "timeout": the timeout for each request, as a time.Duration or a
//     string accepted by time.ParseDuration()
//   - "http_client": the *http.Client used to send requests
//   - "headers": headers sent with every request, as an http.Header or a
//     map[string]string; a "User-Agent" header replaces the default one
//
// Other options are ignored.
func NewHTTPTransport(cfg TransportConfig) (Transport, error) {
	if len(cfg.Hosts) == 0 {
		return nil, ErrNoHosts
	}

	t := &HTTPTransport{
		hosts:  cfg.Hosts,
		logger: cfg.Logger,
		tracer: cfg.Tracer,
		scheme: "http",
		header: http.Header{"User-Agent": {version.UserAgent()}},
		prev:   ^uint64(0),
	}

	var (
		client  *http.Client
		timeout time.Duration
	)

	for _, opt := range cfg.Options {
		var err error

		switch opt.Key {
		case "scheme":
			t.scheme, err = schemeOption(opt.Value)
		case "timeout":
			timeout, err = timeoutOption(opt.Value)
		case "http_client":
			client, err = clientOption(opt.Value)
		case "headers":
			err = headersOption(t.header, opt.Value)
		}

		if err != nil {
			return nil, fmt.Errorf("invalid %q transport option: %w", opt.Key, err)
		}
	}

	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(cleanhttp.DefaultPooledTransport()),
		}
	} else {
		c := *client
		client = &c
	}

	if timeout != 0 {
		client.Timeout = timeout
	}

	t.client = client

	return t, nil
}

// Hosts returns the endpoints that the transport sends requests to.
func (t *HTTPTransport) Hosts() []Endpoint {
	return t.hosts
}

// Logger returns the logger used to record requests.
func (t *HTTPTransport) Logger() Logger {
	return t.logger
}

// Tracer returns the logger used to trace requests.
func (t *HTTPTransport) Tracer() Logger {
	return t.tracer
}

// PerformRequest sends an HTTP request to the next endpoint.
//
// body is sent as-is if it is a []byte, string or io.Reader, otherwise it is
// encoded as JSON.
func (t *HTTPTransport) PerformRequest(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*Response, error) {
	ep := t.nextEndpoint()
	u := t.url(ep, path, params)

	data, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var r io.Reader = http.NoBody
	if data != nil {
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, err
	}

	for k, v := range t.header {
		req.Header[k] = v
	}

	if data != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if ep.User != "" {
		req.SetBasicAuth(ep.User, ep.Password)
	}

	if t.tracer != nil {
		traceRequest(ctx, t.tracer, method, u, data)
	}

	start := time.Now()

	res, err := t.client.Do(req)
	if err != nil {
		if t.logger != nil {
			logError(ctx, t.logger, method, u, err, time.Since(start))
		}
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   resBody,
	}

	if t.logger != nil {
		logResponse(ctx, t.logger, method, u, response, time.Since(start))
	}

	return response, nil
}

// nextEndpoint returns the endpoint to use for the next request.
func (t *HTTPTransport) nextEndpoint() Endpoint {
	n := atomic.AddUint64(&t.prev, 1)
	return t.hosts[n%uint64(len(t.hosts))]
}

// url returns the URL of the request with the given path and parameters on
// the endpoint ep.
func (t *HTTPTransport) url(ep Endpoint, path string, params url.Values) *url.URL {
	scheme := ep.Scheme
	if scheme == "" {
		scheme = t.scheme
	}

	return &url.URL{
		Scheme:   scheme,
		Host:     ep.Address(),
		Path:     joinPath(ep.Path, path),
		RawQuery: params.Encode(),
	}
}

// joinPath joins an endpoint's path prefix to a request path.
func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return prefix + path
}

// encodeBody returns the bytes to send as the body of a request.
//
// It returns nil if there is no body.
func encodeBody(body any) ([]byte, error) {
	switch body := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return body, nil
	case string:
		return []byte(body), nil
	case io.Reader:
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("unable to read request body: %w", err)
		}
		return data, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("unable to marshal request body: %w", err)
		}
		return data, nil
	}
}

func schemeOption(v any) (string, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("expected a non-empty string, got %s", describeValue(v))
	}

	return s, nil
}

func timeoutOption(v any) (time.Duration, error) {
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case string:
		return time.ParseDuration(v)
	}

	return 0, fmt.Errorf("expected a duration, got %s", describeValue(v))
}

func clientOption(v any) (*http.Client, error) {
	c, ok := v.(*http.Client)
	if !ok || c == nil {
		return nil, fmt.Errorf("expected a non-nil *http.Client, got %s", describeValue(v))
	}

	return c, nil
}

func headersOption(h http.Header, v any) error {
	switch v := v.(type) {
	case http.Header:
		for k, values := range v {
			h.Del(k)
			for _, x := range values {
				h.Add(k, x)
			}
		}
	case map[string]string:
		for k, x := range v {
			h.Set(k, x)
		}
	case map[string]any:
		for k, x := range v {
			s, ok := x.(string)
			if !ok {
				return fmt.Errorf("the value of the %q header must be a string, got %s", k, describeValue(x))
			}
			h.Set(k, s)
		}
	default:
		return fmt.Errorf("expected a map of headers, got %s", describeValue(v))
	}

	return nil
}
