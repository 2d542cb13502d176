package oteltether_test

import (
	"context"
	"errors"
	"net/url"

	"github.com/dogmatiq/tether"
	. "github.com/dogmatiq/tether/internal/fixtures"
	. "github.com/dogmatiq/tether/middleware/oteltether"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/codes"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var _ = Describe("type Tracing", func() {
	var (
		response  *tether.Response
		transport *TransportStub
		recorder  *tracetest.SpanRecorder
		provider  *tracesdk.TracerProvider
		tracing   *Tracing
	)

	BeforeEach(func() {
		response = &tether.Response{Status: 200}

		transport = &TransportStub{
			Config: tether.TransportConfig{
				Hosts:  []tether.Endpoint{{Host: "<host>"}},
				Logger: zap.NewNop(),
				Tracer: zap.NewNop(),
			},
			PerformRequestFunc: func(
				context.Context,
				string, string,
				url.Values,
				any,
			) (*tether.Response, error) {
				return response, nil
			},
		}

		recorder = tracetest.NewSpanRecorder()
		provider = tracesdk.NewTracerProvider(
			tracesdk.WithSpanProcessor(recorder),
		)

		tracing = &Tracing{
			Next:           transport,
			TracerProvider: provider,
		}
	})

	Describe("func PerformRequest()", func() {
		It("forwards to the next transport", func() {
			params := url.Values{"q": {"<query>"}}

			transport.PerformRequestFunc = func(
				ctx context.Context,
				method, path string,
				p url.Values,
				body any,
			) (*tether.Response, error) {
				Expect(trace.SpanFromContext(ctx).IsRecording()).To(BeTrue())
				Expect(method).To(Equal("GET"))
				Expect(path).To(Equal("/_search"))
				Expect(p).To(Equal(params))
				Expect(body).To(Equal("<body>"))
				return response, nil
			}

			res, err := tracing.PerformRequest(context.Background(), "GET", "/_search", params, "<body>")
			Expect(err).ShouldNot(HaveOccurred())
			Expect(res).To(BeIdenticalTo(response))
		})

		It("records a span for a successful request", func() {
			_, err := tracing.PerformRequest(context.Background(), "GET", "/_search", nil, nil)
			Expect(err).ShouldNot(HaveOccurred())

			spans := recorder.Ended()
			Expect(spans).To(HaveLen(1))

			span := spans[0]
			Expect(span.Name()).To(Equal("GET"))
			Expect(span.SpanKind()).To(Equal(trace.SpanKindClient))
			Expect(span.Attributes()).To(ConsistOf(
				semconv.HTTPMethodKey.String("GET"),
				semconv.HTTPTargetKey.String("/_search"),
				semconv.HTTPStatusCodeKey.Int(200),
			))
			Expect(span.Status()).To(Equal(
				tracesdk.Status{
					Code: codes.Ok,
				},
			))
			Expect(span.InstrumentationScope().Name).To(Equal("github.com/dogmatiq/tether/middleware/oteltether"))
		})

		It("marks the span as an error if the response has an error status", func() {
			response.Status = 503

			_, err := tracing.PerformRequest(context.Background(), "GET", "/", nil, nil)
			Expect(err).ShouldNot(HaveOccurred())

			span := recorder.Ended()[0]
			Expect(span.Status()).To(Equal(
				tracesdk.Status{
					Code:        codes.Error,
					Description: "Service Unavailable",
				},
			))
		})

		It("records the transport's error and returns it unchanged", func() {
			expect := errors.New("<error>")

			transport.PerformRequestFunc = func(
				context.Context,
				string, string,
				url.Values,
				any,
			) (*tether.Response, error) {
				return nil, expect
			}

			_, err := tracing.PerformRequest(context.Background(), "GET", "/", nil, nil)
			Expect(err).To(BeIdenticalTo(expect))

			span := recorder.Ended()[0]
			Expect(span.Status()).To(Equal(
				tracesdk.Status{
					Code:        codes.Error,
					Description: "<error>",
				},
			))
			Expect(span.Events()).To(HaveLen(1))
			Expect(span.Events()[0].Name).To(Equal("exception"))
		})
	})

	It("exposes the next transport's hosts, logger and tracer", func() {
		Expect(tracing.Hosts()).To(Equal(transport.Config.Hosts))
		Expect(tracing.Logger()).To(BeIdenticalTo(transport.Config.Logger))
		Expect(tracing.Tracer()).To(BeIdenticalTo(transport.Config.Tracer))
	})

	Describe("func WithTracing()", func() {
		It("wraps the transport produced by the factory", func() {
			client, err := tether.New(
				tether.WithHost("<host>"),
				tether.WithTransportFactory(
					WithTracing(NewTransportStub, provider),
				),
			)
			Expect(err).ShouldNot(HaveOccurred())

			t, ok := client.Transport().(*Tracing)
			Expect(ok).To(BeTrue())
			Expect(t.Next).To(BeAssignableToTypeOf(&TransportStub{}))
			Expect(t.Hosts()).To(Equal([]tether.Endpoint{{Host: "<host>"}}))

			_, err = client.PerformRequest(context.Background(), "HEAD", "/", nil, nil)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(recorder.Ended()).To(HaveLen(1))
		})

		It("returns the factory's error unchanged", func() {
			expect := errors.New("<error>")

			factory := WithTracing(
				func(tether.TransportConfig) (tether.Transport, error) {
					return nil, expect
				},
				provider,
			)

			_, err := factory(tether.TransportConfig{})
			Expect(err).To(BeIdenticalTo(expect))
		})

		It("uses the HTTP transport if no factory is given", func() {
			factory := WithTracing(nil, provider)

			t, err := factory(tether.TransportConfig{
				Hosts: []tether.Endpoint{{Host: "<host>"}},
			})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(t.(*Tracing).Next).To(BeAssignableToTypeOf(&tether.HTTPTransport{}))
		})
	})
})
