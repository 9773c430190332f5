// Package telemetry wires Prometheus metrics and OpenTelemetry tracing into
// the HTTP server. Traces are exported over OTLP/gRPC when an endpoint is
// configured; metrics are always collected and served at /metrics.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds the telemetry settings.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // host:port of the collector; empty disables export
	SampleRate     float64
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "hms-server"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.SampleRate <= 0 || c.SampleRate > 1 {
		c.SampleRate = 1.0
	}
}

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// Provider owns the metric registry and the tracer provider.
type Provider struct {
	cfg      Config
	registry *prometheus.Registry
	tp       *sdktrace.TracerProvider
	tracer   trace.Tracer

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	active   prometheus.Gauge
	bookings *prometheus.CounterVec
}

// NewProvider builds the metrics registry and a tracer provider, installs the
// tracer provider and W3C propagators globally and, when OTLPEndpoint is set,
// attaches a batching OTLP/gRPC exporter.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	var opts []sdktrace.TracerProviderOption
	if cfg.OTLPEndpoint != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithTimeout(3*time.Second),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	p := newProvider(cfg, opts...)
	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}

func newProvider(cfg Config, opts ...sdktrace.TracerProviderOption) *Provider {
	cfg.applyDefaults()

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)
	opts = append(opts,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)
	tp := sdktrace.NewTracerProvider(opts...)

	p := &Provider{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		tp:       tp,
		tracer:   tp.Tracer("github.com/Deeppati2005/hms"),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hms_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hms_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		}),
		bookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hms_bookings_total",
				Help: "Appointment booking attempts by outcome",
			},
			[]string{"outcome"},
		),
	}

	p.registry.MustRegister(
		p.requests,
		p.duration,
		p.active,
		p.bookings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// RecordBooking counts a booking attempt.
func (p *Provider) RecordBooking(outcome string) {
	p.bookings.WithLabelValues(outcome).Inc()
}

// PoolStatsFunc reports acquired and idle database connections.
type PoolStatsFunc func() (acquired, idle int32)

// RegisterPoolStats exports database pool gauges sampled at scrape time.
func (p *Provider) RegisterPoolStats(fn PoolStatsFunc) error {
	acquired := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "hms_db_pool_acquired_conns",
		Help: "Database connections currently in use",
	}, func() float64 {
		a, _ := fn()
		return float64(a)
	})
	idle := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "hms_db_pool_idle_conns",
		Help: "Idle database connections",
	}, func() float64 {
		_, i := fn()
		return float64(i)
	})
	if err := p.registry.Register(acquired); err != nil {
		return err
	}
	return p.registry.Register(idle)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// TracingMiddleware names the active server span after the matched echo
// route and records the response status on it. When the request carries no
// span (the server is not wrapped by otelhttp) a new one is started.
func (p *Provider) TracingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			span := trace.SpanFromContext(ctx)
			if !span.SpanContext().IsValid() {
				ctx, span = p.tracer.Start(ctx, "HTTP "+req.Method, trace.WithSpanKind(trace.SpanKindServer))
				defer span.End()
				c.SetRequest(req.WithContext(ctx))
			}

			err := next(c)

			route := routeOf(c)
			status := statusOf(c, err)
			span.SetName("HTTP " + req.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if rid, ok := c.Get("request_id").(string); ok && rid != "" {
				span.SetAttributes(attribute.String("request.id", rid))
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
				if err != nil {
					span.RecordError(err)
				}
			}
			return err
		}
	}
}

// MetricsMiddleware records request counts and latencies by route pattern.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.active.Inc()
			defer p.active.Dec()

			start := time.Now()
			err := next(c)

			method := c.Request().Method
			route := routeOf(c)
			p.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			p.requests.WithLabelValues(method, route, strconv.Itoa(statusOf(c, err))).Inc()
			return err
		}
	}
}

// Handler serves the registry in Prometheus exposition format.
func (p *Provider) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}

// routeOf returns the route pattern so label cardinality stays bounded.
func routeOf(c echo.Context) string {
	if r := c.Path(); r != "" {
		return r
	}
	return "unmatched"
}

// statusOf resolves the status the error handler will eventually write.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
