package middleware

import (
	"net/http"
	"time"

	"github.com/medilink/backend/internal/infrastructure/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP requests.
// Handlers below it must pass the request through unchanged so the matched route
// pattern is visible once they return.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newStatusWriter(w)
			start := time.Now()

			next.ServeHTTP(rw, r)

			// Use route pattern instead of raw path to avoid high cardinality
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}

			span := trace.SpanFromContext(r.Context())
			span.SetName(route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)

			observability.RecordRequestMetric(r.Context(), metrics, r.Method, route, rw.statusCode, time.Since(start))
		})

		return otelhttp.NewHandler(inner, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
