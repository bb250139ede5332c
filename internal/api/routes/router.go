package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/medilink/backend/internal/api/handlers"
	"github.com/medilink/backend/internal/api/middleware"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler     *handlers.FacilityHandler
	practitionerHandler *handlers.PractitionerHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	health          HealthCheck
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware, health and metrics may be nil.
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	practitionerHandler *handlers.PractitionerHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	health HealthCheck,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		facilityHandler:     facilityHandler,
		practitionerHandler: practitionerHandler,
		cacheMiddleware:     cacheMiddleware,
		allowedOrigins:      allowedOrigins,
		health:              health,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthCheck)

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/search", r.facilityHandler.SearchFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("GET /api/facilities/{id}/practitioners", r.facilityHandler.ListFacilityPractitioners)

	// Practitioner endpoints
	r.mux.HandleFunc("GET /api/practitioners", r.practitionerHandler.ListPractitioners)
	r.mux.HandleFunc("GET /api/practitioners/search", r.practitionerHandler.SearchPractitioners)
	r.mux.HandleFunc("GET /api/practitioners/{id}", r.practitionerHandler.GetPractitioner)

	// Apply middleware in reverse order (last middleware wraps first).
	// Everything between the observability middleware and the mux must pass the
	// request through unchanged so the matched pattern can be read afterwards.
	var handler http.Handler = r.mux

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := r.health(ctx); err != nil {
			observability.LoggerFromContext(req.Context()).Warn().Err(err).Msg("Health check failed")
			writeHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}

	writeHealth(w, http.StatusOK, "ok")
}

func writeHealth(w http.ResponseWriter, statusCode int, status string) {
	w.WriteHeader(statusCode)
	if _, err := fmt.Fprintf(w, `{"status":%q}`, status); err != nil {
		log.Error().Err(err).Msg("Failed to write health response")
	}
}
