package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/medilink/backend/internal/domain/providers"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

// CacheMiddleware caches successful GET responses under /api/ for a fixed TTL
type CacheMiddleware struct {
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

// NewCacheMiddleware creates a new cache middleware. A nil cache disables it; metrics may be nil.
func NewCacheMiddleware(cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CacheMiddleware {
	return &CacheMiddleware{
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cache == nil || m.ttlSeconds <= 0 || r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		cacheKey := responseCacheKey(r)

		cached, err := m.cache.Get(r.Context(), cacheKey)
		if err == nil {
			observability.RecordCacheHit(r.Context(), m.metrics, "http_response")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to write cached response")
			}
			return
		}
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("Response cache read failed")
		}

		observability.RecordCacheMiss(r.Context(), m.metrics, "http_response")
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), cacheKey, recorder.body.Bytes(), m.ttlSeconds); err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to cache response")
			}
		}
	})
}

// responseCacheKey hashes the path and the sorted query so parameter order does not matter
func responseCacheKey(r *http.Request) string {
	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		query = url.Values{}
	}
	key := fmt.Sprintf("%s:%s?%s", r.Method, r.URL.Path, query.Encode())

	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
