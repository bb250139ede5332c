package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medilink/backend/internal/adapters/cache"
	"github.com/medilink/backend/internal/adapters/database"
	"github.com/medilink/backend/internal/adapters/memory"
	"github.com/medilink/backend/internal/adapters/resilience"
	"github.com/medilink/backend/internal/api/handlers"
	"github.com/medilink/backend/internal/api/middleware"
	"github.com/medilink/backend/internal/api/routes"
	"github.com/medilink/backend/internal/domain/providers"
	"github.com/medilink/backend/internal/domain/repositories"
	"github.com/medilink/backend/internal/infrastructure/clients/postgres"
	"github.com/medilink/backend/internal/infrastructure/clients/redis"
	"github.com/medilink/backend/internal/infrastructure/observability"
	"github.com/medilink/backend/internal/query/services"
	"github.com/medilink/backend/pkg/config"
	"github.com/rs/zerolog/log"
)

// stores bundles the repositories the discovery engine reads from
type stores struct {
	facilities    repositories.FacilityRepository
	practitioners repositories.PractitionerRepository
	health        routes.HealthCheck
	close         func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(observability.LoggerOptions{
		Service: cfg.OTEL.ServiceName,
		Version: cfg.OTEL.ServiceVersion,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	st, err := openStores(cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open data store")
	}
	defer st.close()

	// Redis is optional; the service runs uncached without it
	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
		}
	}

	facilities := st.facilities
	practitioners := st.practitioners

	if cfg.Breaker.Enabled {
		facilities = resilience.NewFacilityRepository(facilities, resilience.NewBreaker("facilities", cfg.Breaker, metrics))
		practitioners = resilience.NewPractitionerRepository(practitioners, resilience.NewBreaker("practitioners", cfg.Breaker, metrics))
	}

	if cacheProvider != nil {
		facilities = cache.NewCachedFacilityRepository(facilities, cacheProvider, cfg.Redis.FacilityTTLSeconds, metrics)
		log.Info().Int("ttl_seconds", cfg.Redis.FacilityTTLSeconds).Msg("Facility repository wrapped with cache")
	}

	discovery := services.NewDiscoveryService(facilities, practitioners, services.Options{
		StrictRadius:            cfg.Discovery.StrictRadius,
		FacilitySearchLimit:     cfg.Discovery.FacilitySearchLimit,
		PractitionerSearchLimit: cfg.Discovery.PractitionerSearchLimit,
		StoreTimeout:            cfg.Discovery.StoreTimeout,
	})

	limits := handlers.PageLimits{Default: cfg.Discovery.DefaultPageSize, Max: cfg.Discovery.MaxPageSize}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, cfg.Redis.ResponseTTLSeconds, metrics)
	}

	router := routes.NewRouter(
		handlers.NewFacilityHandler(discovery, limits),
		handlers.NewPractitionerHandler(discovery, limits),
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		st.health,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("store", cfg.Store.Driver).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openStores connects the configured storage driver
func openStores(cfg *config.Config, metrics *observability.Metrics) (*stores, error) {
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		if cfg.Store.SeedFile != "" {
			ds, err := memory.ReadDatasetFile(cfg.Store.SeedFile)
			if err != nil {
				return nil, err
			}
			store = memory.NewStoreFromDataset(ds)
			log.Info().
				Str("file", cfg.Store.SeedFile).
				Int("facilities", len(ds.Facilities)).
				Int("practitioners", len(ds.Practitioners)).
				Msg("Loaded in-memory dataset")
		}
		return &stores{
			facilities:    memory.NewFacilityRepository(store),
			practitioners: memory.NewPractitionerRepository(store),
			close:         func() {},
		}, nil

	case "postgres":
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return &stores{
			facilities:    database.NewFacilityAdapter(pgClient, metrics),
			practitioners: database.NewPractitionerAdapter(pgClient, metrics),
			health:        pgClient.Ping,
			close: func() {
				if err := pgClient.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing PostgreSQL client")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
