package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawmate/dogwalk-marketplace/internal/adapters/cache"
	"github.com/pawmate/dogwalk-marketplace/internal/adapters/database"
	"github.com/pawmate/dogwalk-marketplace/internal/adapters/events"
	"github.com/pawmate/dogwalk-marketplace/internal/adapters/search"
	"github.com/pawmate/dogwalk-marketplace/internal/api/handlers"
	"github.com/pawmate/dogwalk-marketplace/internal/api/middleware"
	"github.com/pawmate/dogwalk-marketplace/internal/api/routes"
	"github.com/pawmate/dogwalk-marketplace/internal/application/services"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/providers"
	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/postgres"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/redis"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/clients/typesense"
	"github.com/pawmate/dogwalk-marketplace/internal/infrastructure/observability"
	"github.com/pawmate/dogwalk-marketplace/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client; the application runs without caching and
	// events when Redis is unavailable.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Initialize Typesense client when configured
	var typesenseClient *typesense.Client
	if cfg.Typesense.URL != "" {
		typesenseClient, err = typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Typesense client, name search falls back to roster scan")
			typesenseClient = nil
		} else {
			log.Info().Msg("Typesense client initialized")
		}
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for roster updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	} else {
		log.Info().Msg("event bus disabled (Redis not available)")
	}

	// Initialize adapters
	baseUserAdapter := database.NewUserAdapter(pgClient)

	var userAdapter repositories.UserRepository
	if cacheProvider != nil {
		userAdapter = database.NewCachedUserAdapter(baseUserAdapter, cacheProvider)
		log.Info().Msg("user adapter wrapped with caching layer")
	} else {
		userAdapter = baseUserAdapter
		log.Warn().Msg("user adapter running without cache (Redis unavailable)")
	}

	reservationAdapter := database.NewReservationAdapter(pgClient)
	petAdapter := database.NewPetAdapter(pgClient)

	var searchRepo repositories.UserSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}
	}

	// Initialize services
	matchingService := services.NewMatchingService()
	userService := services.NewUserService(userAdapter, searchRepo, matchingService, eventBus)
	reservationService := services.NewReservationService(reservationAdapter, userAdapter, eventBus, cfg.Rating.ScoreMode)
	petService := services.NewPetService(petAdapter)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	petHandler := handlers.NewPetHandler(petService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	// Set up router
	router := routes.NewRouter(
		userHandler,
		reservationHandler,
		petHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}
