package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"movie-discovery-picker/internal/config"
	"movie-discovery-picker/internal/database"
	"movie-discovery-picker/internal/handler"
	"movie-discovery-picker/internal/llm"
	"movie-discovery-picker/internal/metrics"
	"movie-discovery-picker/internal/middleware"
	"movie-discovery-picker/internal/repository"
	"movie-discovery-picker/internal/service"
	"movie-discovery-picker/internal/telemetry"
	"movie-discovery-picker/internal/tmdb"
)

const serviceName = "movie-discovery-picker"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	// Connect to Redis (non-fatal if unavailable)
	var rdb *redis.Client
	var cache tmdb.Cache
	if client, err := database.NewRedis(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable, using in-memory cache and no rate limiting", "error", err)
	} else {
		rdb = client
		cache = tmdb.NewRedisCache(rdb)
	}

	// Connect to PostgreSQL (non-fatal if unavailable)
	var db *sql.DB
	var genreStore service.GenreStore
	if conn, err := database.NewPostgres(ctx, cfg.DB); err != nil {
		slog.Warn("PostgreSQL unavailable, genre store disabled", "error", err)
	} else {
		db = conn
		genreStore = repository.NewGenreRepository(db)
	}

	// Initialize TMDB client
	tmdbClient := tmdb.NewClient(tmdb.Config{
		APIKey:    cfg.TMDB.APIKey,
		BaseURL:   cfg.TMDB.BaseURL,
		Language:  cfg.TMDB.Language,
		CacheTTL:  cfg.TMDB.CacheTTL,
		Timeout:   cfg.TMDB.Timeout,
		RateLimit: cfg.TMDB.RateLimit,
		Cache:     cache,
	})

	var completer llm.Completer
	if cfg.LLM.Enabled() {
		completer = llm.NewClient(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
		slog.Info("LLM enabled", "model", cfg.LLM.Model)
	} else {
		slog.Warn("LLM_API_KEY not set, prompt recommendations and AI re-ranking disabled")
	}

	// Initialize layers
	discovery := service.NewDiscoveryService(tmdbClient, completer, genreStore, service.Options{
		NetworkID:       cfg.TMDB.NetworkID,
		StrategyTimeout: cfg.StrategyTimeout,
	})
	genres := service.NewGenreService(tmdbClient, genreStore)
	h := handler.NewDiscoveryHandler(discovery, genres)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Movie Discovery Picker",
		ServerHeader: "Movie-Discovery-Picker",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(fiberRecover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, "Movie Discovery Picker API", swaggerYAML)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds)
	handler.RegisterRoutes(app, h, limiter.Handler(), middleware.AdminAuth(cfg.AdminToken))

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting movie discovery picker", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	slog.Info("shutting down movie discovery picker...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		slog.Error("error flushing traces", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			slog.Error("error closing PostgreSQL connection", "error", err)
		}
	}

	slog.Info("shutdown complete")
}
