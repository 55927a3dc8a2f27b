// Package main is the entrypoint for the Person Vault API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/personvault/personvault/internal/auth"
	"github.com/personvault/personvault/internal/cache"
	"github.com/personvault/personvault/internal/config"
	"github.com/personvault/personvault/internal/handler"
	"github.com/personvault/personvault/internal/metrics"
	"github.com/personvault/personvault/internal/middleware"
	"github.com/personvault/personvault/internal/repository"
	"github.com/personvault/personvault/internal/server"
	"github.com/personvault/personvault/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.SimulatedDelay)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("schema up to date")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services. The store and the auth provider are built
	// exactly once here and shared by reference; request handlers
	// never construct their own.
	metricsRecorder := metrics.NewNoop()
	personService := service.NewPersonService(repo, metricsRecorder)

	authProvider, err := auth.NewProvider(auth.Config{
		Secret:    cfg.TokenSecret,
		Algorithm: cfg.TokenAlgorithm,
		TokenTTL:  cfg.TokenTTL(),
	}, personService, metricsRecorder)
	if err != nil {
		logger.Error("failed to build auth provider", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	personHandler := handler.NewPersonHandler(personService, logger)
	authHandler := handler.NewAuthHandler(authProvider, logger)

	// Setup router
	r := setupRouter(h, healthHandler, personHandler, authHandler, authProvider, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_algorithm", cfg.TokenAlgorithm,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	personHandler *handler.PersonHandler,
	authHandler *handler.AuthHandler,
	authProvider *auth.Provider,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(1 << 20))

	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: origins}))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Login, throttled per client IP
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    logger,
		Cache:     cacheClient,
		Enabled:   cfg.RateLimitLoginEnabled,
		PerMinute: cfg.RateLimitLoginPerMinute,
		Burst:     cfg.RateLimitLoginBurst,
	}
	r.With(middleware.RateLimitLogin(rateLimitCfg)).Post("/token", authHandler.Login)

	// Person records
	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Provider: authProvider,
	}

	r.Route("/users", func(r chi.Router) {
		r.Get("/", personHandler.List)
		r.Post("/", personHandler.Create)

		r.With(middleware.Auth(authCfg)).Get("/me", authHandler.Me)

		r.Get("/{identityNumber}", personHandler.Get)
		r.Put("/{identityNumber}", personHandler.Update)
		r.Delete("/{identityNumber}", personHandler.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
