// Package main is the entrypoint for the ledger API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/BigazyGalym/Diplom/internal/cache"
	"github.com/BigazyGalym/Diplom/internal/config"
	"github.com/BigazyGalym/Diplom/internal/handler"
	"github.com/BigazyGalym/Diplom/internal/metrics"
	"github.com/BigazyGalym/Diplom/internal/middleware"
	"github.com/BigazyGalym/Diplom/internal/repository"
	"github.com/BigazyGalym/Diplom/internal/server"
	"github.com/BigazyGalym/Diplom/internal/service"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		stop()
		logger.Error("server error", "error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.MigrateOnStart {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("database_url", redactURL(cfg.DatabaseURL)))
		return err
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error("failed to connect to Redis", slog.String("redis_url", redactURL(cfg.RedisURL)))
		return err
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()

	ledgerService := service.NewLedgerService(repo, cacheClient, service.SystemClock, recorder, logger)
	financeService := service.NewFinanceService(repo, cacheClient, cfg.SummaryCacheTTL, service.SystemClock, recorder, logger)
	userService := service.NewUserService(repo, service.SystemClock, cfg.APIKeyEnv, recorder, logger)
	apiKeyService := service.NewAPIKeyService(repo, cacheClient, service.SystemClock, cfg.APIKeyEnv, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(handler.RouterConfig{
		Logger: logger,

		Root: handler.New(),
		Health: handler.NewHealthHandler(
			handler.Dependency{Name: "postgres", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		Metrics: handler.NewMetricsHandler(recorder),
		Ledger:  handler.NewLedgerHandler(ledgerService, logger),
		Finance: handler.NewFinanceHandler(financeService, logger),
		Users:   handler.NewUserHandler(userService, logger),
		APIKeys: handler.NewAPIKeyHandler(apiKeyService, logger),

		Auth: middleware.AuthConfig{
			Logger:      logger,
			Keys:        repo,
			Cache:       cacheClient,
			MinDuration: middleware.DefaultMinAuthDuration,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Enabled: cfg.RateLimitAPIEnabled,
		},
		RegisterLimit: middleware.RateLimitConfig{
			Logger:      logger,
			Limiter:     cacheClient,
			Enabled:     cfg.RateLimitRegisterPerMin > 0,
			IPGroup:     "register",
			IPPerMinute: cfg.RateLimitRegisterPerMin,
			IPBurst:     cfg.RateLimitRegisterBurst,
		},
		Security:     middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:         cors,
		MaxBodyBytes: cfg.MaxRequestBodySize,
		Verbose:      cfg.IsDevelopment(),
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	// LIFO: Redis closes before the pool.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"key_env", cfg.APIKeyEnv,
		"summary_cache_ttl", cfg.SummaryCacheTTL,
	)

	return srv.Run(ctx)
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level. Unknown values
// fall back to info.
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL strips the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if parsed.User != nil {
		name := parsed.User.Username()
		if name == "" {
			name = "redacted"
		}
		parsed.User = url.User(name)
	}
	return parsed.String()
}

// sanitizeError removes connection secrets from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		replacement := redactURL(secret)
		if replacement == "" {
			replacement = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, replacement)
	}
	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
