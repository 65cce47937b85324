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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	echoapi "github.com/pilab-dev/shadow-social/api/echo"
	"github.com/pilab-dev/shadow-social/cache"
	rediscache "github.com/pilab-dev/shadow-social/cache/redis"
	"github.com/pilab-dev/shadow-social/config"
	"github.com/pilab-dev/shadow-social/domain"
	"github.com/pilab-dev/shadow-social/internal/federation"
	"github.com/pilab-dev/shadow-social/internal/metrics"
	"github.com/pilab-dev/shadow-social/internal/server"
	"github.com/pilab-dev/shadow-social/log"
	"github.com/pilab-dev/shadow-social/mongodb"
	"github.com/pilab-dev/shadow-social/services"
	"github.com/pilab-dev/shadow-social/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		stdLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		stdLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
		zerolog.New(os.Stdout).With().Timestamp().Logger().Warn().
			Str("configured_log_level", cfg.LogLevel).
			Str("fallback_log_level", logLevel.String()).
			Err(parseErr).
			Msg("Invalid LOG_LEVEL configured, defaulting to 'info'")
	}
	appLogger := log.NewZerologAdapter(logLevel, cfg.LogPretty)
	if zl, ok := log.Zerolog(appLogger); ok {
		zlog.Logger = zl
	}

	ctx := context.Background()
	appLogger.Info(ctx, "Starting shadow-social server...", log.Fields{
		"http_port":      cfg.HTTPPort,
		"public_url":     cfg.PublicURL,
		"mongo_db_name":  cfg.MongoDBName,
		"cache_backend":  string(cfg.CacheBackend),
		"trace_exporter": cfg.TraceExporter,
		"long_lived":     cfg.FacebookLongLived,
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName, cfg.TraceExporter)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.InitCustomMetrics(reg)

	if initErr := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); initErr != nil {
		appLogger.Fatal(ctx, "Failed to initialize MongoDB connection", initErr)
	}
	db, err := mongodb.GetDB()
	if err != nil {
		appLogger.Fatal(ctx, "MongoDB database unavailable", err)
	}

	repo, err := mongodb.NewPropertyValueRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize PropertyValueRepository", err)
	}

	propertyCache, closeCache := newPropertyCache(ctx, cfg, appLogger)

	provider, err := federation.NewFacebookProvider(cfg.FacebookApp())
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize Facebook provider", err)
	}
	provider.LongLived = cfg.FacebookLongLived
	if cfg.FacebookAppID == "" || cfg.FacebookAppSecret == "" {
		appLogger.Warn(ctx, "Facebook app credentials are not configured, handshakes will fail")
	}

	states := cache.NewMemoryStateStore(cfg.StateTTL)

	properties := services.NewPropertyService(repo, propertyCache)
	api := echoapi.NewFacebookAPI(provider, properties, states, cfg.RedirectURL())

	router := server.NewRouter(appLogger, api, reg, mongodb.Ping)
	httpServer := server.NewHTTPServer(cfg, router)

	go func() {
		appLogger.Info(ctx, fmt.Sprintf("HTTP server listening on port %s", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(ctx, "Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(ctx, fmt.Sprintf("Received signal: %v. Shutting down server...", receivedSignal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}

	_ = states.Close()
	closeCache()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err)
	}

	mongodb.CloseMongoDB(shutdownCtx)

	appLogger.Info(shutdownCtx, "Server gracefully stopped.")
}

// newPropertyCache builds the configured cache. The returned func releases it.
func newPropertyCache(ctx context.Context, cfg *config.ServerConfig, appLogger log.Logger) (domain.PropertyValueCache, func()) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			appLogger.Warn(ctx, "Redis is unreachable, reads will fall through to MongoDB", log.Fields{
				"redis_addr": cfg.RedisAddr,
				"error":      err.Error(),
			})
		}

		return rediscache.NewPropertyCache(client, cfg.RedisPrefix, cfg.CacheMaxTTL), func() { _ = client.Close() }
	case config.CacheMemory:
		memCache := cache.NewMemoryPropertyCache(cfg.CacheMaxTTL)

		return memCache, func() { _ = memCache.Close() }
	default:
		return nil, func() {}
	}
}
