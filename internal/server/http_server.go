package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoapi "github.com/pilab-dev/shadow-social/api/echo"
	"github.com/pilab-dev/shadow-social/config"
	"github.com/pilab-dev/shadow-social/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter builds the echo router with logging, recovery, metrics and the
// Facebook property editor routes.
func NewRouter(appLogger log.Logger, api *echoapi.FacebookAPI, gatherer prometheus.Gatherer, health HealthCheck) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := log.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     c.Response().Status,
				"latency":    time.Since(start).String(),
				"ip":         c.RealIP(),
				"user_agent": req.UserAgent(),
			}
			if err != nil {
				appLogger.Error(req.Context(), "HTTP Request", err, fields)
			} else {
				appLogger.Info(req.Context(), "HTTP Request", fields)
			}

			return nil
		}
	})

	e.GET("/healthz", func(c echo.Context) error {
		if health != nil {
			if err := health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	if api == nil {
		appLogger.Error(context.Background(), "FacebookAPI not provided to NewRouter, API routes will not be registered.", nil)
	} else {
		api.RegisterRoutes(e)
	}

	return e
}

// NewHTTPServer wraps the router in an instrumented http.Server.
func NewHTTPServer(cfg *config.ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, cfg.OtelServiceName),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
