package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/handlers"
	"github.com/mmdatafocus/pos_backend/middlewares"
	"github.com/mmdatafocus/pos_backend/models"
	"github.com/mmdatafocus/pos_backend/models/reports"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const (
	defaultPort      = "8080"
	defaultApiPrefix = "/api/v1"
	shutdownTimeout  = 30 * time.Second
)

func envOr(key string, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if config.IsProduction() {
		// CORS_ALLOWED_ORIGINS is a comma-separated allowlist; unset denies every origin.
		cfg.AllowOrigins = splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS"))
		if len(cfg.AllowOrigins) == 0 {
			cfg.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AddAllowMethods(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions)
	cfg.AddAllowHeaders("Origin", "Content-Type", "Authorization", "Idempotency-Key", middlewares.CorrelationIdHeader)
	cfg.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationIdHeader)
	cfg.AllowCredentials = true
	return cfg
}

// readinessGate answers /healthz itself and holds every other route at 503
// until both mysql and redis are connected.
func readinessGate(c *gin.Context) {
	if c.Request.URL.Path == "/healthz" {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	if config.GetDB() == nil || config.GetRedisDB() == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service starting"})
		return
	}
	c.Next()
}

func newRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationId(), readinessGate, cors.New(corsConfig()))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// RATE_LIMIT_ENABLED, RATE_LIMIT_WINDOW_SECONDS, RATE_LIMIT_MAX_REQUESTS
	if config.EnvEnabled("RATE_LIMIT_ENABLED") {
		r.Use(middlewares.RateLimiterFromEnv(config.GetRedisDB).Middleware)
	}
	r.Use(middlewares.ErrorLogger(logger), gin.Recovery())

	handlers.Register(r.Group(envOr("API_V1_STR", defaultApiPrefix)))
	r.NoRoute(handlers.NotFound)
	return r
}

func main() {
	logger := config.GetLogger()
	reports.SetTracer(otel.Tracer("pos-backend"))
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	port := envOr("PORT", defaultPort)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(logger),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if sqlDB, err := config.GetDB().DB(); err == nil {
		defer sqlDB.Close()
	}

	// SKIP_MIGRATIONS=true leaves AutoMigrate to a separate job.
	if config.EnvEnabled("SKIP_MIGRATIONS") {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	} else if err := models.MigrateTable(); err != nil {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
	}

	logger.WithFields(logrus.Fields{"port": port}).Info("pos backend ready")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	config.ClosePubSub()
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func splitAndTrim(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
