// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xuanlung-gov/tthc-assistant/internal/buildinfo"
	"github.com/xuanlung-gov/tthc-assistant/internal/chat"
	"github.com/xuanlung-gov/tthc-assistant/internal/config"
	"github.com/xuanlung-gov/tthc-assistant/internal/feed"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/ratelimit"
	"github.com/xuanlung-gov/tthc-assistant/internal/sentry"
	"github.com/xuanlung-gov/tthc-assistant/internal/warmup"
)

// ChatPath is where the chat widget posts questions.
const ChatPath = "/api/chat"

// feedStatus is implemented by every *feed.Feed.
type feedStatus interface {
	Status() feed.Status
}

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	components     *Components
	answerer       chat.Answerer
	feeds          []feedStatus
	targets        []warmup.Target
	limiter        *ratelimit.ClientLimiter
	refresher      *warmup.Refresher
	readinessState *warmup.ReadinessState
	router         *gin.Engine
	server         *http.Server
	wg             sync.WaitGroup // background goroutines, waited on before shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log = log.WithField("service", "tthc-assistant")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog calls (genai factory) go through the same handler.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	release := cfg.SentryRelease
	if release == "" {
		release = buildinfo.Get().Version
	}
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     release,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error reporting disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	components, err := BuildComponents(ctx, cfg, log, m)
	if err != nil {
		return nil, err
	}

	targets := []warmup.Target{components.Procedures, components.Documents}
	app := &Application{
		cfg:        cfg,
		logger:     log,
		metrics:    m,
		registry:   registry,
		components: components,
		answerer:   components.Assistant,
		feeds:      []feedStatus{components.Procedures, components.Documents},
		targets:    targets,
		limiter: ratelimit.NewClientLimiter(ratelimit.ClientConfig{
			Burst:         cfg.RateLimitBurst,
			RefillRate:    cfg.RateLimitRefillPerSec,
			DailyLimit:    cfg.RateLimitDaily,
			CleanupPeriod: config.RateLimiterCleanup,
			Metrics:       m,
		}),
		refresher: warmup.NewRefresher(cfg.FeedRefreshInterval,
			warmup.Options{Metrics: m, Logger: log}, targets...),
		readinessState: warmup.NewReadinessState(cfg.WarmupTimeout, nil),
	}

	gin.SetMode(gin.ReleaseMode)
	app.router = app.buildRouter()
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      max(config.HTTPWrite, cfg.ChatTimeout+5*time.Second),
		IdleTimeout:       config.HTTPIdle,
	}

	log.WithFields(map[string]any{
		"commune":   cfg.CommuneName,
		"providers": components.Generator.Providers(),
	}).Info("Initialization complete")
	return app, nil
}

// buildRouter mounts middleware and routes on a new engine.
func (a *Application) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))
	router.Use(corsMiddleware(a.cfg.CORSOrigins))

	router.GET("/", a.serviceInfo)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	chatHandler := chat.NewHandler(chat.HandlerConfig{
		Assistant:        a.answerer,
		Timeout:          a.cfg.ChatTimeout,
		MaxMessageLength: a.cfg.MaxMessageLength,
		Metrics:          a.metrics,
		Logger:           a.logger,
	})
	chatHandler.Register(router, ChatPath, rateLimitMiddleware(a.limiter, a.metrics, a.logger))

	return router
}

// Handler exposes the router, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.router
}

// Run starts the HTTP server and background jobs and blocks until SIGINT or
// SIGTERM (or ctx cancellation).
//
// Shutdown order:
//  1. Cancel the background context (preload, refresher)
//  2. Wait for background jobs
//  3. Stop the HTTP server, then close limiter, generators and logger
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.startBackgroundJobs(ctx)
	serverErr := a.startHTTPServer()

	select {
	case sig := <-a.waitForShutdownSignal():
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case <-ctx.Done():
		a.logger.Info("Context canceled, shutting down")
	case err := <-serverErr:
		a.logger.WithError(err).Error("HTTP server error")
		cancel()
		a.wg.Wait()
		_ = a.shutdown()
		return err
	}

	cancel()
	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs preloads the feeds and starts the proactive refresher.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.initialPreload(ctx)
	})
	a.refresher.Start(ctx)
}

func (a *Application) initialPreload(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithField("panic", r).Error("Panic in feed preload")
		}
	}()

	preloadCtx, cancel := context.WithTimeout(ctx, a.cfg.WarmupTimeout)
	defer cancel()

	// Failures are logged by Preload; requests fetch lazily either way.
	_, _ = warmup.Preload(preloadCtx, warmup.Options{Metrics: a.metrics, Logger: a.logger}, a.targets...)
	a.readinessState.MarkReady()
	a.logger.Info("Service marked as ready after feed preload")
}

// startHTTPServer starts the HTTP server in a goroutine. The returned
// channel receives a listen error other than http.ErrServerClosed.
func (a *Application) startHTTPServer() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func (a *Application) waitForShutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit
}

// shutdown stops the HTTP server and releases resources. Call it after the
// background jobs have returned.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	a.logger.Info("Closing resources...")
	a.refresher.Stop()
	a.limiter.Stop()
	if err := a.components.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "generator").Error("Component close error")
	}

	sentry.Flush(2 * time.Second)

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("logger: %w", err))
	}
	return errors.Join(errs...)
}
