package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"interop/internal/agents"
	"interop/internal/audit"
	"interop/internal/config"
	"interop/internal/constants"
	"interop/internal/logger"
	"interop/internal/orchestrator"
	"interop/pkg/health"
	"interop/pkg/metrics"
	"interop/pkg/middleware"
	"interop/pkg/ratelimit"
	"interop/pkg/tracing"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	publisher      *audit.Publisher
	orchestrator   *orchestrator.Orchestrator
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("interop-service")
	}
	return &App{
		Config: cfg,
		Logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterPipelineMetrics()
	metrics.RegisterHTTPMetrics()
	if a.Config.Audit.Enabled {
		metrics.RegisterAuditMetrics()
		metrics.RegisterCircuitBreakerMetrics()
	}

	tp, err := tracing.Init(a.Config.Tracing, "interop-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	recorder := a.initRecorder()

	pipeline := agents.NewPipeline(a.Logger)
	a.orchestrator = orchestrator.New(a.Config.Pipeline, pipeline, recorder, a.Logger)

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initRecorder() audit.Recorder {
	if !a.Config.Audit.Enabled {
		return audit.NopRecorder{}
	}

	a.publisher = audit.NewPublisher(a.Config.Audit, a.Config.CircuitBreaker, a.Logger)
	return a.publisher
}

func (a *App) initHTTPServer(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))

	if a.Config.RateLimit.Enabled {
		router.Use(ratelimit.Middleware(a.rateLimitConfig()))
	}

	handler := orchestrator.NewHandler(a.orchestrator, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	if a.Config.Audit.Enabled && len(a.Config.Audit.Brokers) > 0 {
		healthRegistry.Register(health.NewKafkaChecker(a.Config.Audit.Brokers[0]))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}

	return nil
}

func (a *App) rateLimitConfig() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	if a.Config.RateLimit.RPS > 0 {
		cfg.RPS = a.Config.RateLimit.RPS
	}
	if a.Config.RateLimit.Burst > 0 {
		cfg.Burst = a.Config.RateLimit.Burst
	}
	if a.Config.RateLimit.CleanupInterval > 0 {
		cfg.CleanupInterval = time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second
	}
	if a.Config.RateLimit.MaxAge > 0 {
		cfg.MaxAge = time.Duration(a.Config.RateLimit.MaxAge) * time.Second
	}
	return cfg
}

func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.shutdown()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return ctx.Err()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	a.Logger.Infow("Shutting down HTTP server")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Errorw("HTTP server shutdown error", "error", err)
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Errorw("Audit publisher close error", "error", err)
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			a.Logger.Errorw("Tracer provider shutdown error", "error", err)
		}
	}

	return context.Canceled
}
