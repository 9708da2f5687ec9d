package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"gorm.io/gorm"

	"github.com/customeros/mailsorter/api"
	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/internal/cron"
	"github.com/customeros/mailsorter/internal/logger"
	"github.com/customeros/mailsorter/internal/repository"
	"github.com/customeros/mailsorter/internal/tracing"
	"github.com/customeros/mailsorter/services"
)

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cronManager  *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config, mailsorterDB *gorm.DB) (*Server, error) {
	// Initialize logger
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, fmt.Errorf("could not initialize jaeger tracer: %w", err)
	}
	opentracing.SetGlobalTracer(tracer)

	// Initialize repositories
	repos := repository.InitRepositories(mailsorterDB)

	// Initialize services
	svcs, err := services.InitServices(cfg, appLogger, repos)
	if err != nil {
		closer.Close()
		return nil, err
	}

	cronManager := cron.NewCronManager(cfg.Cron, appLogger, svcs.EmailProcessor)

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		repositories: repos,
		cronManager:  cronManager,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppConfig.APIPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *Server) Initialize(ctx context.Context) error {
	api.RegisterRoutes(ctx, s.router, s.services.EmailProcessor, s.cronManager, s.config.AppConfig.APIKey)
	return nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		// Create a new span for the panic
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		// Mark span as failed
		ext.Error.Set(span, true)

		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		s.log.Errorf("Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	// Start HTTP server in a goroutine with panic recovery
	go s.wrapGoroutine("http_server", func() {
		s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("HTTP server error: %v", err)
		}
	})

	// Start the pipeline scheduler, which also performs the startup run
	if err := s.cronManager.StartScheduled(s.config.PipelineConfig.Interval()); err != nil {
		return err
	}

	s.log.Info("Mailsorter is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	s.log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		s.log.Info("HTTP server shut down successfully")
	}

	// Let the in-flight run finish, bounded by the shutdown timeout
	stopDone := make(chan struct{})
	go s.wrapGoroutine("scheduler_shutdown", func() {
		defer close(stopDone)
		s.cronManager.StopScheduled()
	})

	select {
	case <-stopDone:
		s.log.Info("Scheduler stopped gracefully")
	case <-shutdownCtx.Done():
		s.log.Warn("Scheduler stop timed out, forcing exit")
	}

	if err := s.services.Close(); err != nil {
		s.log.Warnf("Events publisher close error: %v", err)
	}
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}
	s.log.Sync()

	return nil
}

// RunOnce executes a single pipeline run without the HTTP server or scheduler.
func (s *Server) RunOnce(ctx context.Context) (int, error) {
	defer func() {
		s.services.Close()
		if s.tracerCloser != nil {
			s.tracerCloser.Close()
		}
		s.log.Sync()
	}()
	return s.services.EmailProcessor.RunOnce(ctx)
}
