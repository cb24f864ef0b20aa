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
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/recruitstack/recruitstack/api"
	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/internal/cron"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/repository"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
	"github.com/recruitstack/recruitstack/services"
)

const (
	shutdownTimeout = 15 * time.Second
	appSourceCLI    = "cli"
)

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cron         *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	repos := repository.InitRepositories(db)

	svcs, err := services.InitServices(ctx, cfg, appLogger, repos)
	if err != nil {
		closer.Close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		repositories: repos,
		cron:         cron.NewCronManager(cfg, appLogger, kubernetesClient(cfg, appLogger), svcs.EmailProcessor),
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppConfig.APIPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// kubernetesClient returns nil outside a cluster, which puts the cron manager in local mode
func kubernetesClient(cfg *config.Config, log logger.Logger) kubernetes.Interface {
	if cfg.KubernetesConfig.LocalDev {
		return nil
	}
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		log.Infof("Not running in a cluster, leader election disabled: %v", err)
		return nil
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		log.Warnf("Could not create kubernetes client, leader election disabled: %v", err)
		return nil
	}
	return client
}

func (s *Server) Initialize() {
	api.RegisterRoutes(s.router, s.services, s.repositories, s.config.AppConfig.APIKey)
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

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

// Run serves the REST API and the scheduled jobs until SIGINT or SIGTERM
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Initialize()

	if err := s.cron.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start cron manager")
	}

	serverErr := make(chan error, 1)
	go s.wrapGoroutine("http_server", func() {
		s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})
	s.log.Info("recruitstack is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown(serverErr)
}

func (s *Server) waitForShutdown(serverErr <-chan error) error {
	defer s.recoverWithJaeger("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		s.log.Info("Shutting down...")
	case runErr = <-serverErr:
		s.log.Errorf("HTTP server error: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		s.log.Info("HTTP server shut down successfully")
	}

	cronDone := make(chan struct{})
	go s.wrapGoroutine("cron_shutdown", func() {
		defer close(cronDone)
		s.cron.Stop()
	})
	select {
	case <-cronDone:
		s.log.Info("Cron manager stopped")
	case <-shutdownCtx.Done():
		s.log.Warn("Cron manager stop timed out, forcing exit")
	}

	s.Close()
	return runErr
}

// ProcessOnce runs the pipeline a single time outside the HTTP server
func (s *Server) ProcessOnce(ctx context.Context) (*dto.ProcessingRunResult, error) {
	ctx = utils.SetAppSourceInContext(ctx, appSourceCLI)
	return s.services.EmailProcessor.Run(ctx)
}

// TestConnection probes the active mailbox configuration and records the outcome
func (s *Server) TestConnection(ctx context.Context) (*dto.ConnectionTestResult, error) {
	ctx = utils.SetAppSourceInContext(ctx, appSourceCLI)
	return s.services.EmailConfigService.TestActive(ctx)
}

func (s *Server) Close() {
	if err := s.services.Close(); err != nil {
		s.log.Warnf("Failed to close services: %v", err)
	}
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}
	_ = s.log.Sync()
}
