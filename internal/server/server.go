// Package server provides the HTTP server for the application.
// It handles server lifecycle, route setup, and graceful shutdown.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pairreview/pairreview/internal/api/router"
	"github.com/pairreview/pairreview/internal/config"
	"github.com/pairreview/pairreview/internal/localreview"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/progress"
	"github.com/pairreview/pairreview/internal/prompt"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/logger"
)

// HTTP server timeout configuration
const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultStopTimeout     = 5 * time.Second
)

// Server wraps the HTTP server this tool exposes to a local operator: one
// gin engine in front of one orchestrator, no auth layer.
type Server struct {
	cfg          *config.Config
	httpServer   *http.Server
	router       *gin.Engine
	store        store.Store
	orchestrator *orchestrator.Orchestrator
	manager      *localreview.Manager
	bus          *progress.Bus
	prompts      *prompt.Builder
	debug        bool
}

// New creates a Server wired to its dependencies. debug controls gin's run
// mode and the verbosity of request logging.
func New(cfg *config.Config, st store.Store, orch *orchestrator.Orchestrator, manager *localreview.Manager, bus *progress.Bus, prompts *prompt.Builder, debug bool) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Disable automatic trailing slash / fixed path redirects: a client
	// that got a route wrong should see a 404, not a silent redirect.
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	return &Server{
		cfg:          cfg,
		router:       r,
		store:        st,
		orchestrator: orch,
		manager:      manager,
		bus:          bus,
		prompts:      prompts,
		debug:        debug,
	}
}

// SetupRoutes wires every API route onto the underlying gin engine.
func (s *Server) SetupRoutes() {
	router.Setup(s.router, router.Deps{
		Config:       s.cfg,
		Store:        s.store,
		Orchestrator: s.orchestrator,
		Manager:      s.manager,
		Bus:          s.bus,
		Prompts:      s.prompts,
		DebugMode:    s.debug,
	})
}

// Start starts the HTTP server in the background and returns immediately;
// a bind failure is reported through the logger rather than the return
// value, since ListenAndServe blocks.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	logger.Info("starting HTTP server",
		zap.String("address", s.cfg.Address()),
		zap.Bool("debug", s.debug),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	return nil
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight
// requests. A second signal during the drain forces an immediate exit.
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("received shutdown signal, starting graceful shutdown (press Ctrl+C again to force exit)",
		zap.String("signal", sig.String()))

	go func() {
		sig := <-quit
		logger.Warn("received second shutdown signal, forcing exit", zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// Stop shuts the server down immediately, bounded by a short timeout. It is
// a no-op if Start was never called.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying gin engine, mainly so tests can drive
// requests through it directly without binding a real listener.
func (s *Server) Router() *gin.Engine {
	return s.router
}
