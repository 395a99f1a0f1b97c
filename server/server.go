package server

import (
	"context"
	"net/http"

	"github.com/existflow/deadlines/internal/clock"
	"github.com/existflow/deadlines/internal/logger"
	"github.com/existflow/deadlines/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures a Server
type Options struct {
	Clock    clock.Clock
	Logger   *logger.Logger
	Registry *prometheus.Registry // a fresh registry is created when nil
}

// Server exposes a deadline store over HTTP
type Server struct {
	store   *store.Store
	clock   clock.Clock
	log     *logger.Logger
	metrics *metrics
	echo    *echo.Echo
}

// New creates a new server over an already loaded store
func New(st *store.Store, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.System
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		store: st,
		clock: opts.Clock,
		log:   opts.Logger.WithFields(logger.F("component", "server")),
	}
	s.metrics = newMetrics(opts.Registry, st, opts.Clock)

	// Setup Echo
	s.setupEcho(opts.Registry)

	return s
}

func (s *Server) setupEcho(reg *prometheus.Registry) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.requestLogger)
	e.Use(s.countRequests)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// Health check
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// API v1
	api := e.Group("/api/v1")
	api.GET("/deadlines", s.handleList)
	api.POST("/deadlines", s.handleCreate)
	api.GET("/deadlines/:id", s.handleGet)
	api.PUT("/deadlines/:id", s.handleUpdate)
	api.DELETE("/deadlines/:id", s.handleDelete)

	s.echo = e
}

// Close releases the store
func (s *Server) Close() error {
	return s.store.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	s.log.Info("Server listening", logger.F("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
