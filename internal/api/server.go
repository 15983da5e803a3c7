// Package api exposes the fetch and download operations over HTTP. It is
// the outer caller boundary of the service; all decision logic stays in
// the download and format packages.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/model"
)

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotRunning     = errors.New("server is not running")
)

// DownloadService is the slice of the orchestration layer the API serves
type DownloadService interface {
	Fetch(ctx context.Context, url string) (*model.VideoSummary, error)
	Submit(sourceURL string, choice model.MediaOption, title string) (string, error)
	Cancel(jobKey string) error
	Job(jobKey string) (*model.DownloadJob, bool)
	Jobs() []*model.DownloadJob
}

// Server represents the HTTP server
type Server struct {
	addr     string
	service  DownloadService
	gate     engine.Gate
	router   *chi.Mux
	server   *http.Server
	listener net.Listener
	running  bool
	mu       sync.Mutex
}

// NewServer creates a new HTTP server bound to the download service
func NewServer(addr string, service DownloadService, gate engine.Gate) *Server {
	s := &Server{
		addr:    addr,
		service: service,
		gate:    gate,
		router:  chi.NewRouter(),
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/fetch", s.handleFetch)
		r.Post("/downloads", s.handleSubmit)
		r.Get("/downloads", s.handleListJobs)
		r.Get("/downloads/{key}", s.handleGetJob)
		r.Delete("/downloads/{key}", s.handleCancel)
	})
}

// Handler returns the configured router, used directly in tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // fetch can block on slow hosts
		IdleTimeout:  60 * time.Second,
	}
	s.running = true

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("server error: %v\n", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServerNotRunning
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.running = false
	s.server = nil
	s.listener = nil

	return nil
}

// Addr returns the bound listener address, useful when binding to port 0
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}
