package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/web/middleware"
)

// Server is the admin panel web server: a chi router serving the SPA, plus a
// JSON API that fronts the attendance backend on the operator's behalf.
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
}

// NewServer creates a new web server. sessionRepo may be nil, in which case
// browser sessions do not survive a restart.
func NewServer(cfg *config.Config, port int, host string, sessionSecret string, sessionRepo middleware.SessionRepository) *Server {
	r := chi.NewRouter()

	sessionDuration := time.Duration(cfg.Web.SessionDurationHours) * time.Hour
	sessionManager := middleware.NewSessionManager(sessionSecret, sessionDuration, sessionRepo)

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Duration(cfg.Web.RequestTimeoutSeconds) * time.Second))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))

	s.setupRoutes(sessionManager)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // uploads of reference images
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
