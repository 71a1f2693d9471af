package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/attendbot/attend-admin/internal/web/handlers"
	"github.com/attendbot/attend-admin/internal/web/middleware"
	"github.com/attendbot/attend-admin/internal/web/static"
)

const (
	loginPath   = "/login"
	defaultPath = "/" // dashboard, the default protected view
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	authHandler := handlers.NewAuthHandler(s.config, sessionManager)
	usersHandler := handlers.NewUsersHandler(s.config)
	facesHandler := handlers.NewFacesHandler(s.config)
	dashboardHandler := handlers.NewDashboardHandler(s.config)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes are reachable anonymously.
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)

		// Everything else requires a session and gets a backend client
		// carrying its bearer token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))
			r.Use(middleware.WithBackendClient(s.config, sessionManager))

			// Roster
			r.Get("/users", usersHandler.List)
			r.Post("/users", usersHandler.Create)
			r.Delete("/users/{id}", usersHandler.Delete)
			r.Get("/users/{id}/attendance", usersHandler.Attendance)

			// Reference images
			r.Get("/users/{id}/faces", facesHandler.Row)
			r.Post("/users/{id}/face", facesHandler.Add)
			r.Put("/users/{id}/face/{slot}", facesHandler.Replace)
			r.Delete("/users/{id}/face/{slot}", facesHandler.Delete)
			r.Get("/users/{id}/face/{slot}", facesHandler.Image)

			// Metrics
			r.Get("/dashboard", dashboardHandler.Get)
			r.Get("/attendance", dashboardHandler.Attendance)
		})
	})

	// SPA page loads go through the navigation guard: anonymous visitors
	// land on the login view, authenticated ones never see it again.
	guard := middleware.GuardPage(sessionManager, loginPath, defaultPath)
	s.router.Get("/*", guard(http.HandlerFunc(s.serveSPA)).ServeHTTP)
}

// serveSPA serves the single-page application
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	if !static.HasDist() {
		http.Error(w, "web UI assets not bundled", http.StatusNotFound)
		return
	}

	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err == nil {
		defer f.Close()
		if stat, err := f.Stat(); err == nil && !stat.IsDir() {
			w.Header().Set("Content-Type", contentTypeFor(path))
			if strings.HasPrefix(path, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}
			w.WriteHeader(http.StatusOK)
			io.Copy(w, f)
			return
		}
	}

	// For SPA routing, serve index.html for non-asset paths.
	if !strings.HasPrefix(path, "/assets/") {
		if indexFile, err := fs.Open("/index.html"); err == nil {
			defer indexFile.Close()
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			io.Copy(w, indexFile)
			return
		}
	}

	http.NotFound(w, r)
}

// contentTypeFor maps a static asset path to its content type.
func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		return "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		return "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	case strings.HasSuffix(path, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(path, ".ico"):
		return "image/x-icon"
	case strings.HasSuffix(path, ".woff2"):
		return "font/woff2"
	case strings.HasSuffix(path, ".woff"):
		return "font/woff"
	}
	return "application/octet-stream"
}
