// Package api provides the HTTP API server and handlers for the Inkwell application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	authService     *service.AuthService
	postService     *service.PostService
	taxonomyService *service.TaxonomyService
	loginLimiter    *ratelimit.KeyedRateLimiter
	cfg             *config.Config
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *store.Store,
	authService *service.AuthService,
	postService *service.PostService,
	taxonomyService *service.TaxonomyService,
	loginLimiter *ratelimit.KeyedRateLimiter,
	cfg *config.Config,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:           store,
		authService:     authService,
		postService:     postService,
		taxonomyService: taxonomyService,
		loginLimiter:    loginLimiter,
		cfg:             cfg,
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Stored cover images.
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.cfg.Uploads.Path))))

	s.router.Route("/api", func(r chi.Router) {
		// Auth endpoints (public). Credential endpoints are rate limited by IP.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimitByIP)
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
			})
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		// Posts. Reads work anonymously but honor an access token when
		// presented; writes require one.
		r.Route("/posts", func(r chi.Router) {
			r.With(s.optionalAuth).Get("/", s.handleListPosts)
			r.With(s.optionalAuth).Get("/{slug}", s.handleGetPost)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreatePost)
				r.Put("/{id}", s.handleUpdatePost)
				r.Delete("/{id}", s.handleDeletePost)
			})
		})

		// Taxonomy. Reads are public; vocabulary management is admin-only.
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.With(s.requireAuth, s.requireAdmin).Post("/", s.handleCreateCategory)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.With(s.requireAuth, s.requireAdmin).Post("/", s.handleCreateTag)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
