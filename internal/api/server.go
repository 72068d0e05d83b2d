package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/observability"
)

type Server struct {
	router   *chi.Mux
	kitchen  *core.KitchenService
	apiToken string
	version  string
}

type Option func(*Server)

// WithAPIToken requires the given bearer token on recipe imports.
func WithAPIToken(token string) Option {
	return func(s *Server) {
		s.apiToken = token
	}
}

func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

func NewServer(kitchen *core.KitchenService, opts ...Option) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		kitchen: kitchen,
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/openapi.json", s.handleOpenAPI)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/kitchen/recipes", func(r chi.Router) {
		r.Get("/", s.handleListRecipes)
		r.Get("/{id}", s.handleGetRecipe)
		r.With(bearerAuth(s.apiToken)).Post("/", s.handleAddRecipe)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
