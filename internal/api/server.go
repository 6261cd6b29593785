package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intecsystems/nda-survey/internal/auth"
	"github.com/intecsystems/nda-survey/internal/config"
	"github.com/intecsystems/nda-survey/internal/metrics"
	"github.com/intecsystems/nda-survey/internal/questionnaire"
	"github.com/intecsystems/nda-survey/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	repo           storage.Repository
	questionnaires *questionnaire.Loader
	auth           *auth.Service
	metrics        *metrics.Metrics
	events         *EventHub
	rateLimiter    *RateLimiter
	startedAt      time.Time
}

// NewServer creates a new API server. rateLimiter may be nil to disable
// rate limiting.
func NewServer(
	cfg config.ServerConfig,
	repo storage.Repository,
	loader *questionnaire.Loader,
	authService *auth.Service,
	m *metrics.Metrics,
	rateLimiter *RateLimiter,
) *Server {
	s := &Server{
		config:         cfg,
		repo:           repo,
		questionnaires: loader,
		auth:           authService,
		metrics:        m,
		events:         NewEventHub(),
		rateLimiter:    rateLimiter,
		startedAt:      time.Now(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// Events returns the hub broadcasting survey lifecycle events
func (s *Server) Events() *EventHub {
	return s.events
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics (public, not rate limited)
	r.Get("/api/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Limit)
		}

		r.Route("/api/surveys", func(r chi.Router) {
			r.Post("/", s.handleCreateSurvey)
			r.Get("/", s.handleListSurveys)

			// Registered before /{id} so "stats" is never read as an id
			r.Get("/stats/overview", s.handleSurveyStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSurvey)
				r.Patch("/status", s.handleUpdateStatus)
			})
		})

		r.Get("/api/questionnaires/{name}", s.handleGetQuestionnaire)

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		r.With(s.requireAuth).Get("/api/admin/events", s.handleEventsWS)
	})

	s.router = r
}
