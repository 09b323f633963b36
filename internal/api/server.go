// Package api provides the HTTP API server and handlers for the Outsource application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/outsourceapp/outsource-server/internal/http/response"
	"github.com/outsourceapp/outsource-server/internal/ratelimit"
	"github.com/outsourceapp/outsource-server/internal/service"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService           *service.AuthService
	profileService        *service.ProfileService
	friendService         *service.FriendService
	circleService         *service.CircleService
	eventService          *service.EventService
	recommendationService *service.RecommendationService
	weatherClient         *weather.Client
	authLimiter           *ratelimit.KeyedRateLimiter
	router                *chi.Mux
	logger                *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(authService *service.AuthService, profileService *service.ProfileService, friendService *service.FriendService, circleService *service.CircleService, eventService *service.EventService, recommendationService *service.RecommendationService, weatherClient *weather.Client, logger *slog.Logger) *Server {
	s := &Server{
		authService:           authService,
		profileService:        profileService,
		friendService:         friendService,
		circleService:         circleService,
		eventService:          eventService,
		recommendationService: recommendationService,
		weatherClient:         weatherClient,
		authLimiter:           newAuthLimiter(30, time.Minute, 10),
		router:                chi.NewRouter(),
		logger:                logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited per client IP).
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.rateLimit(s.authLimiter))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Users (require auth).
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleSearchUsers)
			r.Get("/me", s.handleGetCurrentUser)
			r.Put("/me/preferences", s.handleUpdatePreferences)
		})

		// Friend requests (require auth).
		r.Route("/friend-requests", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleSendFriendRequest)
			r.Get("/", s.handleListFriendRequests)
			r.Post("/{id}/respond", s.handleRespondFriendRequest)
			r.Delete("/{id}", s.handleCancelFriendRequest)
		})

		// Friends (require auth).
		r.Route("/friends", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListFriends)
			r.Delete("/{userID}", s.handleUnfriend)
		})

		// Circles (require auth).
		r.Route("/circles", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateCircle)
			r.Get("/", s.handleListCircles)
			r.Get("/{id}", s.handleGetCircle)
			r.Patch("/{id}", s.handleUpdateCircle)
			r.Delete("/{id}", s.handleDeleteCircle)
			r.Post("/{id}/members", s.handleAddCircleMember)
			r.Get("/{id}/members", s.handleListCircleMembers)
			r.Delete("/{id}/members/{userID}", s.handleRemoveCircleMember)
		})

		// Events (require auth).
		r.Route("/events", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateEvent)
			r.Get("/", s.handleListEvents)
			r.Get("/{id}", s.handleGetEvent)
			r.Patch("/{id}", s.handleUpdateEvent)
			r.Delete("/{id}", s.handleDeleteEvent)
			r.Post("/{id}/owners", s.handleAddEventOwner)
			r.Get("/{id}/owners", s.handleListEventOwners)
		})

		// Recommendations (require auth).
		r.Route("/recommendations", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleRecommendForUser)
			r.Post("/circles/{id}", s.handleRecommendForCircle)
		})

		// Weather (require auth).
		r.Route("/weather", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetWeather)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
