// Package server is the HTTP surface: the REST API under /api/v1, the
// inventory change stream, the health document and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thelogbook/logbook/internal/auth"
	"github.com/thelogbook/logbook/internal/cache"
	"github.com/thelogbook/logbook/internal/config"
	"github.com/thelogbook/logbook/internal/events"
	"github.com/thelogbook/logbook/internal/foundation/errors"
	"github.com/thelogbook/logbook/internal/health"
	"github.com/thelogbook/logbook/internal/inventory"
	"github.com/thelogbook/logbook/internal/members"
	"github.com/thelogbook/logbook/internal/metrics"
	"github.com/thelogbook/logbook/internal/minutes"
	"github.com/thelogbook/logbook/internal/modules"
	"github.com/thelogbook/logbook/internal/onboarding"
	"github.com/thelogbook/logbook/internal/store"
	"github.com/thelogbook/logbook/internal/stream"
)

// Deps carries everything the server serves. The application wires it
// once in main; tests wire fakes.
type Deps struct {
	Config         *config.Config
	Store          *store.Store
	Cache          cache.Cache
	Sessions       *auth.Manager
	Members        *members.Service
	Events         *events.Service
	Inventory      *inventory.Service
	Minutes        *minutes.Service
	Onboarding     *onboarding.Service
	Registry       *modules.Registry
	Checker        *health.Checker
	Hub            *stream.Hub
	Recorder       metrics.Recorder
	MetricsHandler http.Handler
}

// Server represents the API server.
type Server struct {
	deps    Deps
	router  *chi.Mux
	server  *http.Server
	adapter *errors.HTTPErrorAdapter
}

// NewServer creates the API server on cfg.Server.Addr.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps:    deps,
		router:  chi.NewRouter(),
		adapter: errors.NewHTTPErrorAdapter(nil),
	}
	if s.deps.Recorder == nil {
		s.deps.Recorder = metrics.NoopRecorder{}
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         deps.Config.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metricsMiddleware)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/onboarding", func(r chi.Router) {
			r.Post("/", s.handleStartOnboarding)
			r.Get("/{id}", s.handleGetOnboarding)
			r.Post("/{id}/identity", s.handleOnboardingIdentity)
			r.Post("/{id}/modules", s.handleOnboardingModules)
			r.Post("/{id}/integrations", s.handleOnboardingIntegrations)
			r.Post("/{id}/admin", s.handleOnboardingAdmin)
			r.Post("/{id}/complete", s.handleOnboardingComplete)
		})

		r.Post("/session", s.handleLogin)
		r.Delete("/session", s.handleLogout)

		// The hub does its own cookie check so it can close the socket
		// with the application auth code instead of refusing upgrade.
		r.Get("/inventory/ws", s.deps.Hub.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(s.deps.Sessions.Middleware)
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/organizations/{id}", s.handleGetOrganization)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", s.handleListMembers)
				r.Post("/", s.handleCreateMember)
				r.Get("/{id}", s.handleGetMember)
				r.Put("/{id}", s.handleUpdateMember)
				r.Delete("/{id}", s.handleDeleteMember)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.handleListEvents)
				r.Post("/", s.handleCreateEvent)
				r.Get("/{id}", s.handleGetEvent)
				r.Delete("/{id}", s.handleDeleteEvent)
				r.Post("/{id}/rsvp", s.handleRSVP)
				r.Get("/{id}/rsvps", s.handleListRSVPs)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", s.handleListItems)
				r.Post("/", s.handleCreateItem)
				r.Get("/audit", s.handleListAudit)
				r.Get("/{id}", s.handleGetItem)
				r.Put("/{id}", s.handleUpdateItem)
				r.Delete("/{id}", s.handleDeleteItem)
			})

			r.Route("/minutes", func(r chi.Router) {
				r.Get("/", s.handleListMinutes)
				r.Post("/", s.handleCreateMinutes)
				r.Get("/{id}", s.handleGetMinutes)
				r.Put("/{id}", s.handleUpdateMinutes)
				r.Post("/{id}/approve", s.handleApproveMinutes)
			})

			r.Get("/modules", s.handleListModules)
			r.Put("/modules/{kind}", s.handleToggleModule)
			r.Get("/roles", s.handleListRoles)
		})
	})

	if s.deps.MetricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", s.deps.MetricsHandler)
	}
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and the stream hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.deps.Hub != nil {
		s.deps.Hub.Shutdown()
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes a success response.
func (s *Server) Success(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// Error writes an error response, mapping classified categories to
// status codes.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := s.adapter.StatusCodeFor(err)
	msg := err.Error()
	if c, ok := errors.AsClassified(err); ok {
		msg = c.Message()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Error: msg})
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.ValidationError("invalid request body").Build()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.deps.Checker.Check(r.Context())
	s.deps.Recorder.IncReadinessProbe(resp.Ready())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if resp.Status == health.StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.deps.Store.GetOrganization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, errors.NotFoundError("organization not found").Build())
		return
	}
	s.Success(w, http.StatusOK, org)
}
