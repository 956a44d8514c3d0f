package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/gymgenie/internal/session"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Registry
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(sessions *session.Registry, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes(nil)
	return s
}

// SetTailscale rebuilds the routes with tailnet identity resolution.
func (s *Server) SetTailscale(lc *local.Client) {
	s.router = chi.NewRouter()
	s.routes(lc)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount attaches an extra handler subtree (used for the MCP endpoint).
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) routes(lc *local.Client) {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(Identity(lc))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/state", s.handleState)
		r.Get("/workout/today", s.handleTodaysWorkout)
		r.Get("/history", s.handleHistory)

		// Mutating routes require the API key.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/profile", s.handleCreateProfile)
			r.Post("/plan/modify", s.handleModifyPlan)
			r.Post("/plan/toggle", s.handleToggleExercise)
			r.Post("/plan/select", s.handleSelect)
			r.Post("/history/log", s.handleLogWorkout)
			r.Post("/session/start-over", s.handleStartOver)
			r.Post("/session/logout", s.handleLogout)
		})
	})
}
