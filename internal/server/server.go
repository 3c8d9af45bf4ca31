package server

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claude/mapty/internal/session"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Manager
	mcp      http.Handler
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. mcpHandler may be nil,
// in which case /mcp is not mounted.
func New(sessions *session.Manager, mcpHandler http.Handler, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		mcp:      mcpHandler,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetFrontend mounts the embedded page. Unmatched non-API routes serve
// index.html; unmatched API routes stay JSON 404s.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		f, err := webFS.Open(strings.TrimPrefix(r.URL.Path, "/"))
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleEndSession)
			r.Post("/map/clicks", s.handleMapClick)
			r.Put("/form/type", s.handleChangeType)
			r.Post("/form/submit", s.handleSubmit)
			r.Get("/workouts", s.handleListWorkouts)
			r.Get("/workouts/{workoutID}", s.handleGetWorkout)
			r.Post("/list/clicks", s.handleListClick)
			r.Get("/list", s.handleRenderList)
			r.Get("/markers", s.handleMarkers)
			r.Get("/alerts", s.handleDrainAlerts)
		})
	})

	if s.mcp != nil {
		s.router.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Handle("/mcp", s.mcp)
		})
	}
}
