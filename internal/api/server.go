package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/riostats/internal/config"
	"github.com/dgallion1/riostats/internal/lookup"
	"github.com/dgallion1/riostats/internal/metrics"
)

// Server is the HTTP API server for riostats.
type Server struct {
	router  chi.Router
	lookup  *lookup.Service
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *lookup.Service, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		lookup:  svc,
		metrics: m,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/character", s.handleCharacter)
	r.Get("/api/stats/render", s.handleRenderStats)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
