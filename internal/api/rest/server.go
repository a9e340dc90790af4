package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fortuna/courtside/internal/runs"
	"github.com/fortuna/courtside/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
	logger  *slog.Logger
}

// Options configures NewServer
type Options struct {
	Port           string
	AllowedOrigins []string
	DefaultSeason  int
	// Scheduler is optional; it only feeds the ingest status payload
	Scheduler SchedulerStatus
	// Cache is optional; /health reports its state when set
	Cache CacheHealth
}

// NewServer creates a new REST API server
func NewServer(opts Options, db *store.Database, runsSvc *runs.Service, logger *slog.Logger) *Server {
	logger = logger.With("component", "rest")

	return &Server{
		port:   opts.Port,
		logger: logger,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", opts.Port),
			Handler: NewRouter(opts, db, runsSvc, logger),
		},
	}
}

// NewRouter builds the routes and middleware stack
func NewRouter(opts Options, db *store.Database, runsSvc *runs.Service, logger *slog.Logger) http.Handler {
	handler := NewHandler(db, opts.Cache, opts.DefaultSeason)
	ingestHandler := NewIngestHandler(runsSvc, opts.Scheduler)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(TimingMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamCode}", handler.GetTeam).Methods("GET")
	api.HandleFunc("/teams/{teamCode}/roster", handler.GetTeamRoster).Methods("GET")
	api.HandleFunc("/teams/{teamCode}/overview", handler.GetTeamOverview).Methods("GET")

	// Stats
	api.HandleFunc("/stats", handler.GetSeasonStats).Methods("GET")
	api.HandleFunc("/stats/leaders", handler.GetLeaders).Methods("GET")

	// Players
	api.HandleFunc("/players/{playerID}", handler.GetPlayer).Methods("GET")

	// Ingestion
	api.HandleFunc("/ingest", ingestHandler.HandleIngestRequest).Methods("POST")
	api.HandleFunc("/ingest/status", ingestHandler.HandleIngestStatus).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Process-Time", middleware.RequestIDHeader},
	})
	return c.Handler(router)
}

// Start starts the REST API server
func (s *Server) Start() error {
	s.logger.Info("rest server listening", "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
