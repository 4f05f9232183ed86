package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
	router *mux.Router
	log    logrus.FieldLogger
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, corsOrigins []string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "rest")

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggingMiddleware(log))
	router.Use(CORSMiddleware(corsOrigins))

	router.HandleFunc("/", handler.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/player-season-stats", handler.GetSeasonStats).Methods(http.MethodGet)
	api.HandleFunc("/players", handler.GetPlayers).Methods(http.MethodGet)

	// Preflight requests are answered by the CORS middleware.
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return &Server{
		port:   port,
		router: router,
		log:    log,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	s.log.WithField("port", s.port).Info("REST API listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
