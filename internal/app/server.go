package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markdave123-py/contexta-ingest/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/contexta-ingest/internal/api/middlewares"
	"github.com/markdave123-py/contexta-ingest/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, jobs handlers.JobService) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(jobs),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// NewRouter returns the API routes. Only the ingestion stream is exempt from
// the request timeout, since a job can run for minutes.
func NewRouter(jobs handlers.JobService) http.Handler {
	ingestHandler := handlers.NewIngestHandler(jobs)
	docHandler := handlers.NewDocumentHandler(jobs)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(slog.Default().With("component", "http")))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/updatedatabase", ingestHandler.UpdateDatabase)

		api.Group(func(short chi.Router) {
			short.Use(middleware.Timeout(60 * time.Second))
			short.Get("/documents", docHandler.GetDocuments)
		})
	})

	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
