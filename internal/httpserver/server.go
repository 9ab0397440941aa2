package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tahp/LinkManager/internal/config"
	"github.com/tahp/LinkManager/internal/httpserver/deps"
	"github.com/tahp/LinkManager/internal/httpserver/handlers"
	"github.com/tahp/LinkManager/internal/httpserver/mw"
	"github.com/tahp/LinkManager/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter builds the router with global middlewares and all routes.
func NewRouter(d deps.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(mw.Log(d.Logger))

	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/visit/{id}", handlers.VisitRedirect(d))

	r.Route("/api", func(r chi.Router) {
		r.Route("/links", func(r chi.Router) {
			r.Get("/", handlers.ListLinks(d))
			r.Post("/", handlers.CreateLink(d))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.GetLink(d))
				r.Patch("/", handlers.UpdateLink(d))
				r.Delete("/", handlers.DeleteLink(d))
				r.Post("/visit", handlers.RecordVisit(d))
			})
		})
		r.Get("/settings", handlers.GetSettings(d))
		r.Put("/settings", handlers.UpdateSettings(d))
	})

	return r
}

// New builds the HTTP server.
func New(cfg config.ServerConfig, d deps.Deps) *Server {
	s := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: d.Logger.Named("http"),
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logger.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
