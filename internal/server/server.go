// internal/server/server.go
// Package server exposes the intake flow over HTTP: one endpoint per thing a
// form client needs: submit, current state, history, and the form schema.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-intake/internal/common/config"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/store"
	"loan-intake/internal/submission"
)

type Server struct {
	service *submission.Service
	history store.Store
	logger  logger.Logger
	origins []string
	router  chi.Router
}

func New(cfg config.ServerConfig, svc *submission.Service, history store.Store, log logger.Logger) *Server {
	s := &Server{
		service: svc,
		history: history,
		logger:  log.WithFields(map[string]interface{}{"component": "server"}),
		origins: cfg.AllowedOrigins,
	}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.cors)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/applications", s.handleSubmit)
		r.Get("/applications/state", s.handleState)
		r.Get("/applications/history", s.handleHistory)
		r.Get("/schema", s.handleSchema)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// Router returns the configured handler, also used directly by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}

// cors mirrors the origin allow-list of the upstream prediction deployment:
// explicit origins only, no wildcard credentials.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.origins {
		if allowed == origin {
			return true
		}
	}
	return false
}
