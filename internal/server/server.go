// Package server provides the HTTP API for solace.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/auth"
	"github.com/hyperjump/solace/internal/config"
	"github.com/hyperjump/solace/internal/evaluation"
	"github.com/hyperjump/solace/internal/metrics"
	"github.com/hyperjump/solace/internal/rag"
	"github.com/hyperjump/solace/internal/storage"
)

// Server is the HTTP server for the solace API.
type Server struct {
	chat        *rag.ChatService
	evaluations *evaluation.Controller
	store       storage.FragmentStore
	auth        *auth.Middleware
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	chat *rag.ChatService,
	evaluations *evaluation.Controller,
	store storage.FragmentStore,
	authMW *auth.Middleware,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		chat:        chat,
		evaluations: evaluations,
		store:       store,
		auth:        authMW,
		config:      cfg,
		logger:      logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Streaming responses are not bounded by the request timeout.
		r.With(s.auth.Optional).Post("/chat", s.handleChat)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Required)
			r.Use(middleware.Timeout(s.config.Server.RequestTimeout))
			r.Use(middleware.Compress(5))

			r.Get("/chat/mental-health-evaluation", s.handleEvaluation)
			r.Get("/chat/mental-health-evaluation/history", s.handleEvaluationHistory)

			r.Route("/v1", func(r chi.Router) {
				r.Post("/fragments", s.handleIndexFragment)
				r.Get("/fragments/recent", s.handleRecentFragments)
				r.Post("/retrieve", s.handleRetrieve)
				r.Get("/status", s.handleStatus)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, "route not found")
	})
	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.config.Server.CORSAllowedOrigins) > 0 {
		return s.config.Server.CORSAllowedOrigins
	}
	return []string{"http://localhost:*", "https://*"}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs each request with zap and records its duration by route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		took := time.Since(start)
		metrics.RequestDuration.
			WithLabelValues(r.Method, route, fmt.Sprintf("%dxx", status/100)).
			Observe(took.Seconds())
		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", took),
		)
	})
}
