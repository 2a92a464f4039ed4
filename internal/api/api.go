package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/queue"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

type RouteRegistrar func(r chi.Router, s *APIServer)

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	routeRegistrars     []RouteRegistrar
	cors                middleware.CORSConfig
	metrics             *metrics
}

type Option func(*APIServer)

// WithAllowedOrigins sets the origins allowed by CORS.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *APIServer) {
		s.cors.AllowedOrigins = origins
	}
}

// WithRegisterer registers the HTTP collectors with reg instead of the
// default registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *APIServer) {
		s.metrics = newMetrics(reg, s.listenAddr, s.requestQueueManager)
	}
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, registrars []RouteRegistrar, opts ...Option) *APIServer {
	s := &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		routeRegistrars:     registrars,
		cors: middleware.CORSConfig{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "OPTIONS", "DELETE"},
			AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization", "X-Session-Token", "If-Match"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm)
	}
	return s
}

// Handler builds the full router: global middleware, every registered
// route group and the metrics endpoint.
func (s *APIServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(s.metrics.instrument)

	for _, reg := range s.routeRegistrars {
		reg(r, s)
	}

	r.Handle("/metrics", s.metrics.metricsHandler())
	return r
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", s.listenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down", "addr", s.listenAddr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
