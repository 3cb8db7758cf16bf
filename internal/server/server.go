package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alryaz/go-music-browser/internal/browser"
	"github.com/alryaz/go-music-browser/internal/resolver"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// Server hosts the delivery endpoint, the browse/play API and metrics.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds the router and wires all handlers and middleware.
func New(config *shared.Config, b *browser.Browser, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "server")

	router := mux.NewRouter()
	router.Use(mux.MiddlewareFunc(LoggingMiddleware(logger)))
	router.Use(mux.MiddlewareFunc(MetricsMiddleware()))

	delivery := NewDeliveryHandler(b, logger)
	api := NewAPIHandler(b, logger)

	deliveryRoutes := router.PathPrefix(resolver.DeliveryPath).Subrouter()
	deliveryRoutes.Handle("/{token}/{type}/{id}/playlist.m3u8", delivery).Methods(http.MethodGet)
	deliveryRoutes.Handle("/{token}/{type}/{id}/track", delivery).Methods(http.MethodGet)
	deliveryRoutes.HandleFunc("/browse", api.Browse).Methods(http.MethodGet)
	deliveryRoutes.HandleFunc("/play", api.Play).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)

	address := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &Server{
		httpServer: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// ListenAndServe blocks until the server stops or ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("listening", "address", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// Handler returns the root handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
