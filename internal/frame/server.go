// Package frame serves the coin stats frame: documents, images and a JSON view.
package frame

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"coinFrame/internal/model"
)

// Resolver resolves a symbol to stats. *resolver.Pipeline satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) (model.CoinStats, error)
}

// Options configures a Server.
type Options struct {
	BaseURL         string
	ReferenceSymbol string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	Registry        *prometheus.Registry
	Logger          *zap.Logger
}

// HTTPConfig holds listener timeouts.
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wires the frame routes over a Resolver.
type Server struct {
	resolver        Resolver
	baseURL         string
	referenceSymbol string
	requestTimeout  time.Duration
	logger          *zap.Logger
	metrics         *metrics
	handler         http.Handler
}

func NewServer(resolver Resolver, opts Options) (*Server, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is nil")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ReferenceSymbol == "" {
		opts.ReferenceSymbol = "ETH"
	}

	m, err := newMetrics(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	s := &Server{
		resolver:        resolver,
		baseURL:         opts.BaseURL,
		referenceSymbol: opts.ReferenceSymbol,
		requestTimeout:  opts.RequestTimeout,
		logger:          opts.Logger,
		metrics:         m,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/frame", s.handleFrame).Methods(http.MethodPost)
	router.HandleFunc("/image", s.handleImage).Methods(http.MethodGet)
	router.HandleFunc("/api/stats/{symbol}", s.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.Use(s.logRequests)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
	}).Handler(router)

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on listen until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, listen string, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("http server listening", zap.String("listen", listen))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
