// Package api exposes the marketplace contract over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dimitribekale/ai-marketplace/internal/core/domain"
	"github.com/dimitribekale/ai-marketplace/internal/health"
	"github.com/dimitribekale/ai-marketplace/internal/platform/ratelimiter"
)

const maxBodyBytes = 1 << 20

// ChainService is the contract surface the handlers depend on.
type ChainService interface {
	ReadCount(ctx context.Context) (*big.Int, error)
	SubmitListing(ctx context.Context, listing domain.Listing) (*domain.Receipt, error)
}

// HealthChecker reports node connectivity.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Options holds HTTP server settings.
type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server provides the marketplace HTTP endpoints.
type Server struct {
	chain   ChainService
	health  HealthChecker
	limiter *ratelimiter.Limiter
	log     *slog.Logger
	server  *http.Server
}

// NewServer creates a new API server. A nil limiter disables rate limiting.
func NewServer(chain ChainService, checker HealthChecker, limiter *ratelimiter.Limiter, opts Options) *Server {
	s := &Server{
		chain:   chain,
		health:  checker,
		limiter: limiter,
		log:     slog.Default().With("component", "api"),
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /health/detailed", s.instrument("health_detailed", http.HandlerFunc(s.handleDetailed)))
	mux.Handle("GET /model-count", s.instrument("model_count", http.HandlerFunc(s.handleModelCount)))
	mux.Handle("POST /list-model", s.instrument("list_model", s.rateLimit(http.HandlerFunc(s.handleListModel))))
	mux.Handle("GET /metrics", promhttp.Handler())

	// WriteTimeout must cover the receipt wait of POST /list-model.
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      withRequestID(mux),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Serve accepts connections on l until the server is stopped.
func (s *Server) Serve(l net.Listener) error {
	return s.server.Serve(l)
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
