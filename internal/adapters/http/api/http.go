// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/salesdash/internal/domain/aggregate"
	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Sales returns the record set of a grouping as served by the source.
	Sales(ctx context.Context, g grouping.Grouping) (types.Dataset, error)
	// Summary returns the aggregation of a grouping.
	Summary(ctx context.Context, g grouping.Grouping) (*aggregate.Summary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	salesHandler  *SalesHandler

	allowedOrigin string
	logger        logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAllowedOrigin sets the CORS allowed origin. Empty disables CORS headers.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		s.allowedOrigin = origin
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		allowedOrigin: "*",
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.salesHandler = NewSalesHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/api/sales", s.instrument(s.salesHandler.HandleGetSales, "sales"))
	mux.Handle("/api/summary", s.instrument(s.salesHandler.HandleGetSummary, "summary"))
	mux.Handle("/api/health", s.instrument(s.healthHandler.HandleHealth, "health"))
	mux.Handle("/stats", s.instrument(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// instrument applies the request id, CORS and metrics middleware to h.
func (s *Server) instrument(h http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(CORSMiddleware(s.allowedOrigin, MetricsMiddleware(h, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Code: code, Message: publicMessage(err)})
}
