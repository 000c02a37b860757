// Package api exposes the analytics engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/analytics"
	"github.com/sells-group/proposal-cli/internal/config"
)

// Reporter builds analytics reports.
type Reporter interface {
	Report(ctx context.Context, companyID, proposalID string) (*analytics.ScoreReport, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	reporter Reporter
	pinger   Pinger
	auth     *Authenticator
	limiter  *Limiter
	origins  []string
	timeout  time.Duration
}

// NewServer creates a Server from the application config.
func NewServer(reporter Reporter, pinger Pinger, cfg *config.Config) *Server {
	timeout := time.Duration(cfg.Server.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{
		reporter: reporter,
		pinger:   pinger,
		auth:     NewAuthenticator(cfg.Auth),
		limiter:  NewLimiter(cfg.Server.RatePerSecond, cfg.Server.RateBurst),
		origins:  cfg.Server.AllowedOrigins,
		timeout:  timeout,
	}
}

// Routes returns the chi router for the API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Use(s.limiter.Middleware)
		r.Get("/analytics/{proposalID}", s.handleAnalytics)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			zap.L().Warn("api: health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	companyID, _ := CompanyID(r.Context())
	proposalID := chi.URLParam(r, "proposalID")

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.reporter.Report(ctx, companyID, proposalID)
	reportDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, analytics.ErrNotFound):
		reportsTotal.WithLabelValues(outcomeNotFound).Inc()
		writeError(w, http.StatusNotFound, "proposal not found")
	case errors.Is(err, context.DeadlineExceeded):
		reportsTotal.WithLabelValues(outcomeCancelled).Inc()
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case err != nil:
		reportsTotal.WithLabelValues(outcomeCancelled).Inc()
		zap.L().Info("api: analytics request cancelled",
			zap.String("proposal_id", proposalID),
			zap.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		outcome := outcomeOK
		if report.Degraded() {
			outcome = outcomeDegraded
		} else {
			successRate.Observe(float64(report.SuccessRate))
		}
		reportsTotal.WithLabelValues(outcome).Inc()
		writeJSON(w, http.StatusOK, report)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
