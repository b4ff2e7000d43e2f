// Package http exposes budget reports and budget period editing as a JSON
// API.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"hogar/internal/core"
	"hogar/internal/log"
	"hogar/internal/services"
)

type requestIDKey struct{}

// Ports the handlers depend on.
type (
	BudgetReporter interface {
		Report(ctx context.Context, hh core.HouseholdContext, window core.Window) (services.BudgetReport, error)
	}

	PeriodEditor interface {
		EnsurePeriod(ctx context.Context, householdID string, month core.MonthKey, seedZero bool) (core.BudgetPeriod, bool, error)
		SetBudgetLine(ctx context.Context, householdID string, month core.MonthKey, line core.BudgetLine) error
		ClearBudgetLine(ctx context.Context, householdID string, month core.MonthKey, categoryID string, scope core.Scope) error
	}

	// ReadinessChecker reports whether backing services are reachable.
	ReadinessChecker interface {
		Ping(ctx context.Context) error
	}
)

// Options configure a Server. Reports, Periods and Logger are required.
type Options struct {
	Reports  BudgetReporter
	Periods  PeriodEditor
	Ready    ReadinessChecker
	Logger   *log.Logger
	SeedZero bool
	// RateLimit caps mutating requests per client per minute (default 60).
	RateLimit int
}

type Server struct {
	http.Server
	reports  BudgetReporter
	periods  PeriodEditor
	ready    ReadinessChecker
	logger   *log.Logger
	access   *log.StructuredLogger
	seedZero bool
	now      func() time.Time

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		reports:     opts.Reports,
		periods:     opts.Periods,
		ready:       opts.Ready,
		logger:      logger,
		access:      log.NewStructuredLogger(logger),
		seedZero:    opts.SeedZero,
		now:         time.Now,
		rateLimiter: newRateLimiter(opts.RateLimit, time.Minute),
		metrics:     &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/households/{household}/budget", s.handleBudget)
	mux.HandleFunc("POST /api/households/{household}/periods", s.handleOpenPeriod)
	mux.HandleFunc("PUT /api/households/{household}/periods/{month}/lines/{category}", s.handleSetLine)
	mux.HandleFunc("DELETE /api/households/{household}/periods/{month}/lines/{category}", s.handleClearLine)

	requestID := log.RequestIDMiddleware(func(r *http.Request) string {
		id, _ := r.Context().Value(requestIDKey{}).(string)
		return id
	})
	s.Handler = s.withSecurity(log.Middleware(logger)(requestID(mux)))
	return s
}

// withSecurity assigns a request ID, sets security headers, rate limits
// mutating requests and logs completion.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.metrics.totalRequests, 1)

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		setSecurityHeaders(w.Header())

		if isSuspicious(r, s.metrics) {
			s.logger.WarnContext(ctx, "Suspicious request",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !s.rateLimiter.allow(clientIP, s.metrics) {
			w.Header().Set("Retry-After", "60")
			writeError(rw, http.StatusTooManyRequests, "rate limit exceeded")
		} else {
			next.ServeHTTP(rw, r)
		}

		s.access.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
