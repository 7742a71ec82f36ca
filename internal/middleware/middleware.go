package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/poofware/intake-service/internal/utils"
)

// Prometheus HTTP metrics.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
}

// RequestIDMiddleware generates or propagates X-Request-ID headers.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), utils.CtxKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs each request and records Prometheus metrics.
// Paths in skipPaths are excluded from logging but still recorded.
// Metrics are labelled with the mux route template so tokens in the
// path never become label values.
func LoggingMiddleware(skipPaths []string) mux.MiddlewareFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			route := routeTemplate(r)

			if !skip[r.URL.Path] {
				utils.Logger.WithFields(logrus.Fields{
					"method":     r.Method,
					"route":      route,
					"status":     sw.status,
					"duration":   duration.String(),
					"request_id": utils.RequestID(r.Context()),
				}).Info("http request")
			}

			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		})
	}
}

// RecoveryMiddleware catches panics and returns a 500 error response.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.Logger.WithFields(logrus.Fields{
					"panic":      rec,
					"path":       r.URL.Path,
					"request_id": utils.RequestID(r.Context()),
				}).Error("panic recovered")
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "An unexpected error occurred", nil,
				)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware enforces per-IP token-bucket limits on POST requests.
// Page and asset reads are never limited.
func RateLimitMiddleware(rps float64, burst int) mux.MiddlewareFunc {
	rl := &ipRateLimiter{
		rateVal: rate.Limit(rps),
		burst:   burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || rps <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.allow(clientIP(r)) {
				utils.HandleAppError(w, utils.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ipRateLimiter tracks per-IP token-bucket rate limiters.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimitEntry
	rateVal  rate.Limit
	burst    int
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limiters == nil {
		l.limiters = make(map[string]*rateLimitEntry)
	}

	e, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= 10000 {
			l.cleanup()
		}
		e = &rateLimitEntry{limiter: rate.NewLimiter(l.rateVal, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = time.Now()

	return e.limiter.Allow()
}

// cleanup removes entries not seen in the last 10 minutes.
// Must be called with l.mu held.
func (l *ipRateLimiter) cleanup() {
	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if parts := strings.SplitN(xff, ",", 2); len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}
