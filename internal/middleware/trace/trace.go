// Package trace tags every request with an id, a request-scoped logger and
// a completion log line, and counts it on the metrics collector.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/log"
	"finanzas/internal/metrics"
)

// HeaderRequestID carries the request id in both directions. An incoming
// value is reused so a proxy's id survives into our logs.
const HeaderRequestID = "X-Request-ID"

type ContextKey string

const RequestIDKey ContextKey = "request_id"

type Middleware struct {
	logger    *log.Logger
	metrics   *metrics.Collector
	extractIP func(*http.Request) string
}

// NewMiddleware builds the tracer. logger and m may be nil; extractIP
// defaults to RemoteAddr.
func NewMiddleware(logger *log.Logger, m *metrics.Collector, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.FromSlog(slog.Default(), log.ComponentHTTP)
	}
	if extractIP == nil {
		extractIP = func(r *http.Request) string { return r.RemoteAddr }
	}
	return &Middleware{logger: logger, metrics: m, extractIP: extractIP}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, m.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.metrics.HTTPRequest(r.Method, rw.statusCode)
		log.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), m.extractIP(r))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
