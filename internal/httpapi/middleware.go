package httpapi

import (
	"net"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/a3tai/pdf-tools/internal/logging"
)

// statusRecorder captures the status code written by the next handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LogRequests logs one line per request
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		event := logging.Info()
		if rec.status >= http.StatusInternalServerError {
			event = logging.Error()
		}
		event.With(
			logging.Component("http"),
			logging.Str("method", r.Method),
			logging.Path(r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration(time.Since(start)),
		).Msg("request")
	})
}

// RateLimit allows rate requests per second per client address, with
// bursts of the same size. A rate of zero or less disables limiting.
func RateLimit(rate int) func(http.Handler) http.Handler {
	if rate <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    rate,
		FailOpen: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiter.Allow(r.Context(), key) {
				logging.Warn().
					With(logging.Component("http"), logging.Str("client", key), logging.Path(r.URL.Path)).
					Msg("rate limit exceeded")
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, slow down", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the client by the host part of its remote address
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
