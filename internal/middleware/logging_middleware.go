package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"taxifare.predict.org/internal/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request and records its duration.
// /metrics is left out of the log to keep scrapes from drowning the output.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			metrics.IncomingLatency.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Observe(elapsed.Seconds())

			if r.URL.Path == "/metrics" {
				return
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", elapsed.Milliseconds(),
			)
		})
	}
}
