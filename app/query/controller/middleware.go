package controller

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WithRequestLog writes one access log line per request: request line, status and latency.
func (c *Controller) WithRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		c.App.Logger.Info("request",
			zap.String("request", fmt.Sprintf("%s %s %s", r.Method, r.URL.RequestURI(), r.Proto)),
			zap.Int("status", rec.status),
			zap.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
