package middleware

import (
	"net/http"
	"strconv"
	"time"

	"ritualos/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Metrics records the request counter and duration histogram per route
// pattern (not per raw path, to keep label cardinality bounded).
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.ReqCount.WithLabelValues(r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
		metrics.ReqDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
