package server

import (
	"net/http"
	"time"

	"github.com/teemow/calbridge/internal/instrumentation"
)

// statusRecorder captures the response status for the metrics middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// The mux fills in r.Pattern once a route matches, so the path
		// label stays bounded to the registered routes. Unmatched
		// requests share a single bucket.
		path := instrumentation.NormalizeRoute(r.Pattern)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(started))
	})
}

// withCORS admits the configured frontend origin. Preflight requests are
// answered here and never reach the handlers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && origin == s.cfg.FrontendURL
		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			// Preflight from any other origin gets no CORS headers, so
			// the browser rejects the cross-origin request.
			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
