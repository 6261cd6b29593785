package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// loggingMiddleware logs HTTP requests using slog and records request
// durations by route pattern.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			duration := time.Since(start)

			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", duration.Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)

			if s.metrics != nil {
				route := chi.RouteContext(r.Context()).RoutePattern()
				if route == "" {
					route = "unmatched"
				}
				s.metrics.RequestDuration.
					WithLabelValues(route, strconv.Itoa(ww.Status())).
					Observe(duration.Seconds())
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// requireAuth verifies the admin bearer token from the Authorization
// header. Websocket clients cannot set headers from the browser, so a
// "token" query parameter is accepted as a fallback.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		username, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			slog.Warn("rejected admin token", "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		slog.Debug("authenticated request", "username", username)
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
