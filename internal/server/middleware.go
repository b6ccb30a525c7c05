package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/session"
)

// requestLogger logs one structured line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// requirePhase rejects requests whose session phase does not match,
// answering with the target the gate would route the caller to
// instead. Handlers behind this middleware never re-check access.
func (s *Server) requirePhase(phase session.Phase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if current := s.gate.Phase(); current != phase {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":    "not available in the current session phase",
					"phase":    string(current),
					"redirect": s.gate.Resolve(session.TargetDashboard),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
