// Package middleware provides HTTP middleware for the csvprobe server.
package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/JonMunkholm/csvprobe/internal/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger logs one entry per request and makes the request-scoped logger
// available to the validator through core.ContextWithLogger.
//
// It must run after chi's RequestID so entries carry request_id.
//
// Log fields: method, path, status, bytes, duration, ip, user_agent.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.FromContext(r.Context())
		ctx := core.ContextWithLogger(r.Context(), logger)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()),
		)
	})
}
