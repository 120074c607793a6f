// Package middleware contains HTTP middleware shared by every route.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippet-activity/internal/auth"
)

// responseWriter records the status code and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger logs one line per request. The request id comes from chi's RequestID
// middleware. The user and token ids are only known once authentication has
// run, so they are read from the request the inner handlers saw.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			var inner *http.Request
			next.ServeHTTP(wrapped, r.WithContext(withRequestHook(r.Context(), &inner)))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			}
			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				attrs = append(attrs, slog.String("requestID", reqID))
			}
			if inner != nil {
				if id, ok := auth.IdentityFromContext(inner.Context()); ok {
					attrs = append(attrs, slog.Int64("userID", id.UserID), slog.String("tokenID", id.TokenID))
				}
			}

			level := slog.LevelInfo
			if wrapped.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}
