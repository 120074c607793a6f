package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/snippet-activity/internal/auth"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(Logger(logger))
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: 42, TokenID: "tok"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, CaptureRequest).Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("nope"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status=500")
	assert.Contains(t, out, "bytes=4")
	assert.Contains(t, out, "userID=42")
	assert.Contains(t, out, "requestID=")
}

func TestLogger_Anonymous(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "status=204")
	assert.NotContains(t, out, "userID")
}
