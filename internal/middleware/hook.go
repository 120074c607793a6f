package middleware

import (
	"context"
	"net/http"
)

type hookKey struct{}

func withRequestHook(ctx context.Context, dst **http.Request) context.Context {
	return context.WithValue(ctx, hookKey{}, dst)
}

// CaptureRequest hands the request it receives back to the Logger middleware
// wrapping it, so values added to the context further down (the caller's
// identity) can be logged. Mount it after authentication.
func CaptureRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dst, ok := r.Context().Value(hookKey{}).(**http.Request); ok {
			*dst = r
		}
		next.ServeHTTP(w, r)
	})
}
