package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or overwrite the
// identity stored in a request context.
type contextKey string

const identityKey contextKey = "identity"

const cookieName = "token"

// RequireAuth rejects requests without a valid token with 401 and stores the
// verified Identity in the request context otherwise.
func RequireAuth(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				logger.Debug("rejected request", slog.String("path", r.URL.Path), slog.String("reason", err.Error()))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireCapability answers 403 unless the identity in the context holds
// capability. It must run after RequireAuth.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			if !id.Has(capability) {
				writeJSONError(w, http.StatusForbidden, "forbidden", "missing capability "+capability)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the verified caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != 0
}

// extractIdentity prefers the Authorization header and falls back to the
// cookie set by the host.
func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return Identity{}, errors.New("auth: malformed Authorization header")
		}
		return tokens.Validate(strings.TrimSpace(raw))
	}

	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return Identity{}, err
	}
	return tokens.Validate(cookie.Value)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","message":"` + message + `"}`))
}
