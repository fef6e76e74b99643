package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dan9191/loan-service/internal/service"
)

type contextKey struct{}

// TokenParser turns a bearer token into the caller it identifies
type TokenParser interface {
	ParseToken(token string) (service.Identity, error)
}

// WithIdentity stores the authenticated caller in ctx
func WithIdentity(ctx context.Context, who service.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, who)
}

// IdentityFrom returns the caller stored by AuthMiddleware
func IdentityFrom(ctx context.Context) (service.Identity, bool) {
	who, ok := ctx.Value(contextKey{}).(service.Identity)
	return who, ok
}

func writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// AuthMiddleware validates the bearer JWT and puts the caller on the request context.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, `{"error":"missing authorization header"}`)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, `{"error":"invalid authorization format"}`)
				return
			}

			who, err := tokens.ParseToken(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, `{"error":"invalid token"}`)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, `{"error":"unauthenticated"}`)
			return
		}
		if !who.IsAdmin() {
			writeError(w, http.StatusForbidden, `{"error":"admin role required"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}
