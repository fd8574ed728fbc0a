package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rpggio/costadvisor/internal/domain/account"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type authKey struct{}

// SessionResolver resolves a session token to the signed-in user.
type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*account.AuthResult, error)
}

// WithAuth stores the resolved session in ctx.
func WithAuth(ctx context.Context, auth *account.AuthResult) context.Context {
	return context.WithValue(ctx, authKey{}, auth)
}

// AuthFromContext returns the resolved session, if present.
func AuthFromContext(ctx context.Context) (*account.AuthResult, bool) {
	auth, ok := ctx.Value(authKey{}).(*account.AuthResult)
	return auth, ok && auth != nil
}

// UserIDFromContext returns the signed-in user's ID, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	auth, ok := AuthFromContext(ctx)
	if !ok {
		return "", false
	}
	return auth.User.ID, true
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); token != "" {
			return token
		}
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware enforces bearer token or session cookie authentication.
func AuthMiddleware(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				WriteError(w, logger, ErrUnauthorized)
				return
			}

			auth, err := resolver.CurrentSession(r.Context(), token)
			if err != nil {
				if errors.Is(err, account.ErrNoSession) {
					WriteError(w, logger, ErrUnauthorized)
					return
				}
				WriteError(w, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), auth)))
		})
	}
}
