package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/stretchr/testify/require"
)

type testResolver struct {
	tokenToUser map[string]string
	err         error
}

func (r *testResolver) CurrentSession(_ context.Context, token string) (*account.AuthResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	userID, ok := r.tokenToUser[token]
	if !ok {
		return nil, account.ErrNoSession
	}
	return &account.AuthResult{
		Session: &account.Session{ID: token, UserID: userID},
		User:    &account.User{ID: userID},
	}, nil
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &testResolver{tokenToUser: map[string]string{"token": "u1"}}

	handler := AuthMiddleware(resolver, "sid", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "u1", userID)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "token"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_Invalid(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resolver := &testResolver{tokenToUser: map[string]string{}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	AuthMiddleware(resolver, "sid", nil)(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	AuthMiddleware(resolver, "sid", nil)(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	broken := &testResolver{err: errors.New("store down")}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	AuthMiddleware(broken, "sid", nil)(next).ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTokenFromRequest_PrefersBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "cookie-token"})
	require.Equal(t, "header-token", TokenFromRequest(req, "sid"))

	req.Header.Del("Authorization")
	require.Equal(t, "cookie-token", TokenFromRequest(req, "sid"))
	require.Equal(t, "", TokenFromRequest(req, ""))
}
