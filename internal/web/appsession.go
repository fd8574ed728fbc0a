package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/transport"
)

// State is the application-session context handed to every view. It is
// resolved once per request from the session cookie; a nil Auth means the
// visitor is logged out.
type State struct {
	Auth  *account.AuthResult
	Flash *Flash
}

// LoggedIn reports whether a user is signed in.
func (s *State) LoggedIn() bool {
	return s != nil && s.Auth != nil
}

// User returns the signed-in user, or nil.
func (s *State) User() *account.User {
	if !s.LoggedIn() {
		return nil
	}
	return s.Auth.User
}

type stateKey struct{}

// StateFromContext returns the request's application-session state.
func StateFromContext(ctx context.Context) *State {
	if st, ok := ctx.Value(stateKey{}).(*State); ok {
		return st
	}
	return &State{}
}

// loadSession resolves the session cookie. A stale cookie is cleared.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &State{Flash: popFlash(w, r)}

		if token := transport.TokenFromRequest(r, h.cookie.Name); token != "" {
			auth, err := h.svc.Accounts.CurrentSession(r.Context(), token)
			switch {
			case err == nil:
				st.Auth = auth
			case errors.Is(err, account.ErrNoSession):
				h.cookie.ClearSessionCookie(w)
			default:
				h.logger.Warn("session lookup failed", "error", err)
			}
		}

		ctx := context.WithValue(r.Context(), stateKey{}, st)
		if st.Auth != nil {
			ctx = transport.WithAuth(ctx, st.Auth)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser redirects logged-out visitors to the login page.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !StateFromContext(r.Context()).LoggedIn() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// guestOnly redirects signed-in users to the dashboard.
func guestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if StateFromContext(r.Context()).LoggedIn() {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
