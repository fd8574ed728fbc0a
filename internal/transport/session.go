package transport

import (
	"net/http"
	"time"

	"github.com/rpggio/costadvisor/internal/domain/account"
)

// CookieSettings controls the session cookie.
type CookieSettings struct {
	Name   string
	Secure bool
}

// SetSessionCookie writes the session token as an HTTP-only cookie that
// expires with the session.
func (c CookieSettings) SetSessionCookie(w http.ResponseWriter, sess *account.Session) {
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !sess.ExpiresAt.IsZero() {
		cookie.Expires = sess.ExpiresAt
		cookie.MaxAge = int(time.Until(sess.ExpiresAt).Seconds())
	}
	http.SetCookie(w, cookie)
}

// ClearSessionCookie expires the session cookie.
func (c CookieSettings) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
