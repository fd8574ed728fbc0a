package web

import (
	"errors"
	"net/http"

	"github.com/rpggio/costadvisor/internal/domain/account"
)

type authForm struct {
	Name  string
	Email string
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Log in", authForm{})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderView(w, r, http.StatusBadRequest, "login", view{Title: "Log in", Error: msgLoginFailed, Data: authForm{}})
		return
	}
	form := authForm{Email: r.PostForm.Get("email")}

	auth, err := h.svc.Accounts.Login(r.Context(), form.Email, r.PostForm.Get("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, account.ErrAuthFailure) {
			h.logger.Error("login failed", "error", err)
			status = http.StatusInternalServerError
		}
		h.renderView(w, r, status, "login", view{Title: "Log in", Error: msgLoginFailed, Data: form})
		return
	}

	h.cookie.SetSessionCookie(w, auth.Session)
	redirectWithFlash(w, r, "/dashboard", FlashSuccess, msgLoggedIn)
}

func (h *Handler) signupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", "Sign up", authForm{})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderView(w, r, http.StatusBadRequest, "signup", view{Title: "Sign up", Error: msgSignupFailed, Data: authForm{}})
		return
	}
	form := authForm{Name: r.PostForm.Get("name"), Email: r.PostForm.Get("email")}

	auth, err := h.svc.Accounts.Signup(r.Context(), account.SignupRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		status, msg := http.StatusBadRequest, msgSignupFailed
		switch {
		case errors.Is(err, account.ErrDuplicateAccount):
			status, msg = http.StatusConflict, msgDuplicateAccount
		case !errors.Is(err, account.ErrInvalidInput):
			h.logger.Error("signup failed", "error", err)
			status = http.StatusInternalServerError
		}
		h.renderView(w, r, status, "signup", view{Title: "Sign up", Error: msg, Data: form})
		return
	}

	h.cookie.SetSessionCookie(w, auth.Session)
	redirectWithFlash(w, r, "/dashboard", FlashSuccess, msgAccountCreated)
}

// logout ends the session, clears the cookie and returns to the landing page.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	if err := h.svc.Accounts.Logout(r.Context(), st.Auth.Session.ID); err != nil && !errors.Is(err, account.ErrNoSession) {
		h.logger.Warn("logout failed", "error", err)
	}
	h.cookie.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
