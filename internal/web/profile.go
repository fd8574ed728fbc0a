package web

import (
	"errors"
	"net/http"

	"github.com/rpggio/costadvisor/internal/domain/account"
)

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	profile, err := h.svc.Accounts.Profile(r.Context(), st.User().ID)
	if err != nil {
		if !errors.Is(err, account.ErrProfileNotFound) {
			h.logger.Error("profile load failed", "error", err)
		}
		h.renderView(w, r, http.StatusOK, "profile", view{
			Title: "Profile",
			Error: msgLoadProfile,
			Data:  &account.Profile{Name: st.User().Name, Email: st.User().Email},
		})
		return
	}
	h.render(w, r, http.StatusOK, "profile", "Profile", profile)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/profile", FlashError, msgProfileFailed)
		return
	}
	st := StateFromContext(r.Context())
	if _, err := h.svc.Accounts.UpdateProfile(r.Context(), st.User().ID, r.PostForm.Get("name")); err != nil {
		if !errors.Is(err, account.ErrInvalidInput) {
			h.logger.Error("profile update failed", "error", err)
		}
		redirectWithFlash(w, r, "/profile", FlashError, msgProfileFailed)
		return
	}
	redirectWithFlash(w, r, "/profile", FlashSuccess, msgProfileUpdated)
}

// updatePassword rejects a confirmation mismatch before calling the
// session store.
func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, "/profile", FlashError, msgPasswordFailed)
		return
	}
	st := StateFromContext(r.Context())
	err := h.svc.Accounts.UpdatePassword(r.Context(), st.User().ID, account.PasswordChange{
		Current: r.PostForm.Get("current_password"),
		New:     r.PostForm.Get("new_password"),
		Confirm: r.PostForm.Get("confirm_password"),
	})
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/profile", FlashSuccess, msgPasswordUpdated)
	case errors.Is(err, account.ErrPasswordMismatch):
		redirectWithFlash(w, r, "/profile", FlashError, msgPasswordMismatch)
	case errors.Is(err, account.ErrInvalidInput):
		redirectWithFlash(w, r, "/profile", FlashError, msgPasswordLength)
	default:
		if !errors.Is(err, account.ErrAuthFailure) {
			h.logger.Error("password update failed", "error", err)
		}
		redirectWithFlash(w, r, "/profile", FlashError, msgPasswordFailed)
	}
}
