// Package web serves the server-rendered pages and owns route guarding,
// flash notifications and form handling.
package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/transport"
)

// Notification texts.
const (
	msgLoginFailed       = "Login failed. Please check your credentials."
	msgLoggedIn          = "Logged in successfully!"
	msgSignupFailed      = "Signup failed. Please check your information and try again."
	msgDuplicateAccount  = "An account with this email already exists. Please try logging in instead."
	msgAccountCreated    = "Account created successfully!"
	msgPermissionDenied  = "You do not have permission to view this project"
	msgProjectNotFound   = "Project not found"
	msgLoadProject       = "Failed to load project data"
	msgBackendDown       = "AI service temporarily unavailable. Please try again later."
	msgSubmitFailed      = "Failed to submit project"
	msgSubmitted         = "Project submitted successfully! AI analysis completed."
	msgNotCSV            = "Please upload a CSV file"
	msgPredictionFailed  = "Failed to generate prediction"
	msgPredictionSaved   = "Prediction generated successfully!"
	msgLoadProfile       = "Failed to load profile data"
	msgProfileFailed     = "Failed to update profile"
	msgProfileUpdated    = "Profile updated successfully!"
	msgPasswordMismatch  = "New passwords do not match"
	msgPasswordLength    = "Password must be 8 to 72 characters"
	msgPasswordFailed    = "Failed to update password"
	msgPasswordUpdated   = "Password updated successfully!"
	msgDashboardFailed   = "Failed to load dashboard"
	msgProjectListFailed = "Failed to load projects"
)

// Handler serves the view layer.
type Handler struct {
	svc       transport.Services
	cookie    transport.CookieSettings
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewHandler creates the view-layer router.
func NewHandler(svc transport.Services, cookie transport.CookieSettings, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	h := &Handler{svc: svc, cookie: cookie, templates: templates, logger: logger}

	r := chi.NewRouter()
	r.Use(recoverer(logger))
	r.Use(h.loadSession)

	r.Get("/", h.home)

	r.Group(func(r chi.Router) {
		r.Use(guestOnly)
		r.Get("/login", h.loginForm)
		r.Post("/login", h.login)
		r.Get("/signup", h.signupForm)
		r.Post("/signup", h.signup)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/logout", h.logout)
		r.Get("/dashboard", h.dashboard)
		r.Get("/projects", h.projectList)
		r.Get("/projects/new", h.projectForm)
		r.Post("/projects", h.submitProject)
		r.Get("/projects/{id}", h.projectDetail)
		r.Post("/projects/{id}/whatif", h.whatIf)
		r.Get("/profile", h.profile)
		r.Post("/profile", h.updateProfile)
		r.Post("/profile/password", h.updatePassword)
	})

	return r, nil
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", "Cost Advisor", nil)
}

// failureMessage picks the notification for a failed action.
func failureMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, inference.ErrBackendUnavailable):
		return msgBackendDown
	case errors.Is(err, project.ErrPermissionDenied):
		return msgPermissionDenied
	case errors.Is(err, project.ErrProjectNotFound):
		return msgProjectNotFound
	case errors.Is(err, account.ErrPasswordMismatch):
		return msgPasswordMismatch
	case transport.Classify(err) == transport.KindValidation:
		return err.Error()
	default:
		return fallback
	}
}
