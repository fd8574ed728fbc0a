package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/dashboard"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/metrics"
)

// AccountService defines account operations needed by the API.
type AccountService interface {
	SessionResolver
	Login(ctx context.Context, email, password string) (*account.AuthResult, error)
	Signup(ctx context.Context, req account.SignupRequest) (*account.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (*account.Profile, error)
	UpdateProfile(ctx context.Context, userID, name string) (*account.User, error)
	UpdatePassword(ctx context.Context, userID string, req account.PasswordChange) error
}

// ProjectService defines project operations needed by the API.
type ProjectService interface {
	Submit(ctx context.Context, userID string, req project.SubmitRequest) (*project.SubmitResult, error)
	Get(ctx context.Context, userID, id string) (*project.Project, error)
	List(ctx context.Context, userID string) ([]project.Project, error)
}

// PredictionService defines prediction operations needed by the API.
type PredictionService interface {
	WhatIf(ctx context.Context, userID, projectID string, params prediction.WhatIfParams) (*prediction.WhatIfResult, error)
	ListForProject(ctx context.Context, userID, projectID string) ([]prediction.Prediction, error)
	ListByProject(ctx context.Context, proj *project.Project) ([]prediction.Prediction, error)
}

// DashboardService builds the dashboard summary.
type DashboardService interface {
	Summary(ctx context.Context, userID string) (*dashboard.Summary, error)
}

// HealthChecker reports inference service health.
type HealthChecker interface {
	Health(ctx context.Context) (*inference.HealthStatus, error)
}

// Services contains the domain services behind the API.
type Services struct {
	Accounts    AccountService
	Projects    ProjectService
	Predictions PredictionService
	Dashboard   DashboardService
	Health      HealthChecker
}

// Options configures optional mounts and middleware.
type Options struct {
	Cookie  CookieSettings
	Metrics *metrics.Metrics
	// MetricsHandler is served at /metrics when set.
	MetricsHandler http.Handler
	// MCP is served at /mcp when set. It authenticates on its own.
	MCP http.Handler
	// Web is mounted at / when set.
	Web    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	cookie CookieSettings
	logger *slog.Logger
}

// NewServer creates the HTTP router with middleware.
func NewServer(svc Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{svc: svc, cookie: opts.Cookie, logger: logger}

	r := chi.NewRouter()
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware("costadvisor"))
	}

	r.Get("/health", s.handleHealth)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/signup", s.handleSignup)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(svc.Accounts, opts.Cookie.Name, logger))

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)
			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/profile/password", s.handleUpdatePassword)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/projects", s.handleListProjects)
			r.Post("/projects", s.handleSubmitProject)
			r.Get("/projects/{id}", s.handleGetProject)
			r.Get("/projects/{id}/predictions", s.handleListPredictions)
			r.Post("/projects/{id}/predictions", s.handleWhatIf)
		})
	})

	if opts.Web != nil {
		r.Mount("/", opts.Web)
	}

	return r
}

type healthResponse struct {
	Status    string                  `json:"status"`
	Inference *inference.HealthStatus `json:"inference,omitempty"`
	Error     string                  `json:"inference_error,omitempty"`
}

// handleHealth reports the process as up; an unreachable inference service
// degrades the status without failing the probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.svc.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		status, err := s.svc.Health.Health(ctx)
		if err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		} else {
			resp.Inference = status
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *account.User `json:"user"`
}

func (s *Server) writeAuth(w http.ResponseWriter, status int, auth *account.AuthResult) {
	s.cookie.SetSessionCookie(w, auth.Session)
	WriteJSON(w, status, authResponse{Token: auth.Session.ID, ExpiresAt: auth.Session.ExpiresAt, User: auth.User})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	auth, err := s.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	s.writeAuth(w, http.StatusOK, auth)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	auth, err := s.svc.Accounts.Signup(r.Context(), account.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	s.writeAuth(w, http.StatusCreated, auth)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())
	if err := s.svc.Accounts.Logout(r.Context(), auth.Session.ID); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	s.cookie.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	auth, _ := AuthFromContext(r.Context())
	WriteJSON(w, http.StatusOK, auth.User)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	profile, err := s.svc.Accounts.Profile(r.Context(), userID)
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	user, err := s.svc.Accounts.UpdateProfile(r.Context(), userID, req.Name)
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	err := s.svc.Accounts.UpdatePassword(r.Context(), userID, account.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
		Confirm: req.ConfirmPassword,
	})
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	summary, err := s.svc.Dashboard.Summary(r.Context(), userID)
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	projects, err := s.svc.Projects.List(r.Context(), userID)
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// submitProjectRequest accepts numbers or numeric strings for every
// project parameter.
type submitProjectRequest struct {
	CompanyName       string    `json:"company_name"`
	ProjectName       string    `json:"project_name"`
	ProjectType       string    `json:"project_type"`
	Location          string    `json:"location"`
	Terrain           string    `json:"terrain"`
	Category          string    `json:"category"`
	EstimatedBudget   FlexValue `json:"estimated_budget"`
	EstimatedDuration FlexValue `json:"estimated_duration"`
	ScopeDescription  string    `json:"scope_description"`
	RiskFactors       string    `json:"risk_factors"`
	// HistoricalData is the content of a comma-separated history file.
	HistoricalData string `json:"historical_data"`

	ProjectSize     FlexValue `json:"project_size"`
	LaborCost       FlexValue `json:"labor_cost"`
	MaterialCost    FlexValue `json:"material_cost"`
	EquipmentCost   FlexValue `json:"equipment_cost"`
	OverheadCost    FlexValue `json:"overhead_cost"`
	Year            FlexValue `json:"year"`
	InflationRate   FlexValue `json:"inflation_rate"`
	Delays          FlexValue `json:"delays"`
	ReworkPercent   FlexValue `json:"rework_percent"`
	SafetyIncidents FlexValue `json:"safety_incidents"`
}

func (req submitProjectRequest) toDomain() project.SubmitRequest {
	out := project.SubmitRequest{
		CompanyName:      req.CompanyName,
		ProjectName:      req.ProjectName,
		Terrain:          req.Terrain,
		ScopeDescription: req.ScopeDescription,
		RiskFactors:      req.RiskFactors,
		Params: inference.ProjectParams{
			ProjectType:       req.ProjectType,
			Category:          req.Category,
			Region:            req.Location,
			EstimatedBudget:   string(req.EstimatedBudget),
			EstimatedDuration: string(req.EstimatedDuration),
			ProjectSize:       string(req.ProjectSize),
			LaborCost:         string(req.LaborCost),
			MaterialCost:      string(req.MaterialCost),
			EquipmentCost:     string(req.EquipmentCost),
			OverheadCost:      string(req.OverheadCost),
			Year:              string(req.Year),
			InflationRate:     string(req.InflationRate),
			Delays:            string(req.Delays),
			ReworkPercent:     string(req.ReworkPercent),
			SafetyIncidents:   string(req.SafetyIncidents),
		},
	}
	if strings.TrimSpace(req.HistoricalData) != "" {
		out.HasHistoricalData = true
		out.History = strings.NewReader(req.HistoricalData)
	}
	return out
}

func (s *Server) handleSubmitProject(w http.ResponseWriter, r *http.Request) {
	var req submitProjectRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	result, err := s.svc.Projects.Submit(r.Context(), userID, req.toDomain())
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"project": result.Project,
		"history": result.History,
	})
}

type projectDetail struct {
	Project        *project.Project        `json:"project"`
	WhatIfDefaults prediction.WhatIfParams `json:"what_if_defaults"`
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	proj, err := s.svc.Projects.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, projectDetail{Project: proj, WhatIfDefaults: prediction.Defaults(proj)})
}

type predictionsResponse struct {
	Predictions []prediction.Prediction   `json:"predictions"`
	Factors     []prediction.FactorSlice  `json:"factors"`
	History     []prediction.HistoryPoint `json:"history"`
}

func (s *Server) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	preds, err := s.svc.Predictions.ListForProject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}

	resp := predictionsResponse{
		Predictions: preds,
		Factors:     []prediction.FactorSlice{},
		History:     prediction.HistorySeries(preds),
	}
	if resp.Predictions == nil {
		resp.Predictions = []prediction.Prediction{}
	}
	if len(preds) > 0 {
		factors, err := prediction.FactorSlices(preds[0])
		if err != nil {
			WriteError(w, s.logger, err)
			return
		}
		resp.Factors = factors
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	var params prediction.WhatIfParams
	if err := DecodeJSON(r, &params); err != nil {
		WriteError(w, s.logger, err)
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	result, err := s.svc.Predictions.WhatIf(r.Context(), userID, chi.URLParam(r, "id"), params)
	if err != nil {
		WriteError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// FlexValue decodes a JSON number or string into its textual form.
type FlexValue string

func (v *FlexValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FlexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FlexValue(n.String())
	return nil
}
