package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/dashboard"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/transport"
)

const testCookie = "costadvisor_session"

type fakeAccounts struct{ mock.Mock }

func (f *fakeAccounts) CurrentSession(ctx context.Context, token string) (*account.AuthResult, error) {
	args := f.Called(ctx, token)
	res, _ := args.Get(0).(*account.AuthResult)
	return res, args.Error(1)
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*account.AuthResult, error) {
	args := f.Called(ctx, email, password)
	res, _ := args.Get(0).(*account.AuthResult)
	return res, args.Error(1)
}

func (f *fakeAccounts) Signup(ctx context.Context, req account.SignupRequest) (*account.AuthResult, error) {
	args := f.Called(ctx, req)
	res, _ := args.Get(0).(*account.AuthResult)
	return res, args.Error(1)
}

func (f *fakeAccounts) Logout(ctx context.Context, token string) error {
	return f.Called(ctx, token).Error(0)
}

func (f *fakeAccounts) Profile(ctx context.Context, userID string) (*account.Profile, error) {
	args := f.Called(ctx, userID)
	res, _ := args.Get(0).(*account.Profile)
	return res, args.Error(1)
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, userID, name string) (*account.User, error) {
	args := f.Called(ctx, userID, name)
	res, _ := args.Get(0).(*account.User)
	return res, args.Error(1)
}

func (f *fakeAccounts) UpdatePassword(ctx context.Context, userID string, req account.PasswordChange) error {
	return f.Called(ctx, userID, req).Error(0)
}

type fakeProjects struct{ mock.Mock }

func (f *fakeProjects) Submit(ctx context.Context, userID string, req project.SubmitRequest) (*project.SubmitResult, error) {
	args := f.Called(ctx, userID, req)
	res, _ := args.Get(0).(*project.SubmitResult)
	return res, args.Error(1)
}

func (f *fakeProjects) Get(ctx context.Context, userID, id string) (*project.Project, error) {
	args := f.Called(ctx, userID, id)
	res, _ := args.Get(0).(*project.Project)
	return res, args.Error(1)
}

func (f *fakeProjects) List(ctx context.Context, userID string) ([]project.Project, error) {
	args := f.Called(ctx, userID)
	res, _ := args.Get(0).([]project.Project)
	return res, args.Error(1)
}

type fakePredictions struct{ mock.Mock }

func (f *fakePredictions) WhatIf(ctx context.Context, userID, projectID string, params prediction.WhatIfParams) (*prediction.WhatIfResult, error) {
	args := f.Called(ctx, userID, projectID, params)
	res, _ := args.Get(0).(*prediction.WhatIfResult)
	return res, args.Error(1)
}

func (f *fakePredictions) ListForProject(ctx context.Context, userID, projectID string) ([]prediction.Prediction, error) {
	args := f.Called(ctx, userID, projectID)
	res, _ := args.Get(0).([]prediction.Prediction)
	return res, args.Error(1)
}

func (f *fakePredictions) ListByProject(ctx context.Context, proj *project.Project) ([]prediction.Prediction, error) {
	args := f.Called(ctx, proj.ID)
	res, _ := args.Get(0).([]prediction.Prediction)
	return res, args.Error(1)
}

type fakeDashboard struct{ mock.Mock }

func (f *fakeDashboard) Summary(ctx context.Context, userID string) (*dashboard.Summary, error) {
	args := f.Called(ctx, userID)
	res, _ := args.Get(0).(*dashboard.Summary)
	return res, args.Error(1)
}

type fixture struct {
	accounts    *fakeAccounts
	projects    *fakeProjects
	predictions *fakePredictions
	dashboard   *fakeDashboard
	handler     http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts:    &fakeAccounts{},
		projects:    &fakeProjects{},
		predictions: &fakePredictions{},
		dashboard:   &fakeDashboard{},
	}
	h, err := NewHandler(transport.Services{
		Accounts:    f.accounts,
		Projects:    f.projects,
		Predictions: f.predictions,
		Dashboard:   f.dashboard,
	}, transport.CookieSettings{Name: testCookie}, nil)
	require.NoError(t, err)
	f.handler = h
	t.Cleanup(func() {
		f.accounts.AssertExpectations(t)
		f.projects.AssertExpectations(t)
		f.predictions.AssertExpectations(t)
		f.dashboard.AssertExpectations(t)
	})
	return f
}

func (f *fixture) signIn(token string) *account.AuthResult {
	auth := &account.AuthResult{
		Session: &account.Session{ID: token, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
		User:    &account.User{ID: "user-1", Name: "Asha", Email: "asha@example.com"},
	}
	f.accounts.On("CurrentSession", mock.Anything, token).Return(auth, nil)
	return auth
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	return req
}

func flashFrom(t *testing.T, rec *httptest.ResponseRecorder) *Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != flashCookie || c.Value == "" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(c.Value)
		require.NoError(t, err)
		var fl Flash
		require.NoError(t, json.Unmarshal(data, &fl))
		return &fl
	}
	return nil
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestProtectedRoutes_RedirectWhenLoggedOut(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/dashboard", "/projects", "/projects/new", "/projects/p1", "/profile"} {
		rec := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestGuestRoutes_RedirectWhenLoggedIn(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")

	for _, path := range []string{"/login", "/signup"} {
		rec := f.do(withSession(httptest.NewRequest(http.MethodGet, path, nil), "tok"))
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"), path)
	}
}

func TestStaleSessionCookie_Cleared(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("CurrentSession", mock.Anything, "stale").Return(nil, account.ErrNoSession)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/", nil), "stale"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Create an account")

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	auth := &account.AuthResult{
		Session: &account.Session{ID: "new-token", ExpiresAt: time.Now().Add(time.Hour)},
		User:    &account.User{ID: "user-1"},
	}
	f.accounts.On("Login", mock.Anything, "asha@example.com", "secret123").Return(auth, nil)

	rec := f.do(postForm("/login", url.Values{"email": {"asha@example.com"}, "password": {"secret123"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Equal(t, &Flash{Kind: FlashSuccess, Message: msgLoggedIn}, flashFrom(t, rec))

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			token = c.Value
		}
	}
	require.Equal(t, "new-token", token)
}

func TestLogin_Failure(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("Login", mock.Anything, "asha@example.com", "wrong").Return(nil, account.ErrAuthFailure)

	rec := f.do(postForm("/login", url.Values{"email": {"asha@example.com"}, "password": {"wrong"}}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), msgLoginFailed)
	require.Contains(t, rec.Body.String(), `value="asha@example.com"`)
}

func TestSignup_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("Signup", mock.Anything, mock.Anything).Return(nil, account.ErrDuplicateAccount)

	rec := f.do(postForm("/signup", url.Values{"name": {"Asha"}, "email": {"asha@example.com"}, "password": {"secret123"}}))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "An account with this email already exists")
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.accounts.On("Logout", mock.Anything, "tok").Return(nil)

	rec := f.do(withSession(httptest.NewRequest(http.MethodPost, "/logout", nil), "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestDashboard_Renders(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.dashboard.On("Summary", mock.Anything, "user-1").Return(&dashboard.Summary{
		TotalProjects:  1,
		HighRiskCount:  2,
		RecentProjects: []project.Project{{ID: "p1", ProjectName: "Tower", CompanyName: "Acme", RiskScore: 0.15}},
	}, nil)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Tower")
	require.Contains(t, body, "15.0%")
	require.Contains(t, body, "Asha")
}

func TestProjectDetail_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.projects.On("Get", mock.Anything, "user-1", "p2").Return(nil, project.ErrPermissionDenied)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/projects/p2", nil), "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/projects", rec.Header().Get("Location"))
	require.Equal(t, &Flash{Kind: FlashError, Message: msgPermissionDenied}, flashFrom(t, rec))
	f.predictions.AssertNotCalled(t, "ListForProject", mock.Anything, mock.Anything, mock.Anything)
	f.predictions.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything)
}

func TestProjectDetail_Renders(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	proj := &project.Project{
		ID:              "p1",
		UserID:          "user-1",
		ProjectName:     "Bridge",
		ProjectType:     project.TypeInfrastructure,
		Terrain:         project.TerrainHilly,
		EstimatedBudget: 500000,
		AIPrediction:    project.AIPrediction{PredictedCost: 575000},
		BackendInput:    inference.Payload{MaterialCost: 200000, LaborCost: 150000},
	}
	f.projects.On("Get", mock.Anything, "user-1", "p1").Return(proj, nil)
	f.predictions.On("ListByProject", mock.Anything, "p1").Return([]prediction.Prediction{{
		ID:                "pr1",
		PredictedCost:     715000,
		PredictedTimeline: 72,
		RiskProbability:   0.3,
		FactorBreakdown:   `{"vendorReliability":0.2}`,
	}}, nil)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/projects/p1", nil), "tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "575,000")
	require.Contains(t, body, "715,000")
	require.Contains(t, body, "Vendor Reliability")
	require.Contains(t, body, `action="/projects/p1/whatif"`)
}

func TestProjectDetail_PredictionListFailureStillRenders(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	proj := &project.Project{
		ID:          "p1",
		UserID:      "user-1",
		ProjectName: "Bridge",
		Terrain:     project.TerrainHilly,
	}
	f.projects.On("Get", mock.Anything, "user-1", "p1").Return(proj, nil).Once()
	f.predictions.On("ListByProject", mock.Anything, "p1").Return(nil, errors.New("db locked"))

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/projects/p1", nil), "tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Bridge")
	f.projects.AssertNumberOfCalls(t, "Get", 1)
	f.predictions.AssertNotCalled(t, "ListForProject", mock.Anything, mock.Anything, mock.Anything)
}

func TestWhatIf_Success(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.predictions.On("WhatIf", mock.Anything, "user-1", "p1", prediction.WhatIfParams{
		MaterialCost:      200000,
		LaborCost:         150000,
		VendorReliability: 7,
	}).Return(&prediction.WhatIfResult{}, nil)

	form := url.Values{"material_cost": {"200000"}, "labor_cost": {"150000"}, "vendor_reliability": {"7"}}
	rec := f.do(withSession(postForm("/projects/p1/whatif", form), "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/projects/p1", rec.Header().Get("Location"))
	require.Equal(t, &Flash{Kind: FlashSuccess, Message: msgPredictionSaved}, flashFrom(t, rec))
}

func TestWhatIf_BadNumber(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")

	form := url.Values{"material_cost": {"lots"}, "labor_cost": {"1"}, "vendor_reliability": {"7"}}
	rec := f.do(withSession(postForm("/projects/p1/whatif", form), "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	fl := flashFrom(t, rec)
	require.NotNil(t, fl)
	require.Equal(t, FlashError, fl.Kind)
	f.predictions.AssertNotCalled(t, "WhatIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func multipartRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("historical_file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/projects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProjectForm_Prefilled(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/projects/new", nil), "tok"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `name="year" value="`+strconv.Itoa(time.Now().Year())+`"`)
	require.Contains(t, body, `name="inflation_rate" value="5.5"`)

	values := blankProjectForm(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "2024", values.Get("year"))
	require.Equal(t, "5.5", values.Get("inflation_rate"))
}

func TestSubmitProject_RejectsNonCSV(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")

	req := multipartRequest(t, map[string]string{
		"company_name":        "Acme",
		"has_historical_data": "on",
	}, "history.xlsx", "binary")
	rec := f.do(withSession(req, "tok"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), msgNotCSV)
	require.Contains(t, rec.Body.String(), `value="Acme"`)
	f.projects.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitProject_Success(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.projects.On("Submit", mock.Anything, "user-1", mock.MatchedBy(func(req project.SubmitRequest) bool {
		return req.CompanyName == "Acme" && req.HasHistoricalData && req.History != nil &&
			req.Params.Region == "Delhi" && req.Params.EstimatedBudget == "500000"
	})).Return(&project.SubmitResult{Project: &project.Project{ID: "p9"}}, nil)

	req := multipartRequest(t, map[string]string{
		"company_name":        "Acme",
		"project_name":        "Tower",
		"project_type":        "Construction",
		"location":            "Delhi",
		"terrain":             "flat",
		"estimated_budget":    "500000",
		"estimated_duration":  "12",
		"has_historical_data": "on",
	}, "history.csv", "duration,cost\n10,100\n")
	rec := f.do(withSession(req, "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/projects/p9", rec.Header().Get("Location"))
	require.Equal(t, &Flash{Kind: FlashSuccess, Message: msgSubmitted}, flashFrom(t, rec))
}

func TestSubmitProject_BackendDown(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.projects.On("Submit", mock.Anything, "user-1", mock.Anything).
		Return(nil, errors.Join(inference.ErrBackendUnavailable, errors.New("dial refused")))

	rec := f.do(withSession(multipartRequest(t, map[string]string{"company_name": "Acme"}, "", ""), "tok"))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "AI service temporarily unavailable")
}

func TestUpdatePassword_Mismatch(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.accounts.On("UpdatePassword", mock.Anything, "user-1", mock.Anything).Return(account.ErrPasswordMismatch)

	form := url.Values{"current_password": {"a"}, "new_password": {"bbbbbbbb"}, "confirm_password": {"cccccccc"}}
	rec := f.do(withSession(postForm("/profile/password", form), "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, &Flash{Kind: FlashError, Message: msgPasswordMismatch}, flashFrom(t, rec))
}

func TestUpdatePassword_LengthRejected(t *testing.T) {
	f := newFixture(t)
	f.signIn("tok")
	f.accounts.On("UpdatePassword", mock.Anything, "user-1", mock.Anything).Return(account.ErrInvalidInput)

	long := strings.Repeat("p", 80)
	form := url.Values{"current_password": {"secret123"}, "new_password": {long}, "confirm_password": {long}}
	rec := f.do(withSession(postForm("/profile/password", form), "tok"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, &Flash{Kind: FlashError, Message: msgPasswordLength}, flashFrom(t, rec))
}

func TestFlash_ShownOnceThenCleared(t *testing.T) {
	f := newFixture(t)

	setter := httptest.NewRecorder()
	setFlash(setter, FlashSuccess, "Profile updated successfully!")
	cookie := setter.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	require.Contains(t, rec.Body.String(), "Profile updated successfully!")

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared)
}

func TestRecoverer_RendersFallback(t *testing.T) {
	h := recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestMoneyAndNumber(t *testing.T) {
	v := 1234567.4
	n := 3
	require.Equal(t, "1,234,567", money(v))
	require.Equal(t, "1,234,567", money(&v))
	require.Equal(t, "-", money((*float64)(nil)))
	require.Equal(t, "3", number(&n))
	require.Equal(t, "0.33", number(1.0/3))
	require.Equal(t, "-", number((*int)(nil)))
}
