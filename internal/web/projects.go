package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/costadvisor/internal/domain/dashboard"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/history"
	"github.com/rpggio/costadvisor/internal/inference"
)

const maxUploadBytes = 10 << 20

// defaultInflationRate prefills the submission form.
const defaultInflationRate = "5.5"

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	summary, err := h.svc.Dashboard.Summary(r.Context(), st.User().ID)
	if err != nil {
		h.logger.Error("dashboard failed", "error", err)
		h.renderView(w, r, http.StatusInternalServerError, "dashboard", view{
			Title: "Dashboard",
			Error: msgDashboardFailed,
			Data:  &dashboard.Summary{},
		})
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", "Dashboard", summary)
}

func (h *Handler) projectList(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	projects, err := h.svc.Projects.List(r.Context(), st.User().ID)
	if err != nil {
		h.logger.Error("project list failed", "error", err)
		h.renderView(w, r, http.StatusInternalServerError, "projects", view{Title: "Projects", Error: msgProjectListFailed})
		return
	}
	h.render(w, r, http.StatusOK, "projects", "Projects", projects)
}

type projectFormData struct {
	Values       url.Values
	ProjectTypes []project.ProjectType
	Regions      []string
	Categories   []string
	Terrains     []project.Terrain
}

func newProjectFormData(values url.Values) projectFormData {
	if values == nil {
		values = url.Values{}
	}
	return projectFormData{
		Values:       values,
		ProjectTypes: project.ProjectTypes,
		Regions:      project.Regions,
		Categories:   project.Categories,
		Terrains:     project.Terrains,
	}
}

func (h *Handler) projectForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "project_new", "New project", newProjectFormData(blankProjectForm(time.Now())))
}

// blankProjectForm holds the values a fresh submission form starts with.
func blankProjectForm(now time.Time) url.Values {
	return url.Values{
		"year":           {strconv.Itoa(now.Year())},
		"inflation_rate": {defaultInflationRate},
	}
}

func (h *Handler) renderProjectForm(w http.ResponseWriter, r *http.Request, status int, values url.Values, msg string) {
	h.renderView(w, r, status, "project_new", view{Title: "New project", Error: msg, Data: newProjectFormData(values)})
}

// submitProject handles the multipart submission form, including the
// optional historical data upload.
func (h *Handler) submitProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderProjectForm(w, r, http.StatusBadRequest, nil, msgSubmitFailed)
		return
	}
	values := r.PostForm

	req := submitRequestFromForm(values)
	file, header, err := r.FormFile("historical_file")
	switch {
	case err == nil:
		defer file.Close()
		if !history.IsCSV(header.Filename) {
			h.renderProjectForm(w, r, http.StatusBadRequest, values, msgNotCSV)
			return
		}
		if req.HasHistoricalData {
			req.History = file
		}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		h.renderProjectForm(w, r, http.StatusBadRequest, values, msgSubmitFailed)
		return
	}

	st := StateFromContext(r.Context())
	result, err := h.svc.Projects.Submit(r.Context(), st.User().ID, req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, inference.ErrBackendUnavailable):
			status = http.StatusServiceUnavailable
		case !errors.Is(err, project.ErrInvalidInput):
			h.logger.Error("project submission failed", "error", err)
			status = http.StatusInternalServerError
		}
		h.renderProjectForm(w, r, status, values, failureMessage(err, msgSubmitFailed))
		return
	}

	redirectWithFlash(w, r, "/projects/"+url.PathEscape(result.Project.ID), FlashSuccess, msgSubmitted)
}

func submitRequestFromForm(v url.Values) project.SubmitRequest {
	return project.SubmitRequest{
		CompanyName:       v.Get("company_name"),
		ProjectName:       v.Get("project_name"),
		Terrain:           v.Get("terrain"),
		ScopeDescription:  v.Get("scope_description"),
		RiskFactors:       v.Get("risk_factors"),
		HasHistoricalData: v.Get("has_historical_data") != "",
		Params: inference.ProjectParams{
			ProjectType:       v.Get("project_type"),
			Category:          v.Get("category"),
			Region:            v.Get("location"),
			EstimatedBudget:   v.Get("estimated_budget"),
			EstimatedDuration: v.Get("estimated_duration"),
			ProjectSize:       v.Get("project_size"),
			LaborCost:         v.Get("labor_cost"),
			MaterialCost:      v.Get("material_cost"),
			EquipmentCost:     v.Get("equipment_cost"),
			OverheadCost:      v.Get("overhead_cost"),
			Year:              v.Get("year"),
			InflationRate:     v.Get("inflation_rate"),
			Delays:            v.Get("delays"),
			ReworkPercent:     v.Get("rework_percent"),
			SafetyIncidents:   v.Get("safety_incidents"),
		},
	}
}

type projectDetailData struct {
	Project     *project.Project
	Predictions []prediction.Prediction
	Factors     []prediction.FactorSlice
	History     []prediction.HistoryPoint
	WhatIf      prediction.WhatIfParams
	// WhatIfAvailable is false for projects without a terrain multiplier.
	WhatIfAvailable bool
}

// projectDetail shows a project. An ownership mismatch redirects to the
// project list before anything else is loaded.
func (h *Handler) projectDetail(w http.ResponseWriter, r *http.Request) {
	st := StateFromContext(r.Context())
	id := chi.URLParam(r, "id")

	proj, err := h.svc.Projects.Get(r.Context(), st.User().ID, id)
	if err != nil {
		if !errors.Is(err, project.ErrPermissionDenied) && !errors.Is(err, project.ErrProjectNotFound) {
			h.logger.Error("project load failed", "project_id", id, "error", err)
		}
		redirectWithFlash(w, r, "/projects", FlashError, failureMessage(err, msgLoadProject))
		return
	}

	// The project still renders when its predictions cannot be loaded.
	preds, err := h.svc.Predictions.ListByProject(r.Context(), proj)
	if err != nil {
		h.logger.Error("prediction list failed", "project_id", id, "error", err)
		preds = nil
	}

	data := projectDetailData{
		Project:     proj,
		Predictions: preds,
		History:     prediction.HistorySeries(preds),
		WhatIf:      prediction.Defaults(proj),
	}
	_, terrainErr := prediction.TerrainMultiplier(proj.Terrain)
	data.WhatIfAvailable = terrainErr == nil
	if len(preds) > 0 {
		if data.Factors, err = prediction.FactorSlices(preds[0]); err != nil {
			h.logger.Warn("bad factor breakdown", "prediction_id", preds[0].ID, "error", err)
		}
	}

	h.render(w, r, http.StatusOK, "project_detail", proj.ProjectName, data)
}

func (h *Handler) whatIf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detailURL := "/projects/" + url.PathEscape(id)

	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, detailURL, FlashError, msgPredictionFailed)
		return
	}
	params, err := whatIfParamsFromForm(r.PostForm)
	if err != nil {
		redirectWithFlash(w, r, detailURL, FlashError, err.Error())
		return
	}

	st := StateFromContext(r.Context())
	if _, err := h.svc.Predictions.WhatIf(r.Context(), st.User().ID, id, params); err != nil {
		if errors.Is(err, project.ErrPermissionDenied) || errors.Is(err, project.ErrProjectNotFound) {
			redirectWithFlash(w, r, "/projects", FlashError, failureMessage(err, msgLoadProject))
			return
		}
		if !errors.Is(err, prediction.ErrInvalidInput) && !errors.Is(err, prediction.ErrUnknownTerrain) {
			h.logger.Error("what-if failed", "project_id", id, "error", err)
		}
		redirectWithFlash(w, r, detailURL, FlashError, failureMessage(err, msgPredictionFailed))
		return
	}

	redirectWithFlash(w, r, detailURL, FlashSuccess, msgPredictionSaved)
}

func whatIfParamsFromForm(v url.Values) (prediction.WhatIfParams, error) {
	var params prediction.WhatIfParams
	fields := []struct {
		name string
		dst  *float64
	}{
		{"material_cost", &params.MaterialCost},
		{"labor_cost", &params.LaborCost},
		{"vendor_reliability", &params.VendorReliability},
	}
	for _, f := range fields {
		n, ok := inference.ParseNumber(v.Get(f.name))
		if !ok {
			return params, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = n
	}
	if raw := v.Get("historical_delays"); raw != "" {
		n, ok := inference.ParseNumber(raw)
		if !ok {
			return params, fmt.Errorf("historical_delays must be a number")
		}
		params.HistoricalDelays = &n
	}
	return params, nil
}
