package mcp

import (
	"context"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cast"

	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/transport"
)

type tools struct {
	svc    transport.Services
	logger *slog.Logger
}

// --- Input types ---

type ProjectIDInput struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
}

type SubmitProjectInput struct {
	CompanyName       string  `json:"company_name" jsonschema:"Company name"`
	ProjectName       string  `json:"project_name" jsonschema:"Project name"`
	ProjectType       string  `json:"project_type" jsonschema:"Construction, Software, Infrastructure, IT or Engineering"`
	Location          string  `json:"location" jsonschema:"Region, e.g. Delhi or Mumbai"`
	Terrain           string  `json:"terrain,omitempty" jsonschema:"flat, hilly, mountainous or urban; ignored for Software"`
	Category          string  `json:"category,omitempty" jsonschema:"Project category"`
	EstimatedBudget   float64 `json:"estimated_budget" jsonschema:"Estimated budget"`
	EstimatedDuration float64 `json:"estimated_duration" jsonschema:"Estimated duration in months"`
	ScopeDescription  string  `json:"scope_description,omitempty" jsonschema:"Scope description"`
	RiskFactors       string  `json:"risk_factors,omitempty" jsonschema:"Known risk factors"`
	HistoricalData    string  `json:"historical_data,omitempty" jsonschema:"Comma-separated historical project data with a header row"`

	ProjectSize     *float64 `json:"project_size,omitempty" jsonschema:"Project size"`
	LaborCost       *float64 `json:"labor_cost,omitempty" jsonschema:"Labor cost"`
	MaterialCost    *float64 `json:"material_cost,omitempty" jsonschema:"Material cost"`
	EquipmentCost   *float64 `json:"equipment_cost,omitempty" jsonschema:"Equipment cost"`
	OverheadCost    *float64 `json:"overhead_cost,omitempty" jsonschema:"Overhead cost"`
	Year            *float64 `json:"year,omitempty" jsonschema:"Project year"`
	InflationRate   *float64 `json:"inflation_rate,omitempty" jsonschema:"Inflation rate"`
	Delays          *float64 `json:"delays,omitempty" jsonschema:"Expected delay days"`
	ReworkPercent   *float64 `json:"rework_percent,omitempty" jsonschema:"Rework percent"`
	SafetyIncidents *float64 `json:"safety_incidents,omitempty" jsonschema:"Safety incident count"`
}

type WhatIfInput struct {
	ProjectID         string   `json:"project_id" jsonschema:"Project ID"`
	MaterialCost      float64  `json:"material_cost" jsonschema:"Adjusted material cost"`
	LaborCost         float64  `json:"labor_cost" jsonschema:"Adjusted labor cost"`
	VendorReliability float64  `json:"vendor_reliability" jsonschema:"Vendor reliability from 0 to 10"`
	HistoricalDelays  *float64 `json:"historical_delays,omitempty" jsonschema:"Historical delay count; defaults from the project's history"`
}

func registerTools(server *sdkmcp.Server, svc transport.Services, logger *slog.Logger) {
	t := &tools{svc: svc, logger: logger}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List your projects, newest first",
	}, t.listProjects)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project with its AI prediction and what-if defaults",
	}, t.getProject)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "submit_project",
		Description: "Submit a project for AI cost analysis and store it",
	}, t.submitProject)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "what_if",
		Description: "Estimate cost, timeline and delay risk for adjusted inputs and store the prediction",
	}, t.whatIf)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_predictions",
		Description: "List stored predictions for a project, newest first",
	}, t.listPredictions)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_dashboard",
		Description: "Get project totals, recent projects and the high-risk prediction count",
	}, t.getDashboard)
}

// --- Handlers ---

func (t *tools) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, any, error) {
	projects, err := t.svc.Projects.List(ctx, getUserID(ctx))
	if err != nil {
		return t.fail("list_projects", err), nil, nil
	}
	return toolJSON(projects)
}

func (t *tools) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, input ProjectIDInput) (*sdkmcp.CallToolResult, any, error) {
	proj, err := t.svc.Projects.Get(ctx, getUserID(ctx), input.ProjectID)
	if err != nil {
		return t.fail("get_project", err), nil, nil
	}

	out := struct {
		*project.Project
		WhatIfDefaults *prediction.WhatIfParams `json:"what_if_defaults,omitempty"`
	}{Project: proj}
	if _, err := prediction.TerrainMultiplier(proj.Terrain); err == nil {
		defaults := prediction.Defaults(proj)
		out.WhatIfDefaults = &defaults
	}
	return toolJSON(out)
}

func (t *tools) submitProject(ctx context.Context, _ *sdkmcp.CallToolRequest, input SubmitProjectInput) (*sdkmcp.CallToolResult, any, error) {
	result, err := t.svc.Projects.Submit(ctx, getUserID(ctx), input.toDomain())
	if err != nil {
		return t.fail("submit_project", err), nil, nil
	}
	return toolJSON(map[string]any{
		"project": result.Project,
		"history": result.History,
	})
}

func (t *tools) whatIf(ctx context.Context, _ *sdkmcp.CallToolRequest, input WhatIfInput) (*sdkmcp.CallToolResult, any, error) {
	result, err := t.svc.Predictions.WhatIf(ctx, getUserID(ctx), input.ProjectID, prediction.WhatIfParams{
		MaterialCost:      input.MaterialCost,
		LaborCost:         input.LaborCost,
		VendorReliability: input.VendorReliability,
		HistoricalDelays:  input.HistoricalDelays,
	})
	if err != nil {
		return t.fail("what_if", err), nil, nil
	}
	return toolJSON(result)
}

func (t *tools) listPredictions(ctx context.Context, _ *sdkmcp.CallToolRequest, input ProjectIDInput) (*sdkmcp.CallToolResult, any, error) {
	preds, err := t.svc.Predictions.ListForProject(ctx, getUserID(ctx), input.ProjectID)
	if err != nil {
		return t.fail("list_predictions", err), nil, nil
	}
	return toolJSON(preds)
}

func (t *tools) getDashboard(ctx context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, any, error) {
	summary, err := t.svc.Dashboard.Summary(ctx, getUserID(ctx))
	if err != nil {
		return t.fail("get_dashboard", err), nil, nil
	}
	return toolJSON(summary)
}

func (t *tools) fail(tool string, err error) *sdkmcp.CallToolResult {
	if transport.Classify(err) == transport.KindInternal {
		t.logger.Error("mcp tool failed", "tool", tool, "error", err)
	}
	return toolFailure(err)
}

func (in SubmitProjectInput) toDomain() project.SubmitRequest {
	out := project.SubmitRequest{
		CompanyName:      in.CompanyName,
		ProjectName:      in.ProjectName,
		Terrain:          in.Terrain,
		ScopeDescription: in.ScopeDescription,
		RiskFactors:      in.RiskFactors,
		Params: inference.ProjectParams{
			ProjectType:       in.ProjectType,
			Category:          in.Category,
			Region:            in.Location,
			EstimatedBudget:   cast.ToString(in.EstimatedBudget),
			EstimatedDuration: cast.ToString(in.EstimatedDuration),
			ProjectSize:       optionalText(in.ProjectSize),
			LaborCost:         optionalText(in.LaborCost),
			MaterialCost:      optionalText(in.MaterialCost),
			EquipmentCost:     optionalText(in.EquipmentCost),
			OverheadCost:      optionalText(in.OverheadCost),
			Year:              optionalText(in.Year),
			InflationRate:     optionalText(in.InflationRate),
			Delays:            optionalText(in.Delays),
			ReworkPercent:     optionalText(in.ReworkPercent),
			SafetyIncidents:   optionalText(in.SafetyIncidents),
		},
	}
	if strings.TrimSpace(in.HistoricalData) != "" {
		out.HasHistoricalData = true
		out.History = strings.NewReader(in.HistoricalData)
	}
	return out
}

func optionalText(v *float64) string {
	if v == nil {
		return ""
	}
	return cast.ToString(*v)
}
