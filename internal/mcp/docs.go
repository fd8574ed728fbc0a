package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `costadvisor estimates construction and software project costs.

Workflow:
1) list_projects or get_dashboard to orient.
2) submit_project runs AI analysis (prediction plus scenario analysis) and stores the project.
   Numeric fields accept numbers; cost breakdown fields are optional and a missing or zero value
   is filled from the estimated budget.
3) what_if re-estimates cost, timeline and delay risk from material cost, labor cost, vendor
   reliability (0-10) and optional historical delays. Software projects have no terrain and
   cannot run what-if.
4) list_predictions shows stored what-if predictions, newest first.

Errors come back as {"code","message"} with codes AUTH_FAILURE, PERMISSION_DENIED, NOT_FOUND,
BACKEND_UNAVAILABLE, VALIDATION_FAILURE or INTERNAL.

Docs:
- costadvisor://docs/estimator (the what-if formula)
- costadvisor://docs/historical-data (upload format)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "costadvisor://docs/estimator",
		Name:        "docs_estimator",
		Title:       "What-if estimator",
		Description: "How what_if turns adjusted costs into cost, timeline and delay risk.",
		Content: `# What-if estimator

Inputs: material cost, labor cost, vendor reliability (0-10), historical delays (count).
The project's terrain picks a multiplier: flat 1.0, hilly 1.2, mountainous 1.5, urban 1.3.

- baseline = material + labor
- reliability factor = (10 - reliability) * 0.05
- delay risk = min(historical delays * 0.2 + reliability factor * 0.5, 0.95)
- cost = baseline * (1 + reliability factor) * terrain multiplier
- timeline days = round(baseline * 0.0001 * terrain multiplier * (1 + reliability factor))

The stored factor breakdown holds terrain, vendorReliability, historicalDelays and
projectComplexity.
When historical delays are omitted they default to the project's delay frequency times its
historical project count, rounded.
`,
	},
	{
		URI:         "costadvisor://docs/historical-data",
		Name:        "docs_historical_data",
		Title:       "Historical data format",
		Description: "Columns read from the historical project CSV passed to submit_project.",
		Content: `# Historical data

Comma-separated text with a header row. Recognised columns:

- duration: project duration, averaged
- cost: project cost, averaged
- delayed: "true" or "1" marks a delayed project
- actualCost, estimatedCost: a row is an overrun when actual > estimated * 1.1

Missing or non-numeric cells are skipped when averaging.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
