package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/repository"
)

const projectColumns = `
	id, user_id, company_name, project_name, project_type, location, terrain,
	category, estimated_budget, estimated_duration, scope_description, risk_factors,
	has_historical_data, risk_score, ai_prediction, scenario_analysis,
	historical_project_count, historical_avg_duration, historical_avg_cost,
	historical_delay_frequency, backend_input, created_at`

// ProjectRepository implements project.Repository for SQLite. Nested
// documents are stored as JSON text.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	aiPrediction, err := json.Marshal(proj.AIPrediction)
	if err != nil {
		return fmt.Errorf("failed to encode ai prediction: %w", err)
	}
	backendInput, err := json.Marshal(proj.BackendInput)
	if err != nil {
		return fmt.Errorf("failed to encode backend input: %w", err)
	}
	var scenarios sql.NullString
	if len(proj.ScenarioAnalysis) > 0 {
		scenarios = sql.NullString{String: string(proj.ScenarioAnalysis), Valid: true}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.db.collections.Projects, projectColumns)

	_, err = r.db.ExecContext(ctx, query,
		proj.ID,
		proj.UserID,
		proj.CompanyName,
		proj.ProjectName,
		proj.ProjectType,
		proj.Location,
		proj.Terrain,
		proj.Category,
		proj.EstimatedBudget,
		proj.EstimatedDuration,
		proj.ScopeDescription,
		proj.RiskFactors,
		proj.HasHistoricalData,
		proj.RiskScore,
		string(aiPrediction),
		scenarios,
		nullInt(proj.HistoricalProjectCount),
		nullFloat(proj.HistoricalAvgDuration),
		nullFloat(proj.HistoricalAvgCost),
		nullFloat(proj.HistoricalDelayFrequency),
		string(backendInput),
		proj.CreatedAt,
	)
	if err != nil {
		return writeError("create project", err)
	}

	return nil
}

// Get retrieves a project by ID regardless of owner
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, projectColumns, r.db.collections.Projects)

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return proj, nil
}

// List returns projects matching the options, newest first
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE 1=1`, projectColumns, r.db.collections.Projects)
	var args []any
	if opts.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, opts.UserID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var (
		proj         project.Project
		aiPrediction string
		scenarios    sql.NullString
		count        sql.NullInt64
		avgDuration  sql.NullFloat64
		avgCost      sql.NullFloat64
		delayFreq    sql.NullFloat64
		backendInput string
	)
	err := row.Scan(
		&proj.ID,
		&proj.UserID,
		&proj.CompanyName,
		&proj.ProjectName,
		&proj.ProjectType,
		&proj.Location,
		&proj.Terrain,
		&proj.Category,
		&proj.EstimatedBudget,
		&proj.EstimatedDuration,
		&proj.ScopeDescription,
		&proj.RiskFactors,
		&proj.HasHistoricalData,
		&proj.RiskScore,
		&aiPrediction,
		&scenarios,
		&count,
		&avgDuration,
		&avgCost,
		&delayFreq,
		&backendInput,
		&proj.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(aiPrediction), &proj.AIPrediction); err != nil {
		return nil, fmt.Errorf("failed to decode ai prediction: %w", err)
	}
	if err := json.Unmarshal([]byte(backendInput), &proj.BackendInput); err != nil {
		return nil, fmt.Errorf("failed to decode backend input: %w", err)
	}
	if scenarios.Valid {
		proj.ScenarioAnalysis = json.RawMessage(scenarios.String)
	}
	if count.Valid {
		n := int(count.Int64)
		proj.HistoricalProjectCount = &n
	}
	proj.HistoricalAvgDuration = floatPtr(avgDuration)
	proj.HistoricalAvgCost = floatPtr(avgCost)
	proj.HistoricalDelayFrequency = floatPtr(delayFreq)

	return &proj, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
