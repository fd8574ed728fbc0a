package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/costadvisor/internal/domain/prediction"
)

// PredictionRepository implements prediction.Repository for SQLite
type PredictionRepository struct {
	db *DB
}

// NewPredictionRepository creates a new PredictionRepository
func NewPredictionRepository(db *DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create creates a new prediction
func (r *PredictionRepository) Create(ctx context.Context, pred *prediction.Prediction) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, user_id, project_id, predicted_cost, predicted_timeline,
			risk_probability, factor_breakdown, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.db.collections.Predictions)

	_, err := r.db.ExecContext(ctx, query,
		pred.ID,
		pred.UserID,
		pred.ProjectID,
		pred.PredictedCost,
		pred.PredictedTimeline,
		pred.RiskProbability,
		pred.FactorBreakdown,
		pred.CreatedAt,
	)
	if err != nil {
		return writeError("create prediction", err)
	}

	return nil
}

// List returns predictions matching the options, newest first
func (r *PredictionRepository) List(ctx context.Context, opts prediction.ListOptions) ([]prediction.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, project_id, predicted_cost, predicted_timeline,
			risk_probability, factor_breakdown, created_at
		FROM %s
		WHERE 1=1`, r.db.collections.Predictions)
	var args []any
	if opts.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, opts.UserID)
	}
	if opts.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, opts.ProjectID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var preds []prediction.Prediction
	for rows.Next() {
		var pred prediction.Prediction
		err := rows.Scan(
			&pred.ID,
			&pred.UserID,
			&pred.ProjectID,
			&pred.PredictedCost,
			&pred.PredictedTimeline,
			&pred.RiskProbability,
			&pred.FactorBreakdown,
			&pred.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, pred)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prediction rows: %w", err)
	}

	return preds, nil
}
