package prediction

import (
	"context"

	"github.com/rpggio/costadvisor/internal/domain/project"
)

// Repository provides persistence for predictions.
type Repository interface {
	Create(ctx context.Context, pred *Prediction) error
	List(ctx context.Context, opts ListOptions) ([]Prediction, error)
}

// ProjectReader loads projects with ownership enforced.
type ProjectReader interface {
	Get(ctx context.Context, userID, id string) (*project.Project, error)
}
