package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/repository"
)

// ProfileRepository implements account.ProfileRepository for SQLite
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile document
func (r *ProfileRepository) Create(ctx context.Context, profile *account.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.db.collections.Profiles)

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Name,
		profile.Email,
		profile.Role,
		profile.CreatedAt,
	)
	if err != nil {
		return writeError("create profile", err)
	}

	return nil
}

// GetByUserID retrieves the profile owned by a user
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*account.Profile, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, email, role, created_at
		FROM %s
		WHERE user_id = ?
	`, r.db.collections.Profiles)

	var profile account.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Name,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpdateName renames a profile
func (r *ProfileRepository) UpdateName(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET name = ? WHERE id = ?`, r.db.collections.Profiles)
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireAffected(result)
}
