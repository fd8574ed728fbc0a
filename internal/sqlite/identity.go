package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is used when no session lifetime is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// IdentityStore implements account.IdentityStore for SQLite. Passwords are
// stored as bcrypt hashes.
type IdentityStore struct {
	db         *DB
	sessionTTL time.Duration
	cost       int
	now        func() time.Time
}

// NewIdentityStore creates a new IdentityStore. A non-positive ttl uses DefaultSessionTTL.
func NewIdentityStore(db *DB, ttl time.Duration) *IdentityStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &IdentityStore{db: db, sessionTTL: ttl, cost: bcrypt.DefaultCost, now: time.Now}
}

// CreateAccount creates a new user with a hashed password
func (s *IdentityStore) CreateAccount(ctx context.Context, id, email, password, name string) (*account.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &account.User{ID: id, Name: name, Email: email, CreatedAt: s.now().UTC()}
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, string(hash), user.CreatedAt); err != nil {
		return nil, writeError("create account", err)
	}

	return user, nil
}

// DeleteAccount removes a user and its sessions
func (s *IdentityStore) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireAffected(result)
}

// CreateSession verifies the credentials and opens a session
func (s *IdentityStore) CreateSession(ctx context.Context, email, password string) (*account.Session, error) {
	var userID, hash string
	err := s.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&userID, &hash)
	if err == sql.ErrNoRows {
		return nil, repository.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := compareHash(hash, password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &account.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	query := `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, sess.ID, sess.UserID, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return nil, writeError("create session", err)
	}

	return sess, nil
}

// GetSession retrieves a session by token
func (s *IdentityStore) GetSession(ctx context.Context, token string) (*account.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = ?
	`

	var sess account.Session
	err := s.db.QueryRowContext(ctx, query, token).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &sess, nil
}

// DeleteSession removes a session
func (s *IdentityStore) DeleteSession(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(result)
}

// GetUser retrieves a user by ID
func (s *IdentityStore) GetUser(ctx context.Context, id string) (*account.User, error) {
	var user account.User
	err := s.db.QueryRowContext(ctx, `SELECT id, name, email, created_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, ignoring case
func (s *IdentityStore) GetUserByEmail(ctx context.Context, email string) (*account.User, error) {
	var user account.User
	err := s.db.QueryRowContext(ctx, `SELECT id, name, email, created_at FROM users WHERE lower(email) = lower(?)`, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// UpdateName renames a user
func (s *IdentityStore) UpdateName(ctx context.Context, userID, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, userID)
	if err != nil {
		return fmt.Errorf("failed to update user name: %w", err)
	}
	return requireAffected(result)
}

// UpdatePassword replaces the password after verifying the current one
func (s *IdentityStore) UpdatePassword(ctx context.Context, userID, newPassword, currentPassword string) error {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&hash)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := compareHash(hash, currentPassword); err != nil {
		return err
	}

	next, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, string(next), userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func compareHash(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return repository.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
