package account

import "context"

// IdentityStore is the session service: accounts, credentials and sessions.
type IdentityStore interface {
	CreateAccount(ctx context.Context, id, email, password, name string) (*User, error)
	DeleteAccount(ctx context.Context, id string) error
	CreateSession(ctx context.Context, email, password string) (*Session, error)
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateName(ctx context.Context, userID, name string) error
	UpdatePassword(ctx context.Context, userID, newPassword, currentPassword string) error
}

// ProfileRepository persists profile documents.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	UpdateName(ctx context.Context, id, name string) error
}
