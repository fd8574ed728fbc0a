package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/costadvisor/internal/repository"
)

// Service wraps the session store and the profile collection.
type Service struct {
	identity IdentityStore
	profiles ProfileRepository
	logger   *slog.Logger
}

// NewService creates a new account service.
func NewService(identity IdentityStore, profiles ProfileRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{identity: identity, profiles: profiles, logger: logger}
}

// SignupRequest defines account creation inputs.
type SignupRequest struct {
	Name     string
	Email    string
	Password string
}

// PasswordChange defines password update inputs.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// CurrentSession resolves a session token to its session and user.
func (s *Service) CurrentSession(ctx context.Context, token string) (*AuthResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoSession
	}

	sess, err := s.identity.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return nil, ErrNoSession
	}

	user, err := s.identity.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &AuthResult{Session: sess, User: user}, nil
}

// Login creates a session for the credentials and fetches the identity.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrAuthFailure
	}

	sess, err := s.identity.CreateSession(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthFailure
		}
		return nil, fmt.Errorf("creating session: %w", err)
	}

	user, err := s.identity.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &AuthResult{Session: sess, User: user}, nil
}

// Signup creates the account and its profile document, then logs in.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || !validEmail(email) {
		return nil, ErrInvalidInput
	}
	if !validPasswordLength(req.Password) {
		return nil, ErrInvalidInput
	}

	user, err := s.identity.CreateAccount(ctx, uuid.NewString(), email, req.Password, name)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	profile := &Profile{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      name,
		Email:     email,
		Role:      RoleProjectManager,
		CreatedAt: time.Now(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// Drop the account so the email can sign up again.
		if delErr := s.identity.DeleteAccount(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to remove account after profile failure", "user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.logger.Info("account created", "user_id", user.ID)
	return s.Login(ctx, email, req.Password)
}

// Logout deletes the current session.
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrNoSession
	}
	if err := s.identity.DeleteSession(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoSession
		}
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Profile returns the profile document for a user.
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile renames the user in the profile document and the account,
// then re-fetches the identity.
func (s *Service) UpdateProfile(ctx context.Context, userID, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateName(ctx, profile.ID, name); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if err := s.identity.UpdateName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("updating account name: %w", err)
	}

	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// UpdatePassword changes the password. A confirmation mismatch is rejected
// before the session store is called.
func (s *Service) UpdatePassword(ctx context.Context, userID string, req PasswordChange) error {
	if req.New != req.Confirm {
		return ErrPasswordMismatch
	}
	if !validPasswordLength(req.New) {
		return ErrInvalidInput
	}

	if err := s.identity.UpdatePassword(ctx, userID, req.New, req.Current); err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			return ErrAuthFailure
		}
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password updated", "user_id", userID)
	return nil
}

func validPasswordLength(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordLength
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
