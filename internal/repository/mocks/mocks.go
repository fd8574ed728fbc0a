package mocks

import (
	"context"
	"encoding/json"

	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/stretchr/testify/mock"
)

// IdentityStore is a mock for account.IdentityStore.
type IdentityStore struct {
	mock.Mock
}

func (m *IdentityStore) CreateAccount(ctx context.Context, id, email, password, name string) (*account.User, error) {
	args := m.Called(ctx, id, email, password, name)
	if user, ok := args.Get(0).(*account.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityStore) DeleteAccount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *IdentityStore) CreateSession(ctx context.Context, email, password string) (*account.Session, error) {
	args := m.Called(ctx, email, password)
	if sess, ok := args.Get(0).(*account.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityStore) GetSession(ctx context.Context, token string) (*account.Session, error) {
	args := m.Called(ctx, token)
	if sess, ok := args.Get(0).(*account.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityStore) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *IdentityStore) GetUser(ctx context.Context, id string) (*account.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*account.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityStore) UpdateName(ctx context.Context, userID, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *IdentityStore) UpdatePassword(ctx context.Context, userID, newPassword, currentPassword string) error {
	args := m.Called(ctx, userID, newPassword, currentPassword)
	return args.Error(0)
}

// ProfileRepository is a mock for account.ProfileRepository.
type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) Create(ctx context.Context, profile *account.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*account.Profile, error) {
	args := m.Called(ctx, userID)
	if profile, ok := args.Get(0).(*account.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProfileRepository) UpdateName(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// PredictionRepository is a mock for prediction.Repository.
type PredictionRepository struct {
	mock.Mock
}

func (m *PredictionRepository) Create(ctx context.Context, pred *prediction.Prediction) error {
	args := m.Called(ctx, pred)
	return args.Error(0)
}

func (m *PredictionRepository) List(ctx context.Context, opts prediction.ListOptions) ([]prediction.Prediction, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]prediction.Prediction); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Predictor is a mock for project.Predictor.
type Predictor struct {
	mock.Mock
}

func (m *Predictor) Predict(ctx context.Context, payload inference.Payload) (*inference.PredictResult, error) {
	args := m.Called(ctx, payload)
	if result, ok := args.Get(0).(*inference.PredictResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Predictor) Scenarios(ctx context.Context, payload inference.Payload) (json.RawMessage, error) {
	args := m.Called(ctx, payload)
	if raw, ok := args.Get(0).(json.RawMessage); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}
