package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/docvault/docvault/internal/domain/version"
)

// MockRepository is a mock implementation of version.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, v *version.DocumentVersion) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, v *version.DocumentVersion) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, versionID uuid.UUID) (*version.DocumentVersion, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*version.DocumentVersion), args.Error(1)
}

func (m *MockRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*version.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*version.DocumentVersion), args.Error(1)
}

func (m *MockRepository) GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*version.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*version.DocumentVersion), args.Error(1)
}

func (m *MockRepository) ListEffectiveByDocument(ctx context.Context, documentID uuid.UUID) ([]*version.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*version.DocumentVersion), args.Error(1)
}

func (m *MockRepository) MaxVersionNumber(ctx context.Context, documentID uuid.UUID) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpdateContentIf(ctx context.Context, versionID uuid.UUID, expectedFingerprint, content, newFingerprint string, autosave bool, updatedAt time.Time) (*version.DocumentVersion, error) {
	args := m.Called(ctx, versionID, expectedFingerprint, content, newFingerprint, autosave, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*version.DocumentVersion), args.Error(1)
}

func (m *MockRepository) PublishCascade(ctx context.Context, publishing *version.DocumentVersion, now time.Time) error {
	args := m.Called(ctx, publishing, now)
	return args.Error(0)
}
