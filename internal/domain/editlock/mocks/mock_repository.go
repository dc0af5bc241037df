package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/docvault/docvault/internal/domain/editlock"
)

// MockRepository is a mock implementation of editlock.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, lock *editlock.EditLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

func (m *MockRepository) GetByVersionID(ctx context.Context, versionID uuid.UUID) (*editlock.EditLock, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*editlock.EditLock), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, lock *editlock.EditLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

func (m *MockRepository) DeleteByVersionID(ctx context.Context, versionID uuid.UUID) error {
	args := m.Called(ctx, versionID)
	return args.Error(0)
}

func (m *MockRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*editlock.EditLock, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*editlock.EditLock), args.Error(1)
}
