package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/docvault/docvault/internal/domain/audit"
)

// MockRepository is a mock implementation of audit.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, entry *audit.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, auditID uuid.UUID) (*audit.AuditLog, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.AuditLog), args.Error(1)
}

func (m *MockRepository) Query(ctx context.Context, filter audit.QueryFilter, cursor *audit.Cursor, limit int) ([]*audit.AuditLog, *audit.Cursor, error) {
	args := m.Called(ctx, filter, cursor, limit)
	var logs []*audit.AuditLog
	if args.Get(0) != nil {
		logs = args.Get(0).([]*audit.AuditLog)
	}
	var next *audit.Cursor
	if args.Get(1) != nil {
		next = args.Get(1).(*audit.Cursor)
	}
	return logs, next, args.Error(2)
}

func (m *MockRepository) GetByEntityID(ctx context.Context, entityType audit.EntityType, entityID string) ([]*audit.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.AuditLog), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter audit.QueryFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) VerifySignature(ctx context.Context, auditID uuid.UUID, key []byte) (bool, error) {
	args := m.Called(ctx, auditID, key)
	return args.Bool(0), args.Error(1)
}
