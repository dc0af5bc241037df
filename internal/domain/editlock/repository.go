package editlock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for edit locks. Create must be guarded by a
// uniqueness constraint on version_id so concurrent acquires race safely.
type Repository interface {
	Create(ctx context.Context, lock *EditLock) error
	GetByVersionID(ctx context.Context, versionID uuid.UUID) (*EditLock, error)
	Update(ctx context.Context, lock *EditLock) error
	DeleteByVersionID(ctx context.Context, versionID uuid.UUID) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*EditLock, error)
}
