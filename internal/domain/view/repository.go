package view

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for view facts. Upsert must key on
// (version_id, user_id) so repeat views refresh the timestamp in place.
type Repository interface {
	Upsert(ctx context.Context, v *DocumentView) error
	Get(ctx context.Context, versionID, userID uuid.UUID) (*DocumentView, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*DocumentView, error)
}
