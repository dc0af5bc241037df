package comment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for comments.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, commentID uuid.UUID) (*Comment, error)
	ListByVersion(ctx context.Context, versionID uuid.UUID, includeResolved bool) ([]*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, commentID uuid.UUID) error
}
