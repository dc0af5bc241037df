package document

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls document listing.
type Filter struct {
	Status      *Status
	Department  *string
	OwnerUserID *uuid.UUID
}

// Repository defines persistence for documents.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, documentID uuid.UUID) (*Document, error)
	GetByNumber(ctx context.Context, number string) (*Document, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Document, error)
	// CountNumbersWithPrefix returns how many document numbers start with the
	// given prefix, used for the per-day sequence suffix.
	CountNumbersWithPrefix(ctx context.Context, prefix string) (int, error)
}
