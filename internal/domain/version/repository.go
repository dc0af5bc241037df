package version

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for document versions. Implementations must
// guarantee that PublishCascade executes atomically and that UpdateContentIf
// is a single conditional write.
type Repository interface {
	Create(ctx context.Context, v *DocumentVersion) error
	Update(ctx context.Context, v *DocumentVersion) error
	GetByID(ctx context.Context, versionID uuid.UUID) (*DocumentVersion, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*DocumentVersion, error)
	GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*DocumentVersion, error)
	ListEffectiveByDocument(ctx context.Context, documentID uuid.UUID) ([]*DocumentVersion, error)
	MaxVersionNumber(ctx context.Context, documentID uuid.UUID) (int, error)

	// UpdateContentIf writes content only when the stored fingerprint still
	// equals expectedFingerprint, bumping lock_counter. Returns the updated
	// version, or nil when the conditional write matched no row.
	UpdateContentIf(ctx context.Context, versionID uuid.UUID, expectedFingerprint, content, newFingerprint string, autosave bool, updatedAt time.Time) (*DocumentVersion, error)

	// PublishCascade retires every other EFFECTIVE version of the document
	// (OBSOLETE, obsolete_date, replaced_by_version_id, is_latest=false) and
	// persists the publishing version, all in one transaction.
	PublishCascade(ctx context.Context, publishing *DocumentVersion, now time.Time) error
}
