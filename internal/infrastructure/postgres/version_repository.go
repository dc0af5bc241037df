package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/domain/version"
)

const versionColumns = `id, version_id, document_id, version_number, version_string, parent_version_id, is_latest, replaced_by_version_id,
	content, content_fingerprint, lock_counter, status, change_type, change_reason, change_summary,
	effective_date, obsolete_date, created_by,
	submitted_by, submitted_at, reviewed_by, reviewed_at, approved_by, approved_at,
	published_by, published_at, rejected_by, rejected_at, archived_by, archived_at,
	review_comments, approval_comments, rejection_comments, autosave_count, created_at, updated_at`

// VersionRepository implements version.Repository.
type VersionRepository struct {
	pool *pgxpool.Pool
}

func NewVersionRepository(pool *pgxpool.Pool) *VersionRepository {
	return &VersionRepository{pool: pool}
}

func (r *VersionRepository) Create(ctx context.Context, v *version.DocumentVersion) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_versions
		(version_id, document_id, version_number, version_string, parent_version_id, is_latest, replaced_by_version_id,
		 content, content_fingerprint, lock_counter, status, change_type, change_reason, change_summary,
		 effective_date, obsolete_date, created_by,
		 submitted_by, submitted_at, reviewed_by, reviewed_at, approved_by, approved_at,
		 published_by, published_at, rejected_by, rejected_at, archived_by, archived_at,
		 review_comments, approval_comments, rejection_comments, autosave_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35)
	`, v.VersionID, v.DocumentID, v.VersionNumber, v.VersionString, v.ParentVersionID, v.IsLatest, v.ReplacedByVersionID,
		v.Content, v.ContentFingerprint, v.LockCounter, v.Status, v.ChangeType, v.ChangeReason, v.ChangeSummary,
		v.EffectiveDate, v.ObsoleteDate, v.CreatedBy,
		v.SubmittedBy, v.SubmittedAt, v.ReviewedBy, v.ReviewedAt, v.ApprovedBy, v.ApprovedAt,
		v.PublishedBy, v.PublishedAt, v.RejectedBy, v.RejectedAt, v.ArchivedBy, v.ArchivedAt,
		v.ReviewComments, v.ApprovalComments, v.RejectionComments, v.AutosaveCount, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *VersionRepository) Update(ctx context.Context, v *version.DocumentVersion) error {
	_, err := r.pool.Exec(ctx, updateVersionSQL, updateVersionArgs(v)...)
	return err
}

const updateVersionSQL = `
	UPDATE document_versions
	SET version_number=$1, version_string=$2, parent_version_id=$3, is_latest=$4, replaced_by_version_id=$5,
	    content=$6, content_fingerprint=$7, lock_counter=$8, status=$9, change_type=$10, change_reason=$11, change_summary=$12,
	    effective_date=$13, obsolete_date=$14,
	    submitted_by=$15, submitted_at=$16, reviewed_by=$17, reviewed_at=$18, approved_by=$19, approved_at=$20,
	    published_by=$21, published_at=$22, rejected_by=$23, rejected_at=$24, archived_by=$25, archived_at=$26,
	    review_comments=$27, approval_comments=$28, rejection_comments=$29, autosave_count=$30, updated_at=$31
	WHERE version_id=$32
`

func updateVersionArgs(v *version.DocumentVersion) []interface{} {
	return []interface{}{
		v.VersionNumber, v.VersionString, v.ParentVersionID, v.IsLatest, v.ReplacedByVersionID,
		v.Content, v.ContentFingerprint, v.LockCounter, v.Status, v.ChangeType, v.ChangeReason, v.ChangeSummary,
		v.EffectiveDate, v.ObsoleteDate,
		v.SubmittedBy, v.SubmittedAt, v.ReviewedBy, v.ReviewedAt, v.ApprovedBy, v.ApprovedAt,
		v.PublishedBy, v.PublishedAt, v.RejectedBy, v.RejectedAt, v.ArchivedBy, v.ArchivedAt,
		v.ReviewComments, v.ApprovalComments, v.RejectionComments, v.AutosaveCount, v.UpdatedAt,
		v.VersionID,
	}
}

func (r *VersionRepository) GetByID(ctx context.Context, versionID uuid.UUID) (*version.DocumentVersion, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+versionColumns+` FROM document_versions WHERE version_id=$1`, versionID)
	return scanVersion(row)
}

func (r *VersionRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*version.DocumentVersion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+versionColumns+` FROM document_versions WHERE document_id=$1 ORDER BY version_number DESC
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVersions(rows)
}

func (r *VersionRepository) GetLatestByDocument(ctx context.Context, documentID uuid.UUID) (*version.DocumentVersion, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+versionColumns+` FROM document_versions WHERE document_id=$1 AND is_latest=true
		ORDER BY version_number DESC LIMIT 1
	`, documentID)
	return scanVersion(row)
}

func (r *VersionRepository) ListEffectiveByDocument(ctx context.Context, documentID uuid.UUID) ([]*version.DocumentVersion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+versionColumns+` FROM document_versions WHERE document_id=$1 AND status=$2 ORDER BY version_number DESC
	`, documentID, version.StatusEffective)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVersions(rows)
}

func (r *VersionRepository) MaxVersionNumber(ctx context.Context, documentID uuid.UUID) (int, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version_number), 0) FROM document_versions WHERE document_id=$1
	`, documentID)
	var max int
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// UpdateContentIf is the compare-and-swap write: the row moves only when the
// stored fingerprint still equals expectedFingerprint. No matching row means
// the content changed underneath the caller.
func (r *VersionRepository) UpdateContentIf(ctx context.Context, versionID uuid.UUID, expectedFingerprint, content, newFingerprint string, autosave bool, updatedAt time.Time) (*version.DocumentVersion, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE document_versions
		SET content=$1, content_fingerprint=$2, lock_counter=lock_counter+1,
		    autosave_count=autosave_count + CASE WHEN $6 THEN 1 ELSE 0 END, updated_at=$3
		WHERE version_id=$4 AND content_fingerprint=$5
		RETURNING `+versionColumns+`
	`, content, newFingerprint, updatedAt, versionID, expectedFingerprint, autosave)
	return scanVersion(row)
}

// PublishCascade retires every other effective version of the document and
// persists the publishing one, all inside a single transaction.
func (r *VersionRepository) PublishCascade(ctx context.Context, publishing *version.DocumentVersion, now time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE document_versions
		SET status=$1, obsolete_date=$2, replaced_by_version_id=$3, is_latest=false, updated_at=$2
		WHERE document_id=$4 AND status=$5 AND version_id<>$3
	`, version.StatusObsolete, now, publishing.VersionID, publishing.DocumentID, version.StatusEffective)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE document_versions
		SET is_latest=false, updated_at=$1
		WHERE document_id=$2 AND version_id<>$3 AND is_latest=true
	`, now, publishing.DocumentID, publishing.VersionID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, updateVersionSQL, updateVersionArgs(publishing)...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func collectVersions(rows pgx.Rows) ([]*version.DocumentVersion, error) {
	var versions []*version.DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanVersion(row pgx.Row) (*version.DocumentVersion, error) {
	var v version.DocumentVersion
	if err := row.Scan(
		&v.ID, &v.VersionID, &v.DocumentID, &v.VersionNumber, &v.VersionString, &v.ParentVersionID, &v.IsLatest, &v.ReplacedByVersionID,
		&v.Content, &v.ContentFingerprint, &v.LockCounter, &v.Status, &v.ChangeType, &v.ChangeReason, &v.ChangeSummary,
		&v.EffectiveDate, &v.ObsoleteDate, &v.CreatedBy,
		&v.SubmittedBy, &v.SubmittedAt, &v.ReviewedBy, &v.ReviewedAt, &v.ApprovedBy, &v.ApprovedAt,
		&v.PublishedBy, &v.PublishedAt, &v.RejectedBy, &v.RejectedAt, &v.ArchivedBy, &v.ArchivedAt,
		&v.ReviewComments, &v.ApprovalComments, &v.RejectionComments, &v.AutosaveCount, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
