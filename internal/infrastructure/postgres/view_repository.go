package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/domain/view"
)

// ViewRepository implements view.Repository.
type ViewRepository struct {
	pool *pgxpool.Pool
}

func NewViewRepository(pool *pgxpool.Pool) *ViewRepository {
	return &ViewRepository{pool: pool}
}

func (r *ViewRepository) Upsert(ctx context.Context, v *view.DocumentView) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_views (document_id, version_id, user_id, viewed_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (version_id, user_id) DO UPDATE SET viewed_at=EXCLUDED.viewed_at
	`, v.DocumentID, v.VersionID, v.UserID, v.ViewedAt)
	return err
}

func (r *ViewRepository) Get(ctx context.Context, versionID, userID uuid.UUID) (*view.DocumentView, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, version_id, user_id, viewed_at
		FROM document_views WHERE version_id=$1 AND user_id=$2
	`, versionID, userID)
	return scanView(row)
}

func (r *ViewRepository) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*view.DocumentView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, version_id, user_id, viewed_at
		FROM document_views WHERE version_id=$1 ORDER BY viewed_at DESC
	`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var views []*view.DocumentView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func scanView(row pgx.Row) (*view.DocumentView, error) {
	var v view.DocumentView
	if err := row.Scan(&v.ID, &v.DocumentID, &v.VersionID, &v.UserID, &v.ViewedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
