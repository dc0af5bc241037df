package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/domain/comment"
)

const commentColumns = `id, comment_id, version_id, user_id, comment_text, selected_text, selection_start, selection_end, text_context, resolved, resolved_at, resolved_by, created_at, updated_at`

// CommentRepository implements comment.Repository.
type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO document_comments
		(comment_id, version_id, user_id, comment_text, selected_text, selection_start, selection_end, text_context, resolved, resolved_at, resolved_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id
	`, c.CommentID, c.VersionID, c.UserID, c.Text, c.SelectedText, c.SelectionStart, c.SelectionEnd, c.TextContext,
		c.Resolved, c.ResolvedAt, c.ResolvedBy, c.CreatedAt, c.UpdatedAt)
	return row.Scan(&c.ID)
}

func (r *CommentRepository) GetByID(ctx context.Context, commentID uuid.UUID) (*comment.Comment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM document_comments WHERE comment_id=$1
	`, commentID)
	return scanComment(row)
}

func (r *CommentRepository) ListByVersion(ctx context.Context, versionID uuid.UUID, includeResolved bool) ([]*comment.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM document_comments WHERE version_id=$1`
	if !includeResolved {
		query += ` AND resolved=FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []*comment.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, c *comment.Comment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE document_comments
		SET comment_text=$1, resolved=$2, resolved_at=$3, resolved_by=$4, updated_at=$5
		WHERE comment_id=$6
	`, c.Text, c.Resolved, c.ResolvedAt, c.ResolvedBy, c.UpdatedAt, c.CommentID)
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, commentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM document_comments WHERE comment_id=$1`, commentID)
	return err
}

func scanComment(row pgx.Row) (*comment.Comment, error) {
	var c comment.Comment
	if err := row.Scan(
		&c.ID, &c.CommentID, &c.VersionID, &c.UserID, &c.Text,
		&c.SelectedText, &c.SelectionStart, &c.SelectionEnd, &c.TextContext,
		&c.Resolved, &c.ResolvedAt, &c.ResolvedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
