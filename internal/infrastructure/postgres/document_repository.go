package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docvault/docvault/internal/domain/document"
)

// DocumentRepository implements document.Repository.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents
		(document_id, document_number, title, department, status, owner_user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, doc.DocumentID, doc.DocumentNumber, doc.Title, doc.Department, doc.Status, doc.OwnerUserID, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (r *DocumentRepository) Update(ctx context.Context, doc *document.Document) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET document_number=$1, title=$2, department=$3, status=$4, owner_user_id=$5, updated_at=$6
		WHERE document_id=$7
	`, doc.DocumentNumber, doc.Title, doc.Department, doc.Status, doc.OwnerUserID, doc.UpdatedAt, doc.DocumentID)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, documentID uuid.UUID) (*document.Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, document_number, title, department, status, owner_user_id, created_at, updated_at
		FROM documents WHERE document_id=$1
	`, documentID)
	return scanDocument(row)
}

func (r *DocumentRepository) GetByNumber(ctx context.Context, number string) (*document.Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, document_number, title, department, status, owner_user_id, created_at, updated_at
		FROM documents WHERE document_number=$1
	`, number)
	return scanDocument(row)
}

func (r *DocumentRepository) List(ctx context.Context, filter document.Filter, limit, offset int) ([]*document.Document, error) {
	query := `SELECT id, document_id, document_number, title, department, status, owner_user_id, created_at, updated_at FROM documents`
	args := []interface{}{}
	idx := 1
	if filter.Status != nil {
		query += " WHERE status=$" + itoa(idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.Department != nil {
		query += addWhere(query) + " department=$" + itoa(idx)
		args = append(args, *filter.Department)
		idx++
	}
	if filter.OwnerUserID != nil {
		query += addWhere(query) + " owner_user_id=$" + itoa(idx)
		args = append(args, *filter.OwnerUserID)
		idx++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(idx) + " OFFSET $" + itoa(idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []*document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) CountNumbersWithPrefix(ctx context.Context, prefix string) (int, error) {
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE document_number LIKE $1`, prefix+"%")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanDocument(row pgx.Row) (*document.Document, error) {
	var doc document.Document
	if err := row.Scan(&doc.ID, &doc.DocumentID, &doc.DocumentNumber, &doc.Title, &doc.Department, &doc.Status, &doc.OwnerUserID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func addWhere(query string) string {
	if strings.Contains(query, "WHERE") {
		return " AND"
	}
	return " WHERE"
}
