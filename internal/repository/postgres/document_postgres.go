package postgres

import (
	"context"
	"database/sql"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, file_name, file_url, content, category, topic, user_id, user_email, created_at`

func scanDocument(row interface{ Scan(...any) error }, d *model.Document) error {
	return row.Scan(
		&d.ID,
		&d.FileName,
		&d.FileURL,
		&d.Content,
		&d.Category,
		&d.Topic,
		&d.UserID,
		&d.UserEmail,
		&d.CreatedAt,
	)
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, file_name, file_url, content, category, topic, user_id, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.FileName,
		doc.FileURL,
		doc.Content,
		doc.Category,
		doc.Topic,
		doc.UserID,
		doc.UserEmail,
		doc.CreatedAt,
	)
	var out model.Document
	if err := scanDocument(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := scanDocument(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Search runs PostgreSQL full-text search in websearch syntax (implicit AND,
// quoted phrases, OR, exclusion) against the generated search_vector column.
// Rows come back in ts_rank order; no re-ranking happens on this side.
func (r *DocumentPostgres) Search(ctx context.Context, userID, query string, limit int) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		  AND search_vector @@ websearch_to_tsquery('english', $2)
		ORDER BY ts_rank(search_vector, websearch_to_tsquery('english', $2)) DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, userID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListByUser returns all of a user's documents ordered by creation time descending.
func (r *DocumentPostgres) ListByUser(ctx context.Context, userID string) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Missing rows are fine: the administrative delete is idempotent.
	_, _ = res.RowsAffected()
	return nil
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
