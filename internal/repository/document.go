package repository

import (
	"context"

	"docsearch/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
//
// Search and ListByUser are always scoped to a single owning user; Delete is
// deliberately unscoped because it backs the service-role administrative
// delete, which bypasses per-user access restriction.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row
	// (may include values set by the DB, e.g. generated id and created_at).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Search runs a full-text query in websearch syntax over the combined
	// name+category+content index, filtered to the given user, in backend
	// relevance order, capped at limit rows.
	Search(ctx context.Context, userID, query string, limit int) ([]model.Document, error)

	// ListByUser returns every document owned by the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Document, error)

	// Delete removes a document by ID regardless of owner. It returns nil if
	// the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
