package repository

import (
	"context"
	"time"

	"acervo/pkg/model"
)

// DocumentFilter narrows a document listing. Zero values mean "no constraint".
//
// Matching rules, shared by every implementation:
//   - Search: case-insensitive substring against title, description, any
//     author and any keyword (logical OR across those fields).
//   - DocumentType, ResearchArea: exact match.
//   - Author: case-insensitive substring against any author.
type DocumentFilter struct {
	Search       string
	DocumentType string
	ResearchArea string
	Author       string
}

// DocumentStats carries the document-side counters for the admin panel.
type DocumentStats struct {
	Total          int
	TotalDownloads int
	CreatedSince   int
}

// DocumentRepository defines data access for documents.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a filtered, paginated list and the total matching count.
	// Ordering is creation time descending, ties broken by id ascending, so
	// identical queries always return identical pages.
	List(ctx context.Context, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Update applies a metadata patch and returns the updated row.
	Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// IncrementViewCount bumps the view counter by one.
	IncrementViewCount(ctx context.Context, id string) error

	// IncrementDownloadCount bumps the download counter by one.
	IncrementDownloadCount(ctx context.Context, id string) error

	// FilterStats returns per-type and per-area document counts.
	FilterStats(ctx context.Context) (*model.FilterStats, error)

	// Stats returns aggregate counters; CreatedSince counts documents created
	// at or after the given instant.
	Stats(ctx context.Context, since time.Time) (*DocumentStats, error)
}
