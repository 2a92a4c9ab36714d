package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Authors and keywords are stored as JSONB arrays.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `
	d.id, d.title, d.description, d.authors, d.publication_date,
	d.document_type, d.research_area, d.keywords,
	d.file_url, d.file_size, d.file_mime_type,
	d.view_count, d.download_count,
	u.id, u.name, u.email,
	d.created_at, d.updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var (
		d        model.Document
		authors  []byte
		keywords []byte
	)
	if err := row.Scan(
		&d.ID, &d.Title, &d.Description, &authors, &d.PublicationDate,
		&d.DocumentType, &d.ResearchArea, &keywords,
		&d.FileURL, &d.FileSize, &d.FileMimeType,
		&d.ViewCount, &d.DownloadCount,
		&d.CreatedBy.ID, &d.CreatedBy.Name, &d.CreatedBy.Email,
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(authors, &d.Authors); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	if err := json.Unmarshal(keywords, &d.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	authors, err := json.Marshal(doc.Authors)
	if err != nil {
		return nil, fmt.Errorf("encode authors: %w", err)
	}
	keywords, err := json.Marshal(doc.Keywords)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}

	const q = `
		INSERT INTO documents (
			id, title, description, authors, publication_date,
			document_type, research_area, keywords,
			file_url, file_size, file_mime_type,
			created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q,
		doc.ID, doc.Title, doc.Description, authors, doc.PublicationDate,
		doc.DocumentType, doc.ResearchArea, keywords,
		doc.FileURL, doc.FileSize, doc.FileMimeType,
		doc.CreatedBy.ID, doc.CreatedAt,
	).Scan(&id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single document joined with its uploader.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `
		SELECT` + documentColumns + `
		FROM documents d
		JOIN users u ON u.id = d.created_by
		WHERE d.id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// filterClauses translates a DocumentFilter into WHERE conditions.
// The same argument index is reused inside a condition so each filter value is
// bound exactly once.
func filterClauses(f repository.DocumentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}
	if f.Search != "" {
		n := next("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf(`(
			d.title ILIKE $%[1]d OR d.description ILIKE $%[1]d
			OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(d.authors) a WHERE a ILIKE $%[1]d)
			OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(d.keywords) k WHERE k ILIKE $%[1]d)
		)`, n))
	}
	if f.DocumentType != "" {
		conds = append(conds, fmt.Sprintf("d.document_type = $%d", next(f.DocumentType)))
	}
	if f.ResearchArea != "" {
		conds = append(conds, fmt.Sprintf("d.research_area = $%d", next(f.ResearchArea)))
	}
	if f.Author != "" {
		n := next("%" + f.Author + "%")
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(d.authors) a WHERE a ILIKE $%d)", n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns filtered documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where, args := filterClauses(f)

	qCount := `SELECT COUNT(*) FROM documents d` + where
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `
		SELECT` + documentColumns + `
		FROM documents d
		JOIN users u ON u.id = d.created_by` + where + fmt.Sprintf(`
		ORDER BY d.created_at DESC, d.id ASC
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Update applies a metadata patch. Nil patch fields keep their current value.
func (r *DocumentPostgres) Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Authors != nil {
		b, err := json.Marshal(patch.Authors)
		if err != nil {
			return nil, fmt.Errorf("encode authors: %w", err)
		}
		set("authors", b)
	}
	if patch.PublicationDate != nil {
		set("publication_date", *patch.PublicationDate)
	}
	if patch.DocumentType != nil {
		set("document_type", *patch.DocumentType)
	}
	if patch.ResearchArea != nil {
		set("research_area", *patch.ResearchArea)
	}
	if patch.Keywords != nil {
		b, err := json.Marshal(patch.Keywords)
		if err != nil {
			return nil, fmt.Errorf("encode keywords: %w", err)
		}
		set("keywords", b)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	q := fmt.Sprintf("UPDATE documents SET %s WHERE id = $%d RETURNING id",
		strings.Join(sets, ", "), len(args))

	var updated string
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&updated); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, updated)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// IncrementViewCount bumps the view counter.
func (r *DocumentPostgres) IncrementViewCount(ctx context.Context, id string) error {
	const q = `UPDATE documents SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// IncrementDownloadCount bumps the download counter.
func (r *DocumentPostgres) IncrementDownloadCount(ctx context.Context, id string) error {
	const q = `UPDATE documents SET download_count = download_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// FilterStats aggregates document counts per type and per research area.
func (r *DocumentPostgres) FilterStats(ctx context.Context) (*model.FilterStats, error) {
	stats := &model.FilterStats{
		DocumentTypes: make([]model.FacetCount, 0),
		ResearchAreas: make([]model.FacetCount, 0),
	}

	facet := func(q string, out *[]model.FacetCount) error {
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var fc model.FacetCount
			if err := rows.Scan(&fc.Name, &fc.Count); err != nil {
				return err
			}
			*out = append(*out, fc)
			stats.TotalDocuments += fc.Count
		}
		return rows.Err()
	}

	const qTypes = `
		SELECT document_type, COUNT(*) FROM documents
		GROUP BY document_type ORDER BY COUNT(*) DESC, document_type ASC
	`
	if err := facet(qTypes, &stats.DocumentTypes); err != nil {
		return nil, err
	}

	// TotalDocuments already accumulated from the first facet pass.
	total := stats.TotalDocuments

	const qAreas = `
		SELECT research_area, COUNT(*) FROM documents
		GROUP BY research_area ORDER BY COUNT(*) DESC, research_area ASC
	`
	if err := facet(qAreas, &stats.ResearchAreas); err != nil {
		return nil, err
	}
	stats.TotalDocuments = total

	return stats, nil
}

// Stats returns aggregate counters for the admin panel.
func (r *DocumentPostgres) Stats(ctx context.Context, since time.Time) (*repository.DocumentStats, error) {
	const q = `
		SELECT COUNT(*),
		       COALESCE(SUM(download_count), 0),
		       COUNT(*) FILTER (WHERE created_at >= $1)
		FROM documents
	`
	var s repository.DocumentStats
	if err := r.db.QueryRowContext(ctx, q, since).Scan(&s.Total, &s.TotalDownloads, &s.CreatedSince); err != nil {
		return nil, err
	}
	return &s, nil
}
