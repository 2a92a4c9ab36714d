// Package memory implements the repositories over an in-memory corpus. It
// backs the database-less demo mode and serves as the reference for the
// filtering, ordering and pagination semantics shared with the SQL backend.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

// Store holds documents and users in memory. Safe for concurrent use.
// Access the repository views through Documents and Users.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*model.Document
	users map[string]*repository.Credential
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		docs:  make(map[string]*model.Document),
		users: make(map[string]*repository.Credential),
	}
}

// Documents returns the document repository view of the store.
func (s *Store) Documents() repository.DocumentRepository {
	return &documents{s: s}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository {
	return &users{s: s}
}

type documents struct{ s *Store }

var _ repository.DocumentRepository = (*documents)(nil)

// matches applies the shared filter semantics: free text is a case-insensitive
// substring OR across title, description, authors and keywords; type and area
// are exact; author is a case-insensitive substring over authors.
func matches(d *model.Document, f repository.DocumentFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hit := strings.Contains(strings.ToLower(d.Title), q) ||
			strings.Contains(strings.ToLower(d.Description), q) ||
			anyContains(d.Authors, q) ||
			anyContains(d.Keywords, q)
		if !hit {
			return false
		}
	}
	if f.DocumentType != "" && d.DocumentType != f.DocumentType {
		return false
	}
	if f.ResearchArea != "" && d.ResearchArea != f.ResearchArea {
		return false
	}
	if f.Author != "" && !anyContains(d.Authors, strings.ToLower(f.Author)) {
		return false
	}
	return true
}

func anyContains(ss []string, lowered string) bool {
	for _, s := range ss {
		if strings.Contains(strings.ToLower(s), lowered) {
			return true
		}
	}
	return false
}

// Create inserts a document.
func (r *documents) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := cloneDoc(doc)
	r.s.docs[cp.ID] = cp
	return cloneDoc(cp), nil
}

// FindByID returns a document or sql.ErrNoRows, mirroring the SQL backend so
// callers translate missing rows the same way for both.
func (r *documents) FindByID(_ context.Context, id string) (*model.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneDoc(d), nil
}

// List filters, orders and paginates the corpus. A page past the end yields an
// empty item list, never an error.
func (r *documents) List(_ context.Context, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*model.Document, 0, len(r.s.docs))
	for _, d := range r.s.docs {
		if matches(d, f) {
			matched = append(matched, d)
		}
	}

	// Newest first; equal timestamps break ties by id ascending so identical
	// queries always return identical pages.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start, end := pageBounds(total, pq)

	items := make([]model.Document, 0, end-start)
	for _, d := range matched[start:end] {
		items = append(items, *cloneDoc(d))
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// Update applies a metadata patch and refreshes updatedAt.
func (r *documents) Update(_ context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Authors != nil {
		d.Authors = append([]string(nil), patch.Authors...)
	}
	if patch.PublicationDate != nil {
		d.PublicationDate = *patch.PublicationDate
	}
	if patch.DocumentType != nil {
		d.DocumentType = *patch.DocumentType
	}
	if patch.ResearchArea != nil {
		d.ResearchArea = *patch.ResearchArea
	}
	if patch.Keywords != nil {
		d.Keywords = append([]string(nil), patch.Keywords...)
	}
	d.UpdatedAt = time.Now().UTC()
	return cloneDoc(d), nil
}

// Delete removes a document; deleting a missing id is not an error.
func (r *documents) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.docs, id)
	return nil
}

// IncrementViewCount bumps the view counter.
func (r *documents) IncrementViewCount(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.docs[id]; ok {
		d.ViewCount++
	}
	return nil
}

// IncrementDownloadCount bumps the download counter.
func (r *documents) IncrementDownloadCount(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.docs[id]; ok {
		d.DownloadCount++
	}
	return nil
}

// FilterStats aggregates per-type and per-area counts.
func (r *documents) FilterStats(_ context.Context) (*model.FilterStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	types := map[string]int{}
	areas := map[string]int{}
	for _, d := range r.s.docs {
		types[d.DocumentType]++
		areas[d.ResearchArea]++
	}
	return &model.FilterStats{
		DocumentTypes:  toFacets(types),
		ResearchAreas:  toFacets(areas),
		TotalDocuments: len(r.s.docs),
	}, nil
}

func toFacets(counts map[string]int) []model.FacetCount {
	out := make([]model.FacetCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, model.FacetCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Stats returns aggregate document counters.
func (r *documents) Stats(_ context.Context, since time.Time) (*repository.DocumentStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := repository.DocumentStats{Total: len(r.s.docs)}
	for _, d := range r.s.docs {
		st.TotalDownloads += d.DownloadCount
		if !d.CreatedAt.Before(since) {
			st.CreatedSince++
		}
	}
	return &st, nil
}

// pageBounds clamps an offset window to [0, total].
func pageBounds(total int, pq repository.PageQuery) (int, int) {
	start := pq.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + pq.Limit
	if pq.Limit <= 0 || end > total {
		end = total
	}
	return start, end
}

func cloneDoc(d *model.Document) *model.Document {
	cp := *d
	cp.Authors = append([]string(nil), d.Authors...)
	cp.Keywords = append([]string(nil), d.Keywords...)
	return &cp
}
