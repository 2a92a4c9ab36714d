package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"acervo/internal/repository"
	"acervo/internal/storage"
	"acervo/pkg/model"
	"acervo/pkg/validate"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
	ErrReaderNil  = errors.New("reader is nil")
)

// UploadInput carries a document submission: validated metadata plus the file
// stream and the acting account.
type UploadInput struct {
	Meta    validate.DocumentInput
	Content io.Reader
	Actor   model.User
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items     []model.Document `json:"data"`
	Total     int              `json:"total"`
	PageCount int              `json:"pageCount"`
}

// DownloadResult streams a stored file together with the headers a caller
// needs to serve it. The reader must be closed by the caller.
type DownloadResult struct {
	Content     io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates the submission, uploads the content to object storage,
	// saves metadata to DB, and rolls back storage if the DB save fails.
	// Validation failures are returned as *validate.Error with every broken
	// rule listed.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns documents matching the filter using limit/offset, the
	// total matching count and the derived page count.
	List(ctx context.Context, f repository.DocumentFilter, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID and bumps its view counter.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Update applies a metadata-only patch after validating the merged result.
	Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id string) error

	// Download streams the stored file and bumps the download counter.
	Download(ctx context.Context, id string) (*DownloadResult, error)

	// FilterStats returns the per-type and per-area counters for the filter
	// sidebar.
	FilterStats(ctx context.Context) (*model.FilterStats, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if err := validate.Create(in.Meta); err != nil {
		return nil, err
	}
	if in.Content == nil {
		return nil, ErrReaderNil
	}

	// Stored name is UUID + original extension; the submitted name is kept
	// as object metadata so downloads can restore it.
	ext := filepath.Ext(in.Meta.File.Name)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	objInfo, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Meta.File.Size,
		ContentType: in.Meta.File.MimeType,
		Metadata: map[string]string{
			"original-filename": in.Meta.File.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:              uuid.New().String(),
		Title:           in.Meta.Title,
		Description:     in.Meta.Description,
		Authors:         in.Meta.Authors,
		PublicationDate: in.Meta.PublicationDate,
		DocumentType:    in.Meta.DocumentType,
		ResearchArea:    in.Meta.ResearchArea,
		Keywords:        in.Meta.Keywords,
		FileURL:         objInfo.Key,
		FileSize:        objInfo.Size,
		FileMimeType:    in.Meta.File.MimeType,
		CreatedBy: model.CreatedBy{
			ID:    in.Actor.ID,
			Name:  in.Actor.Name,
			Email: in.Actor.Email,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, f repository.DocumentFilter, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 9
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, f, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total, PageCount: res.Pages(limit)}, nil
}

// Get returns a document by ID. The view counter bump is best effort; a
// counter failure never hides the document itself.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.repo.IncrementViewCount(ctx, id); err == nil {
		doc.ViewCount++
	}
	return doc, nil
}

// Update merges the patch over the stored metadata, re-validates the result
// and persists it. The file itself is never touched here.
func (s *documentService) Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := validate.Update(mergeInput(doc, patch)); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	// Find the document to get its storage key
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.FileURL); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	// Delete DB row (repository ignores missing row errors as per contract)
	return s.repo.Delete(ctx, id)
}

func (s *documentService) Download(ctx context.Context, id string) (*DownloadResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rc, info, err := s.store.Get(ctx, doc.FileURL)
	if err != nil {
		return nil, fmt.Errorf("get from storage: %w", err)
	}
	name := info.Metadata["original-filename"]
	if name == "" {
		name = filepath.Base(doc.FileURL)
	}
	_ = s.repo.IncrementDownloadCount(ctx, id)
	return &DownloadResult{
		Content:     rc,
		Filename:    name,
		ContentType: doc.FileMimeType,
		Size:        info.Size,
	}, nil
}

func (s *documentService) FilterStats(ctx context.Context) (*model.FilterStats, error) {
	return s.repo.FilterStats(ctx)
}

// mergeInput overlays a patch on the stored metadata so the whole document
// can be re-validated as one submission.
func mergeInput(doc *model.Document, patch model.DocumentPatch) validate.DocumentInput {
	in := validate.DocumentInput{
		Title:           doc.Title,
		Description:     doc.Description,
		Authors:         doc.Authors,
		Keywords:        doc.Keywords,
		DocumentType:    doc.DocumentType,
		ResearchArea:    doc.ResearchArea,
		PublicationDate: doc.PublicationDate,
	}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Authors != nil {
		in.Authors = patch.Authors
	}
	if patch.Keywords != nil {
		in.Keywords = patch.Keywords
	}
	if patch.DocumentType != nil {
		in.DocumentType = *patch.DocumentType
	}
	if patch.ResearchArea != nil {
		in.ResearchArea = *patch.ResearchArea
	}
	if patch.PublicationDate != nil {
		in.PublicationDate = *patch.PublicationDate
	}
	return in
}
