package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"acervo/pkg/filter"
	"acervo/pkg/model"
	"acervo/pkg/validate"
)

// DocumentPage is one page of listing results.
type DocumentPage struct {
	Items []model.Document
	Total int
	Pages int
}

// UserPage is one page of account listing results.
type UserPage struct {
	Items []model.User
	Total int
	Pages int
}

// DocumentUpload is the payload for CreateDocument. Filename names the
// uploaded file; the metadata's File field is filled in from the content
// before validation runs.
type DocumentUpload struct {
	Meta     validate.DocumentInput
	Filename string
	Content  io.Reader
}

// Documents lists the page selected by the filter snapshot.
func (c *Client) Documents(ctx context.Context, snap filter.Snapshot) (*DocumentPage, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/documents", snap.Params(c.pageSize), nil, "")
	if err != nil {
		return nil, err
	}
	page := &DocumentPage{Total: env.Pagination.Total, Pages: env.Pagination.Pages}
	if err := json.Unmarshal(env.Data, &page.Items); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return page, nil
}

// Document fetches one document by id.
func (c *Client) Document(ctx context.Context, id string) (*model.Document, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, nil, "")
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// FilterStats returns the facet counts that drive the filter menus.
func (c *Client) FilterStats(ctx context.Context) (*model.FilterStats, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/documents/filters", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var stats model.FilterStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return nil, fmt.Errorf("decode filter stats: %w", err)
	}
	return &stats, nil
}

// CreateDocument validates the payload and uploads it as multipart form
// data. Invalid payloads are rejected locally, no request is made.
func (c *Client) CreateDocument(ctx context.Context, in DocumentUpload) (*model.Document, error) {
	var content []byte
	if in.Content != nil {
		var err error
		if content, err = io.ReadAll(in.Content); err != nil {
			return nil, fmt.Errorf("read upload content: %w", err)
		}
		if in.Meta.File == nil {
			mt := mime.TypeByExtension(filepath.Ext(in.Filename))
			if mt == "" {
				mt = "application/octet-stream"
			}
			in.Meta.File = &validate.FileInput{
				Name:     in.Filename,
				Size:     int64(len(content)),
				MimeType: mt,
			}
		}
	}
	if err := validate.Create(in.Meta); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":           in.Meta.Title,
		"description":     in.Meta.Description,
		"documentType":    in.Meta.DocumentType,
		"researchArea":    in.Meta.ResearchArea,
		"publicationDate": in.Meta.PublicationDate,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	for _, a := range in.Meta.Authors {
		if err := w.WriteField("authors", a); err != nil {
			return nil, err
		}
	}
	for _, kw := range in.Meta.Keywords {
		if err := w.WriteField("keywords", kw); err != nil {
			return nil, err
		}
	}
	part, err := w.CreateFormFile("file", in.Meta.File.Name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodPost, "/api/documents", nil, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// UpdateDocument sends a metadata patch for one document.
func (c *Client) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPut, "/api/documents/"+url.PathEscape(id), nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// DeleteDocument removes a document and its stored file.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(id), nil, nil, "")
	return err
}

// Download streams a document's file into dir and returns the written path.
// The filename comes from the Content-Disposition header, falling back to
// "document-<id>" when the server does not name the file.
func (c *Client) Download(ctx context.Context, id, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/documents/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return "", err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if _, err := decodeEnvelope(resp); err != nil {
			return "", err
		}
		return "", &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: resp.Status}
	}

	name := "document-" + id
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = filepath.Base(params["filename"])
		}
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

// Users lists accounts, optionally narrowed by a name or email search.
func (c *Client) Users(ctx context.Context, search string, page int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("offset", strconv.Itoa((page-1)*c.pageSize))

	env, err := c.do(ctx, http.MethodGet, "/api/users", q, nil, "")
	if err != nil {
		return nil, err
	}
	up := &UserPage{Total: env.Pagination.Total, Pages: env.Pagination.Pages}
	if err := json.Unmarshal(env.Data, &up.Items); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return up, nil
}

// UpdateUserRole changes one account's role. Admins cannot demote
// themselves, the guard runs before any request is made.
func (c *Client) UpdateUserRole(ctx context.Context, actor model.User, id string, role model.Role) (*model.User, error) {
	if actor.ID == id && role != model.RoleAdmin {
		return nil, ErrSelfDemotion
	}
	body, err := json.Marshal(map[string]string{"role": string(role)})
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// AdminStats returns the dashboard aggregates.
func (c *Client) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, "")
	if err != nil {
		return nil, err
	}
	var stats model.AdminStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}
