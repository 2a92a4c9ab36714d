// Package filter holds the canonical search state of a document listing and
// its URL representation. A Snapshot is an immutable value; Apply returns a
// new one, so concurrent readers never observe a half-updated state.
package filter

import (
	"net/url"
	"strconv"
)

// Snapshot is one complete filter state. The zero value is not valid; use
// Default.
type Snapshot struct {
	Query        string
	DocumentType string
	ResearchArea string
	Author       string
	Page         int
}

// Default returns the initial state: no constraints, first page.
func Default() Snapshot {
	return Snapshot{Page: 1}
}

// Patch is a partial update. Nil fields leave the snapshot unchanged.
type Patch struct {
	Query        *string
	DocumentType *string
	ResearchArea *string
	Author       *string
	Page         *int
}

// String returns a pointer suitable for a Patch field.
func String(s string) *string { return &s }

// Int returns a pointer suitable for a Patch field.
func Int(i int) *int { return &i }

// Apply overlays the patch and returns the resulting snapshot. Changing any
// field other than Page jumps back to the first page, so a narrowed result
// set never points past its own end.
func (s Snapshot) Apply(p Patch) Snapshot {
	next := s
	if p.Page != nil {
		next.Page = *p.Page
	}
	if p.Query != nil {
		next.Query = *p.Query
	}
	if p.DocumentType != nil {
		next.DocumentType = *p.DocumentType
	}
	if p.ResearchArea != nil {
		next.ResearchArea = *p.ResearchArea
	}
	if p.Author != nil {
		next.Author = *p.Author
	}
	if next.Query != s.Query || next.DocumentType != s.DocumentType ||
		next.ResearchArea != s.ResearchArea || next.Author != s.Author {
		next.Page = 1
	}
	if next.Page < 1 {
		next.Page = 1
	}
	return next
}

// Reset restores the default state in a single step.
func (s Snapshot) Reset() Snapshot {
	return Default()
}

// Values serializes the snapshot to URL query parameters. Defaults are
// omitted so an untouched state yields an empty query string.
func (s Snapshot) Values() url.Values {
	v := url.Values{}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	if s.DocumentType != "" {
		v.Set("documentType", s.DocumentType)
	}
	if s.ResearchArea != "" {
		v.Set("researchArea", s.ResearchArea)
	}
	if s.Author != "" {
		v.Set("author", s.Author)
	}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	return v
}

// FromValues restores a snapshot from URL query parameters. Absent or
// malformed parameters fall back to their defaults, so Values and FromValues
// round-trip for every reachable state.
func FromValues(v url.Values) Snapshot {
	s := Default()
	s.Query = v.Get("q")
	s.DocumentType = v.Get("documentType")
	s.ResearchArea = v.Get("researchArea")
	s.Author = v.Get("author")
	if page, err := strconv.Atoi(v.Get("page")); err == nil && page > 1 {
		s.Page = page
	}
	return s
}

// Params maps the snapshot to the server's request parameters, converting
// the 1-based page to a limit/offset window.
func (s Snapshot) Params(pageSize int) url.Values {
	if pageSize <= 0 {
		pageSize = 9
	}
	page := s.Page
	if page < 1 {
		page = 1
	}
	v := url.Values{}
	if s.Query != "" {
		v.Set("search", s.Query)
	}
	if s.DocumentType != "" {
		v.Set("documentType", s.DocumentType)
	}
	if s.ResearchArea != "" {
		v.Set("researchArea", s.ResearchArea)
	}
	if s.Author != "" {
		v.Set("author", s.Author)
	}
	v.Set("limit", strconv.Itoa(pageSize))
	v.Set("offset", strconv.Itoa((page-1)*pageSize))
	return v
}
