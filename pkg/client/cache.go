package client

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"acervo/pkg/filter"
	"acervo/pkg/model"
	"acervo/pkg/validate"
)

// Staleness windows. Listing pages churn with every upload so they expire
// quickly; a single document's metadata changes rarely.
const (
	ListTTL   = 5 * time.Minute
	DetailTTL = 10 * time.Minute
)

// Cache sits between consumers and the Client. Repeated reads inside the
// staleness window are served from memory, concurrent identical requests
// share one round trip, and mutations invalidate exactly the keys they
// touched.
//
// Every key carries a generation counter. Invalidate bumps it, and an
// in-flight response is only stored if its generation is still current, so
// a fetch that raced a mutation can never resurrect stale data.
type Cache struct {
	c *Client

	sf singleflight.Group

	mu      sync.Mutex
	entries map[string]cacheEntry
	gens    map[string]uint64

	listTTL   time.Duration
	detailTTL time.Duration
	now       func() time.Time
}

type cacheEntry struct {
	val any
	at  time.Time
	gen uint64
}

// NewCache wraps a Client with the caching layer.
func NewCache(c *Client) *Cache {
	return &Cache{
		c:         c,
		entries:   make(map[string]cacheEntry),
		gens:      make(map[string]uint64),
		listTTL:   ListTTL,
		detailTTL: DetailTTL,
		now:       time.Now,
	}
}

// Client returns the underlying HTTP client.
func (cc *Cache) Client() *Client { return cc.c }

// Invalidate drops every cached key matching one of the prefixes and bumps
// their generations so in-flight fetches for them are discarded.
func (cc *Cache) Invalidate(prefixes ...string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for key := range cc.gens {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				delete(cc.entries, key)
				cc.gens[key]++
				cc.sf.Forget(key)
				break
			}
		}
	}
}

// get serves key from memory when fresh, otherwise coalesces callers onto
// one fetch. The flight runs detached from the caller's context so one
// impatient caller cannot fail the request for everyone sharing it.
func get[V any](ctx context.Context, cc *Cache, key string, ttl time.Duration, fetch func(context.Context) (V, error)) (V, error) {
	var zero V

	cc.mu.Lock()
	if _, ok := cc.gens[key]; !ok {
		cc.gens[key] = 0
	}
	gen := cc.gens[key]
	if e, ok := cc.entries[key]; ok && cc.now().Sub(e.at) < ttl {
		cc.mu.Unlock()
		return e.val.(V), nil
	}
	cc.mu.Unlock()

	ch := cc.sf.DoChan(key, func() (any, error) {
		return fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		val := res.Val.(V)

		cc.mu.Lock()
		if cc.gens[key] == gen {
			cc.entries[key] = cacheEntry{val: val, at: cc.now(), gen: gen}
		}
		cc.mu.Unlock()
		return val, nil
	}
}

func listKey(snap filter.Snapshot, pageSize int) string {
	return "documents?" + snap.Params(pageSize).Encode()
}

// Documents returns the listing page for the snapshot, from cache when fresh.
func (cc *Cache) Documents(ctx context.Context, snap filter.Snapshot) (*DocumentPage, error) {
	key := listKey(snap, cc.c.PageSize())
	return get(ctx, cc, key, cc.listTTL, func(ctx context.Context) (*DocumentPage, error) {
		return cc.c.Documents(ctx, snap)
	})
}

// Document returns one document, from cache when fresh.
func (cc *Cache) Document(ctx context.Context, id string) (*model.Document, error) {
	return get(ctx, cc, "document/"+id, cc.detailTTL, func(ctx context.Context) (*model.Document, error) {
		return cc.c.Document(ctx, id)
	})
}

// FilterStats returns the facet counts, from cache when fresh.
func (cc *Cache) FilterStats(ctx context.Context) (*model.FilterStats, error) {
	return get(ctx, cc, "filters", cc.listTTL, func(ctx context.Context) (*model.FilterStats, error) {
		return cc.c.FilterStats(ctx)
	})
}

// Users returns one page of accounts, from cache when fresh.
func (cc *Cache) Users(ctx context.Context, search string, page int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	key := "users?search=" + search + "&page=" + strconv.Itoa(page)
	return get(ctx, cc, key, cc.listTTL, func(ctx context.Context) (*UserPage, error) {
		return cc.c.Users(ctx, search, page)
	})
}

// AdminStats returns the dashboard aggregates, from cache when fresh.
func (cc *Cache) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	return get(ctx, cc, "admin/stats", cc.listTTL, func(ctx context.Context) (*model.AdminStats, error) {
		return cc.c.AdminStats(ctx)
	})
}

// CreateDocument uploads a new document and expires the listings, facet
// counts and dashboard aggregates it changed.
func (cc *Cache) CreateDocument(ctx context.Context, in DocumentUpload) (*model.Document, error) {
	doc, err := cc.c.CreateDocument(ctx, in)
	if err != nil {
		return nil, err
	}
	cc.Invalidate("documents", "filters", "admin/stats")
	return doc, nil
}

// UpdateDocument validates the patched metadata against the cached current
// state, sends the edit, and expires the affected keys. Invalid patches are
// rejected locally without a request.
func (cc *Cache) UpdateDocument(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	current, err := cc.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate.Update(patched(*current, patch)); err != nil {
		return nil, err
	}

	doc, err := cc.c.UpdateDocument(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	cc.Invalidate("documents", "document/"+id, "filters")
	return doc, nil
}

// DeleteDocument removes a document and expires every key that listed it.
func (cc *Cache) DeleteDocument(ctx context.Context, id string) error {
	if err := cc.c.DeleteDocument(ctx, id); err != nil {
		return err
	}
	cc.Invalidate("documents", "document/"+id, "filters", "admin/stats")
	return nil
}

// UpdateUserRole changes an account's role and expires the user listings.
func (cc *Cache) UpdateUserRole(ctx context.Context, actor model.User, id string, role model.Role) (*model.User, error) {
	user, err := cc.c.UpdateUserRole(ctx, actor, id, role)
	if err != nil {
		return nil, err
	}
	cc.Invalidate("users", "admin/stats")
	return user, nil
}

// patched overlays a metadata patch on the stored document, mirroring the
// merge the server performs before validating an edit.
func patched(doc model.Document, p model.DocumentPatch) validate.DocumentInput {
	in := validate.DocumentInput{
		Title:           doc.Title,
		Description:     doc.Description,
		Authors:         doc.Authors,
		Keywords:        doc.Keywords,
		DocumentType:    doc.DocumentType,
		ResearchArea:    doc.ResearchArea,
		PublicationDate: doc.PublicationDate,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Authors != nil {
		in.Authors = p.Authors
	}
	if p.Keywords != nil {
		in.Keywords = p.Keywords
	}
	if p.DocumentType != nil {
		in.DocumentType = *p.DocumentType
	}
	if p.ResearchArea != nil {
		in.ResearchArea = *p.ResearchArea
	}
	if p.PublicationDate != nil {
		in.PublicationDate = *p.PublicationDate
	}
	return in
}
