package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"acervo/pkg/debounce"
	"acervo/pkg/filter"
)

// Result is one settled search: the snapshot that was fetched and the page
// it produced.
type Result struct {
	Snapshot filter.Snapshot
	Page     *DocumentPage
	Err      error
}

// Searcher drives the browse loop. Filter edits are applied to a snapshot
// and debounced; once the user pauses, the settled snapshot is fetched
// through the cache and the page is delivered on Results. When edits keep
// arriving, older in-flight fetches are superseded and their results
// dropped, so consumers only ever see the page matching the latest state.
type Searcher struct {
	cache *Cache
	deb   *debounce.Debouncer[filter.Snapshot]

	mu    sync.Mutex
	state filter.Snapshot

	seq     atomic.Uint64
	results chan Result
}

// NewSearcher returns a Searcher emitting after delay of inactivity.
// A non-positive delay uses the default.
func NewSearcher(cache *Cache, delay time.Duration) *Searcher {
	if delay <= 0 {
		delay = debounce.DefaultDelay
	}
	return &Searcher{
		cache:   cache,
		deb:     debounce.New[filter.Snapshot](delay),
		state:   filter.Default(),
		results: make(chan Result, 1),
	}
}

// Results delivers settled pages. Only the latest fetch is ever delivered;
// superseded ones are dropped.
func (s *Searcher) Results() <-chan Result { return s.results }

// State returns the current filter snapshot.
func (s *Searcher) State() filter.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies a patch to the filter state and schedules a fetch.
// Changing any filter field resets the page to 1.
func (s *Searcher) Update(p filter.Patch) filter.Snapshot {
	s.mu.Lock()
	s.state = s.state.Apply(p)
	snap := s.state
	s.mu.Unlock()

	s.deb.Set(snap)
	return snap
}

// Reset clears every filter and schedules a fetch of the default state.
func (s *Searcher) Reset() filter.Snapshot {
	s.mu.Lock()
	s.state = filter.Default()
	snap := s.state
	s.mu.Unlock()

	s.deb.Set(snap)
	return snap
}

// Run consumes settled snapshots until ctx is done. Each snapshot is
// fetched in its own goroutine so a slow page cannot delay newer edits;
// a fetch that finishes after a newer snapshot settled is discarded.
func (s *Searcher) Run(ctx context.Context) {
	defer s.deb.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-s.deb.C():
			seq := s.seq.Add(1)
			go s.fetch(ctx, snap, seq)
		}
	}
}

func (s *Searcher) fetch(ctx context.Context, snap filter.Snapshot, seq uint64) {
	page, err := s.cache.Documents(ctx, snap)
	if s.seq.Load() != seq {
		return
	}
	// Latest wins: replace an unread older result instead of blocking.
	for {
		select {
		case <-ctx.Done():
			return
		case s.results <- Result{Snapshot: snap, Page: page, Err: err}:
			return
		default:
			select {
			case <-s.results:
			default:
			}
		}
	}
}
