package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acervo/pkg/filter"
)

// corpusServer serves a small document corpus with substring search, the
// way the listing endpoint filters by title.
func corpusServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	corpus := []map[string]any{
		sampleDoc("1", "Qualidade da Água no Norte Fluminense"),
		sampleDoc("2", "Análise de Solos Agrícolas"),
		sampleDoc("3", "Biodiversidade da Mata Atlântica"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		search := strings.ToLower(r.URL.Query().Get("search"))
		var hits []any
		for _, doc := range corpus {
			if search == "" || strings.Contains(strings.ToLower(doc["title"].(string)), search) {
				hits = append(hits, doc)
			}
		}
		okList(w, hits, len(hits), 9, 0, 1)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func waitResult(t *testing.T, s *Searcher) Result {
	t.Helper()
	select {
	case res := <-s.Results():
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("no search result delivered")
		return Result{}
	}
}

func TestSearcherDeliversMatches(t *testing.T) {
	srv := corpusServer(t, nil)
	s := NewSearcher(NewCache(New(srv.URL)), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Update(filter.Patch{Query: filter.String("água")})

	res := waitResult(t, s)
	require.NoError(t, res.Err)
	assert.Equal(t, "água", res.Snapshot.Query)
	require.Len(t, res.Page.Items, 1)
	assert.Equal(t, "Qualidade da Água no Norte Fluminense", res.Page.Items[0].Title)
}

func TestSearcherCollapsesTypingBurst(t *testing.T) {
	var calls atomic.Int32
	srv := corpusServer(t, &calls)
	s := NewSearcher(NewCache(New(srv.URL)), 120*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Keystrokes arriving faster than the debounce delay.
	for _, q := range []string{"á", "ág", "águ", "água"} {
		s.Update(filter.Patch{Query: filter.String(q)})
		time.Sleep(20 * time.Millisecond)
	}

	res := waitResult(t, s)
	require.NoError(t, res.Err)
	assert.Equal(t, "água", res.Snapshot.Query)
	assert.Len(t, res.Page.Items, 1)

	// The burst settled into a single request.
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearcherFilterEditResetsPage(t *testing.T) {
	srv := corpusServer(t, nil)
	s := NewSearcher(NewCache(New(srv.URL)), 20*time.Millisecond)

	s.Update(filter.Patch{Page: filter.Int(3)})
	snap := s.Update(filter.Patch{Query: filter.String("solos")})

	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, "solos", snap.Query)
}

func TestSearcherResetClearsState(t *testing.T) {
	srv := corpusServer(t, nil)
	s := NewSearcher(NewCache(New(srv.URL)), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Update(filter.Patch{
		Query:        filter.String("solos"),
		ResearchArea: filter.String("Biodiversidade"),
	})
	waitResult(t, s)

	snap := s.Reset()
	assert.Equal(t, filter.Default(), snap)

	res := waitResult(t, s)
	require.NoError(t, res.Err)
	assert.Equal(t, filter.Default(), res.Snapshot)
	assert.Len(t, res.Page.Items, 3)
}

func TestSearcherLatestResultWins(t *testing.T) {
	srv := corpusServer(t, nil)
	s := NewSearcher(NewCache(New(srv.URL)), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Two settled searches without the consumer reading in between: the
	// buffered result is replaced, not queued behind.
	s.Update(filter.Patch{Query: filter.String("solos")})
	time.Sleep(150 * time.Millisecond)
	s.Update(filter.Patch{Query: filter.String("água")})
	time.Sleep(150 * time.Millisecond)

	res := waitResult(t, s)
	require.NoError(t, res.Err)
	assert.Equal(t, "água", res.Snapshot.Query)

	select {
	case extra := <-s.Results():
		t.Fatalf("unexpected extra result for %q", extra.Snapshot.Query)
	case <-time.After(100 * time.Millisecond):
	}
}
