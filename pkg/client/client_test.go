package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acervo/pkg/filter"
	"acervo/pkg/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func okData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func okList(w http.ResponseWriter, data any, total, limit, offset, pages int) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"pagination": map[string]int{
			"total": total, "limit": limit, "offset": offset, "pages": pages,
		},
	})
}

func failWith(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success": false, "error": code, "message": message,
	})
}

func sampleDoc(id, title string) map[string]any {
	return map[string]any{
		"id":           id,
		"title":        title,
		"description":  "uma descrição longa o bastante",
		"authors":      []string{"Maria Souza"},
		"documentType": "Tese",
		"researchArea": "Biodiversidade",
		"keywords":     []string{"teste"},
	}
}

func TestClientDocuments(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/documents", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		gotQuery = r.URL.RawQuery
		okList(w, []any{sampleDoc("1", "Análise de Solos")}, 1, 9, 0, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok-1"))
	snap := filter.Default().Apply(filter.Patch{Query: filter.String("solos")})

	page, err := c.Documents(context.Background(), snap)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "Análise de Solos", page.Items[0].Title)
	assert.Equal(t, 1, page.Total)
	assert.Contains(t, gotQuery, "search=solos")
	assert.Contains(t, gotQuery, "limit=9")
	assert.Contains(t, gotQuery, "offset=0")
}

func TestClientErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "FORBIDDEN", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				failWith(w, tt.status, tt.code, "nope")
			}))
			defer srv.Close()

			_, err := New(srv.URL).Document(context.Background(), "1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestClientRetriesReads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			failWith(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
			return
		}
		okData(w, sampleDoc("7", "Recuperado Após Falha"))
	}))
	defer srv.Close()

	doc, err := New(srv.URL).Document(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Recuperado Após Falha", doc.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		failWith(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Document(context.Background(), "7")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	// first attempt plus two retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryWrites(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		failWith(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteDocument(context.Background(), "7")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["email"] != "joao@uenf.br" || creds["password"] != "123456" {
			failWith(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "email ou senha incorretos")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "acervo_session", Value: "jwt-abc", HttpOnly: true})
		okData(w, map[string]any{"id": "u1", "name": "João", "email": "joao@uenf.br", "role": "ADMIN"})
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Login(context.Background(), "joao@uenf.br", "errada")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token())

	user, err := c.Login(context.Background(), "joao@uenf.br", "123456")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", c.Token())
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestClientLogoutClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okData(w, nil)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok-1"))
	require.NoError(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token())
}

func TestClientDownloadFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		wantName    string
	}{
		{"from header", `attachment; filename="tese-final.pdf"`, "tese-final.pdf"},
		{"path stripped", `attachment; filename="../../etc/passwd"`, "passwd"},
		{"missing header", "", "document-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "application/pdf")
				w.Write([]byte("%PDF-1.4 conteudo"))
			}))
			defer srv.Close()

			dir := t.TempDir()
			path, err := New(srv.URL).Download(context.Background(), "42", dir)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(path, tt.wantName), "got %s", path)
		})
	}
}

func TestClientDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		failWith(w, http.StatusNotFound, "NOT_FOUND", "documento não encontrado")
	}))
	defer srv.Close()

	_, err := New(srv.URL).Download(context.Background(), "42", t.TempDir())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", WithRetries(0),
		WithHTTPClient(&http.Client{Timeout: 200 * time.Millisecond}))

	_, err := c.Document(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}
