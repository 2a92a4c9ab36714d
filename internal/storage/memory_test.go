package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	t.Run("put then get round-trips content and metadata", func(t *testing.T) {
		info, err := store.Put(ctx, "documents/a.pdf", strings.NewReader("%PDF"), PutObjectOptions{
			ContentType: "application/pdf",
			Metadata:    map[string]string{"original-filename": "a.pdf"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), info.Size)

		rc, got, err := store.Get(ctx, "documents/a.pdf")
		require.NoError(t, err)
		defer rc.Close()

		body, _ := io.ReadAll(rc)
		assert.Equal(t, "%PDF", string(body))
		assert.Equal(t, "application/pdf", got.ContentType)
		assert.Equal(t, "a.pdf", got.Metadata["original-filename"])
	})

	t.Run("missing key", func(t *testing.T) {
		_, _, err := store.Get(ctx, "documents/missing.pdf")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		_, err := store.Put(ctx, "documents/b.pdf", strings.NewReader("x"), PutObjectOptions{})
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, "documents/b.pdf"))
		require.NoError(t, store.Delete(ctx, "documents/b.pdf"))

		_, _, err = store.Get(ctx, "documents/b.pdf")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("presign only works for stored keys", func(t *testing.T) {
		_, err := store.Put(ctx, "documents/c.pdf", strings.NewReader("x"), PutObjectOptions{})
		require.NoError(t, err)

		url, err := store.PresignGet(ctx, "documents/c.pdf", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "memory://documents/c.pdf", url)

		_, err = store.PresignGet(ctx, "documents/nope.pdf", time.Minute)
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})
}
