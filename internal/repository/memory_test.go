package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxfs/internal/identifier"
)

func TestUploadStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	content := []byte("screenshot bytes")
	meta := UploadMetadata{
		ID:        identifier.New(),
		Filename:  "shot.png",
		Size:      int64(len(content)),
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Save(ctx, meta, content))

	got, err := store.GetMetadata(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.Filename, got.Filename)
	assert.Equal(t, int64(len(content)), got.Size)

	data, err := store.GetContent(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestUploadStoreContentIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	content := []byte("original")
	meta := UploadMetadata{ID: identifier.New(), Filename: "f", Size: 8, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, meta, content))

	// Mutating the caller's slice must not change the stored copy.
	content[0] = 'X'

	data, err := store.GetContent(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), data)
}

func TestUploadStoreConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	meta := UploadMetadata{ID: identifier.New(), Filename: "a", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, meta, nil))

	err := store.Save(ctx, meta, nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUploadStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	_, err := store.GetMetadata(ctx, identifier.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetContent(ctx, identifier.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	meta := UploadMetadata{ID: identifier.New(), Filename: "gone.txt", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, meta, []byte("x")))
	require.NoError(t, store.Delete(ctx, meta.ID))

	_, err := store.GetMetadata(ctx, meta.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetContent(ctx, meta.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent id is not an error.
	assert.NoError(t, store.Delete(ctx, meta.ID))
	assert.NoError(t, store.Delete(ctx, identifier.New()))
}

func TestUploadStoreDeletePrunesOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	// Repeated save/delete cycles must not accumulate insertion-order
	// entries.
	for i := 0; i < 50; i++ {
		meta := UploadMetadata{ID: identifier.New(), Filename: "cycle", CreatedAt: time.Now()}
		require.NoError(t, store.Save(ctx, meta, []byte("x")))
		require.NoError(t, store.Delete(ctx, meta.ID))
	}

	assert.Empty(t, store.order)

	keep := UploadMetadata{ID: identifier.New(), Filename: "keep", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, keep, nil))
	assert.Len(t, store.order, 1)
}

func TestUploadStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUploadStore()

	base := time.Now()
	oldest := UploadMetadata{ID: identifier.New(), Filename: "oldest", CreatedAt: base.Add(-2 * time.Hour)}
	middle := UploadMetadata{ID: identifier.New(), Filename: "middle", CreatedAt: base.Add(-time.Hour)}
	newest := UploadMetadata{ID: identifier.New(), Filename: "newest", CreatedAt: base}

	require.NoError(t, store.Save(ctx, middle, nil))
	require.NoError(t, store.Save(ctx, newest, nil))
	require.NoError(t, store.Save(ctx, oldest, nil))

	uploads, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, uploads, 3)
	assert.Equal(t, "newest", uploads[0].Filename)
	assert.Equal(t, "middle", uploads[1].Filename)
	assert.Equal(t, "oldest", uploads[2].Filename)
}

func TestLinkStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLinkStore()

	link := Link{ID: identifier.New(), URI: "https://example.com/long", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, link))

	listing, err := store.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.URI, listing.URI)
	assert.Equal(t, int64(0), listing.Hits)
}

func TestLinkStoreHit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLinkStore()

	link := Link{ID: identifier.New(), URI: "https://example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, link))

	require.NoError(t, store.Hit(ctx, link.ID))
	require.NoError(t, store.Hit(ctx, link.ID))

	listing, err := store.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), listing.Hits)

	assert.ErrorIs(t, store.Hit(ctx, identifier.New()), ErrNotFound)
}

func TestLinkStoreHitConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLinkStore()

	link := Link{ID: identifier.New(), URI: "https://example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, link))

	const followers = 100

	var wg sync.WaitGroup
	wg.Add(followers)
	for i := 0; i < followers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Hit(ctx, link.ID))
		}()
	}
	wg.Wait()

	listing, err := store.Get(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(followers), listing.Hits)
}

func TestLinkStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLinkStore()

	link := Link{ID: identifier.New(), URI: "https://example.com", CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, link))
	require.NoError(t, store.Delete(ctx, link.ID))

	_, err := store.Get(ctx, link.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, link.ID))
	assert.Empty(t, store.order)
}

func TestLinkStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLinkStore()

	base := time.Now()
	first := Link{ID: identifier.New(), URI: "https://a.example", CreatedAt: base.Add(-time.Minute)}
	second := Link{ID: identifier.New(), URI: "https://b.example", CreatedAt: base}

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Hit(ctx, first.ID))

	links, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "https://b.example", links[0].URI)
	assert.Equal(t, "https://a.example", links[1].URI)
	assert.Equal(t, int64(1), links[1].Hits)
}
