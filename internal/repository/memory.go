package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sxfs/internal/identifier"
)

// MemoryUploadStore is a mutex-guarded in-memory UploadStore. It backs tests
// and database-less development runs with the same contracts as the Postgres
// implementation.
type MemoryUploadStore struct {
	mu      sync.RWMutex
	uploads map[identifier.ID]memoryUpload
	order   []identifier.ID
}

type memoryUpload struct {
	meta    UploadMetadata
	content []byte
}

func NewMemoryUploadStore() *MemoryUploadStore {
	return &MemoryUploadStore{
		uploads: make(map[identifier.ID]memoryUpload),
	}
}

func (s *MemoryUploadStore) Save(_ context.Context, meta UploadMetadata, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[meta.ID]; exists {
		return fmt.Errorf("insert upload %s: %w", meta.ID, ErrConflict)
	}

	stored := make([]byte, len(content))
	copy(stored, content)

	s.uploads[meta.ID] = memoryUpload{meta: meta, content: stored}
	s.order = append(s.order, meta.ID)

	return nil
}

func (s *MemoryUploadStore) GetMetadata(_ context.Context, id identifier.ID) (UploadMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	upload, exists := s.uploads[id]
	if !exists {
		return UploadMetadata{}, fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return upload.meta, nil
}

func (s *MemoryUploadStore) GetContent(_ context.Context, id identifier.ID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	upload, exists := s.uploads[id]
	if !exists {
		return nil, fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}

	content := make([]byte, len(upload.content))
	copy(content, upload.content)
	return content, nil
}

func (s *MemoryUploadStore) ListAll(_ context.Context) ([]UploadMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var uploads []UploadMetadata
	for _, id := range s.order {
		if upload, exists := s.uploads[id]; exists {
			uploads = append(uploads, upload.meta)
		}
	}

	// Newest first; insertion order breaks ties.
	sort.SliceStable(uploads, func(i, j int) bool {
		return uploads[i].CreatedAt.After(uploads[j].CreatedAt)
	})

	return uploads, nil
}

func (s *MemoryUploadStore) Delete(_ context.Context, id identifier.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[id]; !exists {
		return nil
	}
	delete(s.uploads, id)
	s.order = removeID(s.order, id)
	return nil
}

// MemoryLinkStore is the in-memory LinkStore counterpart.
type MemoryLinkStore struct {
	mu    sync.RWMutex
	links map[identifier.ID]*LinkListing
	order []identifier.ID
}

func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{
		links: make(map[identifier.ID]*LinkListing),
	}
}

func (s *MemoryLinkStore) Save(_ context.Context, link Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.ID]; exists {
		return fmt.Errorf("insert link %s: %w", link.ID, ErrConflict)
	}

	s.links[link.ID] = &LinkListing{Link: link}
	s.order = append(s.order, link.ID)

	return nil
}

func (s *MemoryLinkStore) Get(_ context.Context, id identifier.ID) (LinkListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, exists := s.links[id]
	if !exists {
		return LinkListing{}, fmt.Errorf("link %s: %w", id, ErrNotFound)
	}
	return *listing, nil
}

func (s *MemoryLinkStore) ListAll(_ context.Context) ([]LinkListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []LinkListing
	for _, id := range s.order {
		if listing, exists := s.links[id]; exists {
			links = append(links, *listing)
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (s *MemoryLinkStore) Hit(_ context.Context, id identifier.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, exists := s.links[id]
	if !exists {
		return fmt.Errorf("link %s: %w", id, ErrNotFound)
	}
	listing.Hits++

	return nil
}

func (s *MemoryLinkStore) Delete(_ context.Context, id identifier.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[id]; !exists {
		return nil
	}
	delete(s.links, id)
	s.order = removeID(s.order, id)
	return nil
}

// removeID drops the first occurrence of id, keeping the slice from growing
// across save/delete cycles in long database-less runs.
func removeID(order []identifier.ID, id identifier.ID) []identifier.ID {
	for i, other := range order {
		if other == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
