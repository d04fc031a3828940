// Package repository provides durable storage for uploads and shortened
// links, keyed by 128-bit identifiers. The production implementation is
// backed by PostgreSQL; an in-memory implementation backs tests and
// database-less development runs.
package repository

import (
	"context"
	"errors"
	"time"

	"sxfs/internal/identifier"
)

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("repository: record not found")
	// ErrConflict is returned on an id collision at insert. With a 128-bit
	// random id space this indicates a broken generator, not bad luck.
	ErrConflict = errors.New("repository: id already exists")
)

// UploadMetadata describes a stored upload without its content bytes.
type UploadMetadata struct {
	ID        identifier.ID `json:"id"`
	Filename  string        `json:"filename"`
	Size      int64         `json:"size"`
	CreatedAt time.Time     `json:"created_at"`
}

// Link is a shortened link record.
type Link struct {
	ID        identifier.ID `json:"id"`
	URI       string        `json:"uri"`
	CreatedAt time.Time     `json:"created_at"`
}

// LinkListing pairs a link with its current hit count.
type LinkListing struct {
	Link
	Hits int64 `json:"hits"`
}

// UploadStore persists uploaded assets. Metadata and content are written
// together in a single atomic operation.
type UploadStore interface {
	Save(ctx context.Context, meta UploadMetadata, content []byte) error
	GetMetadata(ctx context.Context, id identifier.ID) (UploadMetadata, error)
	GetContent(ctx context.Context, id identifier.ID) ([]byte, error)
	ListAll(ctx context.Context) ([]UploadMetadata, error)
	// Delete is idempotent: removing an absent id is not an error. Callers
	// that need to know whether the row existed check GetMetadata first.
	Delete(ctx context.Context, id identifier.ID) error
}

// LinkStore persists shortened links.
type LinkStore interface {
	Save(ctx context.Context, link Link) error
	Get(ctx context.Context, id identifier.ID) (LinkListing, error)
	ListAll(ctx context.Context) ([]LinkListing, error)
	// Hit increments the hit counter by exactly one. The increment is a
	// single atomic update; concurrent callers never lose counts.
	Hit(ctx context.Context, id identifier.ID) error
	Delete(ctx context.Context, id identifier.ID) error
}
