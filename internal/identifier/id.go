// Package identifier implements the 128-bit ids that address uploads and
// shortened links. The textual form is unpadded URL-safe base64, always 22
// characters, suitable for use as a URL path segment.
package identifier

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	// RawLen is the number of raw bytes in an ID.
	RawLen = 16
	// EncodedLen is the length of the textual form.
	EncodedLen = 22
)

var (
	ErrMalformed     = errors.New("identifier: malformed text")
	ErrInvalidLength = errors.New("identifier: decoded length is not 16 bytes")
)

// ID is an opaque 128-bit identifier used as a primary key.
type ID [RawLen]byte

// New returns a fresh random ID.
func New() ID {
	return ID(uuid.New())
}

// FromBytes builds an ID from raw bytes, as read back from the database.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != RawLen {
		return id, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Parse decodes the 22-character textual form. It is case-sensitive and
// performs no normalization.
func Parse(s string) (ID, error) {
	var id ID
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(b) != RawLen {
		return id, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String encodes the ID as unpadded URL-safe base64.
func (id ID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Bytes returns a copy of the raw bytes, for binding as a query parameter.
func (id ID) Bytes() []byte {
	b := make([]byte, RawLen)
	copy(b, id[:])
	return b
}

// MarshalText implements encoding.TextMarshaler so IDs serialize to their
// textual form in JSON responses.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
