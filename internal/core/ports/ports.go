package ports

import (
	"context"

	"github.com/kamal-hamza/pxo/internal/core/domain"
)

// SnapshotStore is the durable keyed store behind the persistence adapter.
// Values are opaque serialized snapshots; one key per page identity.
type SnapshotStore interface {
	// Put atomically replaces the value stored under key
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the stored value or domain.ErrSnapshotNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Keys lists every stored page key
	Keys(ctx context.Context) ([]string, error)
}

// ImageDecoder resolves the natural pixel size of an image reference
type ImageDecoder interface {
	// DecodeSize returns the intrinsic size or domain.ErrImageDecode
	DecodeSize(ctx context.Context, imageRef string) (domain.Size, error)
}

// ImageLoader turns a user-chosen file into an image reference
type ImageLoader interface {
	// Load validates the file and returns its data URI and display name
	Load(ctx context.Context, path string) (imageRef string, displayName string, err error)
}
