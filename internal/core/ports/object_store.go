package ports

import "context"

// ObjectStore persists raw image bytes outside the document store.
// Put returns the public URL for the stored object.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}
