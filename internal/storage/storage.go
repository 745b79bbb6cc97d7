// Package storage puts files into the object-storage bucket.
//
// Two kinds of objects live there: static assets synced by the migrate
// job (CollectStatic) and note attachments uploaded through the API.
// The bucket itself is provisioned externally; this package only talks
// to it through the standard client library.
package storage

import (
	"context"
	"io"
)

// ObjectStore is the narrow surface the application needs from a
// bucket. The production implementation is GCS (gcs.go); tests use the
// in-memory one (memory.go).
type ObjectStore interface {
	// Put writes an object, replacing any previous content under key.
	Put(ctx context.Context, key, contentType string, r io.Reader) error

	// Delete removes an object. Deleting a missing object is not an
	// error; the caller only cares that it is gone.
	Delete(ctx context.Context, key string) error

	// URL reports the externally reachable URL of an object.
	URL(key string) string

	// Check verifies the bucket is reachable, for health reporting.
	Check(ctx context.Context) error

	// Close releases the underlying client.
	Close() error
}
