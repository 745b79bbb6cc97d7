package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStore is the production ObjectStore, backed by a cloud storage
// bucket. The service account running the workload needs object
// read/write on the bucket; nothing here manages permissions.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCS opens a client against the named bucket. Credentials come from
// the environment (the platform's service identity when deployed,
// application-default credentials locally).
func NewGCS(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		// Abandon the write; Close would otherwise commit a partial object.
		_ = w.Close()
		return fmt.Errorf("writing object %q: %w", key, err)
	}

	// The upload is not durable until Close returns nil.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing object %q: %w", key, err)
	}

	return nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("deleting object %q: %w", key, err)
	}
	return nil
}

// URL returns the bucket's public object URL. Attachment objects are
// served directly by the storage service, not proxied through the app.
func (s *GCSStore) URL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

// Check fetches bucket attributes as a cheap reachability probe.
func (s *GCSStore) Check(ctx context.Context) error {
	_, err := s.client.Bucket(s.bucket).Attrs(ctx)
	return err
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
