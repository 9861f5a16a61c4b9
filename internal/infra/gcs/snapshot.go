// Package gcs stores ledger snapshots as objects in a Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/ledger"
)

const uploadTimeout = 2 * time.Minute

// SnapshotStore implements ledger.SnapshotStore with one object per slot at
// gs://<bucket>/<prefix>/<key>.json.
type SnapshotStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewSnapshotStore creates a storage client using Application Default Credentials.
func NewSnapshotStore(ctx context.Context, bucket, prefix string) (*SnapshotStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewSnapshotStore: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewSnapshotStore: create storage client: %w", err)
	}
	return &SnapshotStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// Close closes the storage client.
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

// ObjectName returns the object path a key is stored under.
func ObjectName(prefix, key string) string {
	return path.Join(prefix, key+".json")
}

// URI returns the gs:// URI of key.
func (s *SnapshotStore) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, ObjectName(s.prefix, key))
}

// Load downloads the object for key.
func (s *SnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(ObjectName(s.prefix, key)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ledger.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("SnapshotStore.Load: open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("SnapshotStore.Load: read GCS object: %w", err)
	}
	return data, nil
}

// Save overwrites the object for key.
func (s *SnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(ObjectName(s.prefix, key)).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("SnapshotStore.Save: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SnapshotStore.Save: finalize upload: %w", err)
	}
	return nil
}

// ParseURI splits gs://bucket/prefix into its parts.
func ParseURI(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no bucket): %s", uri)
	}
	if len(parts) == 2 {
		prefix = strings.Trim(parts[1], "/")
	}
	return parts[0], prefix, nil
}

var _ ledger.SnapshotStore = (*SnapshotStore)(nil)
