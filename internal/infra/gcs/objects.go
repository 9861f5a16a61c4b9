package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

// IsURI reports whether s names a Cloud Storage location.
func IsURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

// splitObjectURI splits gs://bucket/path/to/object into bucket and object path.
func splitObjectURI(uri string) (bucket, object string, err error) {
	if !IsURI(uri) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || strings.Trim(parts[1], "/") == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Download returns the bytes of the object at uri, e.g. an uploaded statement.
// It assumes Application Default Credentials are configured.
func Download(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := splitObjectURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Download: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Download: reading bytes: %w", err)
	}
	return data, nil
}

// Upload writes data to the object at uri, replacing it.
func Upload(ctx context.Context, uri, contentType string, data []byte) error {
	bucket, object, err := splitObjectURI(uri)
	if err != nil {
		return fmt.Errorf("Upload: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return nil
}

// FilenameFromURI returns the last path element of an object URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// Join appends name to a gs:// prefix URI.
func Join(prefixURI, name string) string {
	return strings.TrimRight(prefixURI, "/") + "/" + name
}
