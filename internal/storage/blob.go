// Package storage wraps the object store used for media uploads.
package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// BlobStore uploads media blobs and returns a publicly retrievable URI.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

// FirebaseBlobStore implements BlobStore on the project's Cloud Storage
// bucket obtained from the Firebase app.
type FirebaseBlobStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseBlobStore creates a blob store writing to the given bucket.
func NewFirebaseBlobStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseBlobStore {
	return &FirebaseBlobStore{bucket: bucket, bucketName: bucketName}
}

// Upload writes the blob and returns its public URL. The write is not
// transactional with any row insert that references the URL; a failed
// insert after a successful upload leaves an orphaned blob.
func (s *FirebaseBlobStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("uploading %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploading %s: %w", path, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, path), nil
}
