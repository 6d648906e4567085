// Package blobstore provides file storage for patient documents. It defines
// the BlobStore interface and an in-memory implementation suitable for
// testing and development; deployments plug in an object-storage backend.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize is the maximum allowed upload size in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// AllowedContentTypes lists the MIME types accepted for patient documents.
var AllowedContentTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// BlobMetadata describes a stored blob.
type BlobMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlobStore defines the contract for blob storage backends.
type BlobStore interface {
	Upload(ctx context.Context, path string, contentType string, content io.Reader) (*BlobMetadata, error)
	Download(ctx context.Context, path string) (io.ReadCloser, *BlobMetadata, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

type storedBlob struct {
	metadata BlobMetadata
	content  []byte
}

// InMemoryBlobStore is a thread-safe, in-memory BlobStore for testing/dev.
type InMemoryBlobStore struct {
	mu      sync.RWMutex
	blobs   map[string]*storedBlob
	baseURL string
}

// NewInMemoryBlobStore returns a ready-to-use InMemoryBlobStore. Public URLs
// are formed by joining baseURL with the blob path.
func NewInMemoryBlobStore(baseURL string) *InMemoryBlobStore {
	return &InMemoryBlobStore{
		blobs:   make(map[string]*storedBlob),
		baseURL: baseURL,
	}
}

// Upload validates the content type and size, computes a SHA-256 hash, and
// stores the blob under the given path.
func (s *InMemoryBlobStore) Upload(_ context.Context, path string, contentType string, content io.Reader) (*BlobMetadata, error) {
	if path == "" {
		return nil, ErrMissingFileName
	}
	if !AllowedContentTypes[contentType] {
		return nil, ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	hash := sha256.Sum256(data)

	meta := BlobMetadata{
		ID:          uuid.New().String(),
		FileName:    path,
		ContentType: contentType,
		Size:        int64(len(data)),
		Path:        path,
		URL:         s.PublicURL(path),
		Hash:        fmt.Sprintf("%x", hash),
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.blobs[path] = &storedBlob{metadata: meta, content: data}
	s.mu.Unlock()

	return &meta, nil
}

// Download returns the blob content and metadata for the given path.
func (s *InMemoryBlobStore) Download(_ context.Context, path string) (io.ReadCloser, *BlobMetadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[path]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := blob.metadata
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

// Delete removes the blob at the given path. Deleting a missing blob is not
// an error: compensation paths may race an earlier cleanup.
func (s *InMemoryBlobStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	delete(s.blobs, path)
	s.mu.Unlock()
	return nil
}

// PublicURL returns the retrievable URL for a stored path.
func (s *InMemoryBlobStore) PublicURL(path string) string {
	return s.baseURL + "/storage/" + path
}

// Len reports the number of stored blobs.
func (s *InMemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
