package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore persists attachments under opaque keys. Nothing outside this
// package interprets a key.
type BlobStore interface {
	Save(ctx context.Context, fileName string, content io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// LocalStore keeps blobs on the local filesystem, one file per key.
type LocalStore struct {
	root string
}

// NewLocalStore creates the backing directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes the content under a fresh key derived from the file name.
func (s *LocalStore) Save(_ context.Context, fileName string, content io.Reader) (string, error) {
	key := uuid.NewString() + "_" + filepath.Base(fileName)
	file, err := os.Create(filepath.Join(s.root, key))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return key, nil
}

// Open returns a reader for the stored blob.
func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, filepath.Base(key)))
}

// Delete removes the blob; deleting a missing key is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// OriginalFileName strips the key prefix added by Save.
func OriginalFileName(key string) string {
	if idx := strings.Index(key, "_"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
