// Package blob is the binary storage port: the catalog hands it image bytes
// and stores only the URL it gets back.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists an uploaded file and returns a stable URL for it.
type Store interface {
	Store(ctx context.Context, fileName string, r io.Reader) (url string, size int64, err error)
}

// DiskStore writes uploads under a local directory and serves them from a
// base URL. It stands in for a hosted blob service in single-node deploys.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir, BaseURL: baseURL}, nil
}

func (s *DiskStore) Store(ctx context.Context, fileName string, r io.Reader) (string, int64, error) {
	// Randomized name keeps uploads from clobbering each other.
	name := uuid.NewString() + filepath.Ext(fileName)
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}

	return fmt.Sprintf("%s/%s", s.BaseURL, name), size, nil
}
