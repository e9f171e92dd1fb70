package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
)

// DefaultMediaPrefix is the URL path the HTTP server serves local objects under
const DefaultMediaPrefix = "/media"

var _ catalogapp.ImageStorage = (*LocalObjectStorage)(nil)

// LocalObjectStorage stores images on the local filesystem
type LocalObjectStorage struct {
	root    string
	baseURL string
}

// NewLocalObjectStorage creates a storage rooted at root. baseURL prefixes
// object URLs and defaults to DefaultMediaPrefix.
func NewLocalObjectStorage(root, baseURL string) (*LocalObjectStorage, error) {
	if root == "" {
		return nil, errors.New("storage local path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultMediaPrefix
	}
	return &LocalObjectStorage{root: root, baseURL: baseURL}, nil
}

// Root returns the directory objects are stored in
func (s *LocalObjectStorage) Root() string {
	return s.root
}

// Upload writes data under key
func (s *LocalObjectStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// DeleteObject removes the object stored under key. Missing objects are not an error.
func (s *LocalObjectStorage) DeleteObject(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL returns the public URL of key
func (s *LocalObjectStorage) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// path maps a key to a file below root, rejecting keys that escape it
func (s *LocalObjectStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	cleaned := filepath.Clean("/" + key)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
