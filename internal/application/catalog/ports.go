package catalog

import (
	"context"
	"errors"
)

// ErrImageTooLarge is returned by an ImageProcessor for images whose pixel
// count exceeds its budget
var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// ImageStorage stores image objects and resolves their public URLs
type ImageStorage interface {
	// Upload writes data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// DeleteObject removes the object stored under key
	DeleteObject(ctx context.Context, key string) error
	// URL returns the public URL of key
	URL(key string) string
}

// ImageProcessor decodes and normalises uploaded images
type ImageProcessor interface {
	// Process converts an image to an opaque JPEG no larger than the configured bounds
	Process(data []byte) ([]byte, error)
	// Inspect checks that data is a decodable image and returns its format name
	Inspect(data []byte) (string, error)
}

// FeaturedCache caches the featured product list
type FeaturedCache interface {
	// Get returns the cached list, ok is false on a miss
	Get(ctx context.Context) (products []ProductResponse, ok bool, err error)
	// Set stores the list
	Set(ctx context.Context, products []ProductResponse) error
	// Invalidate drops the cached list
	Invalidate(ctx context.Context) error
}
