// Package imaging normalises uploaded product images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder

	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultMaxDimension = 800
	DefaultQuality      = 85
	// DefaultMaxPixels bounds the decoded size to about 100MB of RGBA
	DefaultMaxPixels = 25_000_000
)

// ErrEmptyImage is returned when no image data was supplied
var ErrEmptyImage = errors.New("image data is empty")

var _ catalogapp.ImageProcessor = (*Processor)(nil)

// Processor decodes JPEG, PNG, GIF and WebP images, flattens them onto white,
// fits them within MaxDimension and re-encodes them as JPEG
type Processor struct {
	maxDimension int
	quality      int
	maxPixels    int64
}

// Option configures a Processor
type Option func(*Processor)

// WithMaxDimension sets the largest width or height of processed images
func WithMaxDimension(px int) Option {
	return func(p *Processor) {
		if px > 0 {
			p.maxDimension = px
		}
	}
}

// WithQuality sets the JPEG quality (1-100)
func WithQuality(quality int) Option {
	return func(p *Processor) {
		if quality >= 1 && quality <= 100 {
			p.quality = quality
		}
	}
}

// WithMaxPixels sets the largest width*height accepted for decoding
func WithMaxPixels(pixels int64) Option {
	return func(p *Processor) {
		if pixels > 0 {
			p.maxPixels = pixels
		}
	}
}

// NewProcessor creates a Processor with the default 800px bound and quality 85
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		maxDimension: DefaultMaxDimension,
		quality:      DefaultQuality,
		maxPixels:    DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process converts data to an opaque JPEG no larger than the configured bounds.
// Images already within bounds keep their size.
func (p *Processor) Process(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	if _, err := p.inspect(data); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := p.resize(flatten(src))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Inspect checks that data is a decodable image and returns its format name
// (jpeg, png, gif or webp)
func (p *Processor) Inspect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	return p.inspect(data)
}

// inspect reads only the image header, so oversized images are refused
// before their pixels are allocated
func (p *Processor) inspect(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return "", fmt.Errorf("%w: %dx%d", catalogapp.ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return format, nil
}

// flatten draws src over an opaque white canvas with origin (0,0)
func flatten(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

func (p *Processor) resize(img *image.RGBA) image.Image {
	width, height := FitWithin(img.Bounds().Dx(), img.Bounds().Dy(), p.maxDimension)
	if width == img.Bounds().Dx() && height == img.Bounds().Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// FitWithin returns the size of a width x height image scaled down, preserving
// aspect ratio, so neither side exceeds limit. Sizes within bounds are unchanged.
func FitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}

	if width >= height {
		scaled := height * limit / width
		if scaled < 1 {
			scaled = 1
		}
		return limit, scaled
	}

	scaled := width * limit / height
	if scaled < 1 {
		scaled = 1
	}
	return scaled, limit
}
