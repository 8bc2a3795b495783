package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Cover sizes
const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"
)

const (
	qualityThumb  = 60
	qualityMedium = 75
	// max dimension
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ImageCache keeps optimized covers on disk, one JPEG per item and size
type ImageCache struct {
	dir string
}

// NewImageCache creates an ImageCache rooted at dir
func NewImageCache(dir string) *ImageCache {
	return &ImageCache{dir: dir}
}

// Path returns the cache file of an item cover
func (c *ImageCache) Path(itemID int, size string) string {
	return filepath.Join(c.dir, fmt.Sprintf("cover_%d_%s.jpg", itemID, size))
}

// Read returns the cached cover; ok is false on a cache miss
func (c *ImageCache) Read(itemID int, size string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(c.Path(itemID, size))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read from cache: %w", err)
	}
	return data, true, nil
}

// Write stores a cover, creating the cache directory when needed
func (c *ImageCache) Write(itemID int, size string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	path := c.Path(itemID, size)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// OptimizeImage decodes any supported image, shrinks it to fit the size bucket and
// re-encodes it as JPEG. Unknown sizes are treated as medium.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if size == SizeThumb {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
