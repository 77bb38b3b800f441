package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/docker/go-units"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrFileTooLarge is returned when an input file exceeds the configured
// maximum size.
var ErrFileTooLarge = errors.New("image file too large")

// ImageCache provides thread-safe caching of decoded images to avoid redundant
// disk reads.
//
// Images are stored keyed by their file path, already normalized to opaque
// 8-bit RGB (see ToRGB) and with EXIF orientation applied. Once an image is
// loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O. Callers must treat returned images as read-only.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// For long-running processes handling many images (the MCP server), consider
// periodic cleanup to prevent unbounded memory growth.
type ImageCache struct {
	mu       sync.RWMutex
	images   map[string]*image.NRGBA
	maxBytes int64
}

// NewImageCache creates and initializes a new empty image cache.
//
// maxBytes limits the size of files the cache will read; zero or a negative
// value disables the limit.
func NewImageCache(maxBytes int64) *ImageCache {
	return &ImageCache{
		images:   make(map[string]*image.NRGBA),
		maxBytes: maxBytes,
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP (decode only).
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns ErrFileTooLarge if the file exceeds the cache size limit
//   - Returns error if the file is not a decodable image
func (c *ImageCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path, c.maxBytes)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*image.NRGBA)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Open decodes the image at path, applies its EXIF orientation and
// normalizes it to opaque RGB. maxBytes <= 0 disables the size check.
func Open(path string, maxBytes int64) (*image.NRGBA, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	if maxBytes > 0 && stat.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %s, limit %s", ErrFileTooLarge, path,
			units.HumanSize(float64(stat.Size())), units.HumanSize(float64(maxBytes)))
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ToRGB(img), nil
}

// ToRGB returns an independent copy of img as *image.NRGBA with every pixel
// fully opaque, which is how this package represents 3-channel RGB.
//
// Alpha is discarded rather than composited: color channels keep their
// non-premultiplied values.
func ToRGB(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format inferred from the file extension ("JPEG", "PNG",
	// ...) or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// FileSize is FileSizeBytes in human-readable form, e.g. "1.2MB".
	FileSize string `json:"file_size"`
}

// LoadImageInfo loads an image through the cache and returns its file metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Format:        FormatName(path),
		FileSizeBytes: stat.Size(),
		FileSize:      units.HumanSize(float64(stat.Size())),
	}, nil
}

// FormatName returns the image format implied by path's extension, or
// "unknown".
func FormatName(path string) string {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "unknown"
	}
	return f.String()
}
