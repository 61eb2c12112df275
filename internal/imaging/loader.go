package imaging

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Fetch defaults for http(s) sources.
const (
	DefaultFetchTimeout  = 30 * time.Second
	DefaultMaxFetchBytes = 32 << 20
)

// ImageCache provides thread-safe caching of decoded source images.
//
// A source reference is one of:
//   - a file path, absolute or relative
//   - a "data:<mime>;base64,<payload>" URI
//   - an http:// or https:// URL, typically the output of the image
//     generation provider
//
// Decoded images are stored as *image.NRGBA keyed by the exact reference
// string. Callers must treat cached images as read-only; every raster
// operation copies its input before modifying it.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). Data URIs are usually large, so callers that load them once
// should Evict afterwards.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*image.NRGBA

	client   *http.Client
	maxBytes int64
}

// CacheOption configures an ImageCache.
type CacheOption func(*ImageCache)

// WithFetchTimeout sets the total timeout of a URL fetch.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *ImageCache) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithMaxFetchBytes caps the size of a fetched body.
func WithMaxFetchBytes(n int64) CacheOption {
	return func(c *ImageCache) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the client used for URL fetches.
func WithHTTPClient(client *http.Client) CacheOption {
	return func(c *ImageCache) {
		if client != nil {
			c.client = client
		}
	}
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache(opts ...CacheOption) *ImageCache {
	c := &ImageCache{
		images:   make(map[string]*image.NRGBA),
		client:   &http.Client{Timeout: DefaultFetchTimeout},
		maxBytes: DefaultMaxFetchBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load retrieves an image from the cache or reads and decodes it.
//
// Parameters:
//   - ctx: Bounds the URL fetch. Ignored for paths and data URIs.
//   - ref: File path, data URI or http(s) URL.
//
// Returns:
//   - *image.NRGBA: The decoded image, shared with the cache.
//   - error: Non-nil if the source cannot be read; ErrDecode if it is not an
//     image.
func (c *ImageCache) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[ref]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := c.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[ref] = img
	c.mu.Unlock()

	return img, nil
}

// ReadSource returns the raw bytes behind ref without decoding or caching.
func (c *ImageCache) ReadSource(ctx context.Context, ref string) ([]byte, error) {
	return c.read(ctx, ref)
}

func (c *ImageCache) read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case IsDataURI(ref):
		return dataURIPayload(ref)
	case isURL(ref):
		return c.fetch(ctx, ref)
	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open image")
		}
		return data, nil
	}
}

func (c *ImageCache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build fetch request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image body")
	}
	if int64(len(data)) > c.maxBytes {
		return nil, errors.Errorf("image body exceeds %d bytes", c.maxBytes)
	}
	return data, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*image.NRGBA)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its reference.
//
// If the reference is not in the cache, this method does nothing.
func (c *ImageCache) Evict(ref string) {
	c.mu.Lock()
	delete(c.images, ref)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about an image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "webp", "bmp" or "unknown", derived
	// from the reference's extension or data URI mime type.
	Format string `json:"format"`

	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// TransparentPixels counts pixels with alpha 0.
	TransparentPixels int `json:"transparent_pixels"`
}

// Describe returns metadata for a decoded image loaded from ref.
//
// Unlike a file-based check, HasAlpha inspects the pixels: a decoded NRGBA
// always has an alpha channel, but only translucent pixels matter to the
// matting and trimming operations.
func Describe(img *image.NRGBA, ref string) *ImageInfo {
	b := img.Bounds()
	transparent, translucent := 0, false
	for i := 3; i < len(img.Pix); i += 4 {
		a := img.Pix[i]
		if a == 0 {
			transparent++
		}
		if a != 255 {
			translucent = true
		}
	}
	return &ImageInfo{
		Width:             b.Dx(),
		Height:            b.Dy(),
		Format:            formatOf(ref),
		HasAlpha:          translucent,
		TransparentPixels: transparent,
	}
}

func formatOf(ref string) string {
	if IsDataURI(ref) {
		header := ref
		if i := strings.IndexByte(ref, ';'); i > 0 {
			header = ref[:i]
		}
		if sub := strings.TrimPrefix(header, "data:image/"); sub != header {
			return normalizeFormat(sub)
		}
		return "unknown"
	}
	if isURL(ref) {
		if i := strings.IndexAny(ref, "?#"); i >= 0 {
			ref = ref[:i]
		}
	}
	return normalizeFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(ref)), "."))
}

func normalizeFormat(s string) string {
	switch strings.ToLower(s) {
	case "png":
		return "png"
	case "jpg", "jpeg":
		return "jpeg"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	case "bmp":
		return "bmp"
	default:
		return "unknown"
	}
}

// String implements fmt.Stringer for log fields.
func (i *ImageInfo) String() string {
	return fmt.Sprintf("%dx%d %s", i.Width, i.Height, i.Format)
}
