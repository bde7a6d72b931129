package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"

	_ "github.com/chai2010/webp" // Register WebP format decoder
	_ "golang.org/x/image/bmp"   // Register BMP format decoder
	_ "golang.org/x/image/tiff"  // Register TIFF format decoder
)

// Frame is one full-canvas image of a Sequence.
type Frame struct {
	// Image holds the complete frame, already composited for animations.
	Image image.Image

	// Delay is the time the frame is shown, in hundredths of a second.
	// Zero for still images.
	Delay int

	// Palette is the colour table the frame was stored with, if any.
	// Encoders that need a palette fall back to it when the frame has
	// more colours than a palette can hold.
	Palette color.Palette
}

// Sequence is a decoded still image or animation.
//
// Every frame covers the whole Width x Height canvas, so frames can be
// analysed and resized independently of each other.
type Sequence struct {
	// Format is the registered decoder name: "png", "jpeg", "gif", "bmp",
	// "tiff" or "webp".
	Format string

	Width  int
	Height int

	Frames []Frame

	// LoopCount follows image/gif: 0 loops forever, -1 plays once.
	LoopCount int
}

// Animated reports whether the sequence has more than one frame.
func (s *Sequence) Animated() bool {
	return len(s.Frames) > 1
}

// Images returns the frame images in order.
func (s *Sequence) Images() []image.Image {
	images := make([]image.Image, len(s.Frames))
	for i, f := range s.Frames {
		images[i] = f.Image
	}
	return images
}

// First returns a still sequence holding only the first frame.
func (s *Sequence) First() *Sequence {
	first := *s
	if len(s.Frames) > 1 {
		first.Frames = s.Frames[:1]
	}
	return &first
}

// ErrTooManyPixels is returned by DecodeLimit for images over its limit.
var ErrTooManyPixels = errors.New("image exceeds the pixel limit")

// Decode reads a still image or an animation from r.
//
// The format is sniffed from the content. Animated GIFs are decoded into
// one composited frame per image; every other format yields a single frame
// (for APNG and animated WebP that is the first frame).
func Decode(r io.Reader) (*Sequence, error) {
	return DecodeLimit(r, 0)
}

// DecodeLimit is Decode for untrusted input. The canvas size from the image
// header is checked against maxPixels before the pixels are decoded; for a
// GIF the limit also covers width x height x frames, checked before frames
// are composited. A maxPixels of zero or less disables the check.
func DecodeLimit(r io.Reader, maxPixels int64) (*Sequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, 1, maxPixels); err != nil {
		return nil, err
	}

	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode gif: %w", err)
		}
		if err := checkPixels(cfg.Width, cfg.Height, len(g.Image), maxPixels); err != nil {
			return nil, err
		}
		return sequenceFromGIF(g), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &Sequence{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Frames: []Frame{{Image: img}},
	}, nil
}

func checkPixels(width, height, frames int, maxPixels int64) error {
	if maxPixels <= 0 {
		return nil
	}
	if n := int64(width) * int64(height) * int64(frames); n > maxPixels {
		return fmt.Errorf("%w: %dx%d x %d frames is over %d pixels", ErrTooManyPixels, width, height, frames, maxPixels)
	}
	return nil
}

// ImageCache provides thread-safe caching of decoded images to avoid redundant disk reads.
//
// The cache stores decoded sequences keyed by their file path. Once a file
// is loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O. Cached sequences are shared and must not be modified.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Animations are stored as full-canvas frames and can be large; long-running
// servers should evict paths they no longer need.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Sequence
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*Sequence),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not cached.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the content is not a supported image format
func (c *ImageCache) Load(path string) (*Sequence, error) {
	c.mu.RLock()
	if seq, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return seq, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	seq, err := Decode(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = seq
	c.mu.Unlock()

	return seq, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*Sequence)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing. Callers that
// overwrite a file in place should evict it so the next Load sees the new
// content.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the canvas width in pixels.
	Width int `json:"width"`

	// Height is the canvas height in pixels.
	Height int `json:"height"`

	// Format is the format sniffed from the file content.
	Format string `json:"format"`

	// Frames is the number of frames; 1 for still images.
	Frames int `json:"frames"`

	// Animated is true when Frames is greater than one.
	Animated bool `json:"animated"`

	// HasAlpha indicates whether the first frame has non-opaque pixels.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// The image is loaded into the cache if it is not already present.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	seq, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	if len(seq.Frames) > 0 {
		hasAlpha = hasTransparency(seq.Frames[0].Image)
	}

	return &ImageInfo{
		Width:         seq.Width,
		Height:        seq.Height,
		Format:        seq.Format,
		Frames:        len(seq.Frames),
		Animated:      seq.Animated(),
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// hasTransparency reports whether any pixel of img is not fully opaque.
func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
