package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultGridColor is drawn when GridOptions.Color is empty or invalid.
	DefaultGridColor = "#FF00FF"

	// MaxGridSide bounds the width and height of a zoomed overlay.
	MaxGridSide = 4096
)

// markColor outlines the pixel passed in GridOptions.Mark.
var markColor = color.NRGBA{R: 255, G: 255, B: 0, A: 255}

// GridOptions controls GridOverlay.
type GridOptions struct {
	// Stride is the block size the grid is drawn at, in source pixels.
	Stride int

	// Zoom magnifies the frame by nearest neighbour before drawing so that
	// grid lines fall between source pixels. Values below 1 mean 1.
	Zoom int

	// Color is "#RRGGBB" or "#RRGGBBAA".
	Color string

	// Mark, when set, is a source pixel to outline, typically a Disproof.
	Mark *image.Point
}

// GridOverlayResult contains the image with grid overlay
type GridOverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Stride      int    `json:"stride"`
	Zoom        int    `json:"zoom"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// GridOverlay draws the block grid a stride implies over a frame, so a
// detection can be checked by eye. The result is a base64 PNG.
func GridOverlay(img image.Image, opts GridOptions) (*GridOverlayResult, error) {
	if opts.Stride < 1 {
		return nil, fmt.Errorf("invalid stride %d", opts.Stride)
	}
	zoom := max(opts.Zoom, 1)

	bounds := img.Bounds()
	width, height := bounds.Dx()*zoom, bounds.Dy()*zoom
	if width > MaxGridSide || height > MaxGridSide {
		return nil, fmt.Errorf("zoomed size %dx%d exceeds %d", width, height, MaxGridSide)
	}

	var result *image.NRGBA
	if zoom == 1 {
		result = imaging.Clone(img)
	} else {
		result = imaging.Resize(img, width, height, imaging.NearestNeighbor)
	}

	gridColor, err := parseHexColor(opts.Color)
	if err != nil {
		gridColor, _ = parseHexColor(DefaultGridColor)
	}

	step := opts.Stride * zoom
	for x := step; x < width; x += step {
		for y := 0; y < height; y++ {
			result.SetNRGBA(x, y, gridColor)
		}
	}
	for y := step; y < height; y += step {
		for x := 0; x < width; x++ {
			result.SetNRGBA(x, y, gridColor)
		}
	}

	if opts.Mark != nil {
		mark := opts.Mark.Sub(bounds.Min).Mul(zoom)
		outline(result, image.Rect(mark.X, mark.Y, mark.X+zoom, mark.Y+zoom), markColor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &GridOverlayResult{
		Width:       width,
		Height:      height,
		Stride:      opts.Stride,
		Zoom:        zoom,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    MimeType(FormatPNG),
	}, nil
}

// outline draws the edge pixels of r, clipped to img.
func outline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	alpha := uint64(255)
	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = a
		hex = hex[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}, nil
}
