package stride

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// PixelSource is random access to the pixels of one frame.
//
// *image.NRGBA satisfies it directly. Coordinates follow image.Image: valid
// points lie inside Bounds(), which need not start at the origin.
type PixelSource interface {
	Bounds() image.Rectangle
	NRGBAAt(x, y int) color.NRGBA
}

// Source adapts img to a PixelSource.
//
// Images that already expose NRGBAAt are used as-is. Anything else is copied
// into a non-premultiplied *image.NRGBA, so that transparent pixels keep
// their RGB channels and compare the way they were stored.
func Source(img image.Image) PixelSource {
	if src, ok := img.(PixelSource); ok {
		return src
	}
	return imaging.Clone(img)
}

// Sources adapts every image in frames.
func Sources(frames []image.Image) []PixelSource {
	out := make([]PixelSource, len(frames))
	for i, f := range frames {
		out[i] = Source(f)
	}
	return out
}
