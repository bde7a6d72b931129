package imaging

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit, non-premultiplied components.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// ColorHex formats c as "#RRGGBB", or "#RRGGBBAA" when c is not fully opaque.
func ColorHex(c color.NRGBA) string {
	hex := strings.ToUpper(toColorful(c).Hex())
	if c.A == 0xff {
		return hex
	}
	return fmt.Sprintf("%s%02X", hex, c.A)
}

// DescribeColor converts an 8-bit non-premultiplied color to a ColorResult.
//
// The HSL values are computed by go-colorful on the colour channels alone;
// alpha only appears in RGBA.
func DescribeColor(c color.NRGBA) ColorResult {
	h, s, l := toColorful(c).Hsl()
	return ColorResult{
		Hex:  strings.ToUpper(toColorful(c).Hex()),
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based with origin at top-left of the image bounds.
// The color is converted to non-premultiplied 8-bit RGBA before it is
// described, so semi-transparent pixels keep their colour channels.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	result := DescribeColor(c)
	return &result, nil
}

// ColorFrequency represents an exact color and how many pixels carry it.
type ColorFrequency struct {
	Hex    string    `json:"hex"`    // Hex color, with alpha when not opaque
	Pixels int       `json:"pixels"` // Number of pixels with this color
	RGBA   RGBAColor `json:"rgba"`   // RGBA components
}

// PaletteResult lists the distinct colors of an image, most common first.
type PaletteResult struct {
	// Distinct is the total number of distinct colors, which may exceed
	// len(Colors) when a limit was applied.
	Distinct int              `json:"distinct"`
	Colors   []ColorFrequency `json:"colors"`
}

// Palette counts the exact colors of img.
//
// Unlike a quantized dominant-colour histogram every distinct 8-bit NRGBA
// value is its own entry, which is what pixel art is made of. Colors with
// equal counts are ordered by hex value. limit <= 0 returns every colour.
func Palette(img image.Image, limit int) *PaletteResult {
	bounds := img.Bounds()
	counts := make(map[color.NRGBA]int)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			counts[c]++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:    ColorHex(c),
			Pixels: n,
			RGBA:   RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Pixels != colors[j].Pixels {
			return colors[i].Pixels > colors[j].Pixels
		}
		return colors[i].Hex < colors[j].Hex
	})

	result := &PaletteResult{Distinct: len(colors), Colors: colors}
	if limit > 0 && len(colors) > limit {
		result.Colors = colors[:limit]
	}
	return result
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}
