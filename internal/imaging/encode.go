package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"sort"

	"github.com/chai2010/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encode writes seq to w in the given format.
//
// GIF output keeps every frame with its delay and loop count. Every other
// format holds a single image, so only the first frame is written; callers
// that care should check SupportsAnimation first.
func Encode(w io.Writer, seq *Sequence, format string) error {
	if len(seq.Frames) == 0 {
		return fmt.Errorf("failed to encode image: no frames")
	}

	img := seq.Frames[0].Image
	var err error
	switch NormalizeFormat(format) {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Lossless: true})
	case FormatGIF:
		err = encodeGIF(w, seq)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", NormalizeFormat(format), err)
	}
	return nil
}

// EncodeFile writes seq to path, replacing any existing file.
func EncodeFile(path string, seq *Sequence, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(f, seq, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func encodeGIF(w io.Writer, seq *Sequence) error {
	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(seq.Frames)),
		Delay:     make([]int, len(seq.Frames)),
		Disposal:  make([]byte, len(seq.Frames)),
		LoopCount: seq.LoopCount,
	}
	for i, f := range seq.Frames {
		g.Image[i] = toPaletted(f.Image, f.Palette)
		g.Delay[i] = f.Delay
		// Frames are full composites, so the previous one must not show through.
		g.Disposal[i] = gif.DisposalBackground
	}
	return gif.EncodeAll(w, g)
}

// toPaletted converts img for GIF output.
//
// Images with at most 256 distinct colours get an exact palette, with every
// fully transparent pixel mapped to one transparent entry. Larger images
// are mapped onto fallback, or onto the Plan 9 palette when fallback is empty.
func toPaletted(img image.Image, fallback color.Palette) *image.Paletted {
	b := img.Bounds()
	if p, ok := img.(*image.Paletted); ok && b.Min == (image.Point{}) && len(p.Palette) <= 256 {
		return p
	}

	pal := exactPalette(img, 256)
	if pal == nil {
		pal = fallback
	}
	if len(pal) == 0 || len(pal) > 256 {
		pal = palette.Plan9
	}

	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// exactPalette returns the distinct colours of img, or nil when there are
// more than limit of them.
func exactPalette(img image.Image, limit int) color.Palette {
	b := img.Bounds()
	seen := make(map[color.NRGBA]struct{})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				c = color.NRGBA{}
			}
			if _, ok := seen[c]; ok {
				continue
			}
			if len(seen) == limit {
				return nil
			}
			seen[c] = struct{}{}
		}
	}

	colors := make([]color.NRGBA, 0, len(seen))
	for c := range seen {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		a, b := colors[i], colors[j]
		if a.A != b.A {
			return a.A < b.A
		}
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})

	pal := make(color.Palette, len(colors))
	for i, c := range colors {
		pal[i] = c
	}
	return pal
}
