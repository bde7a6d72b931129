package stride

import (
	"image"
	"image/color"
)

// testColor returns an opaque colour that is distinct for every i below 256.
func testColor(i int) color.NRGBA {
	return color.NRGBA{R: uint8(i * 37), G: uint8(i*91 + 7), B: uint8(i*13 + 50), A: 255}
}

// fromPattern builds an image from rows of runes. '.' is fully transparent,
// every other rune maps to its own opaque colour.
func fromPattern(rows ...string) *image.NRGBA {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, r := range row {
			if r == '.' {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			img.SetNRGBA(x, y, testColor(int(r)))
		}
	}
	return img
}

// uniqueImage builds a w x h image in which every pixel has its own colour.
func uniqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, testColor(y*w+x+1))
		}
	}
	return img
}

// upscale replicates every pixel of src into an n x n block.
func upscale(src *image.NRGBA, n int) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*n, b.Dy()*n))
	for y := 0; y < dst.Bounds().Dy(); y++ {
		for x := 0; x < dst.Bounds().Dx(); x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+x/n, b.Min.Y+y/n))
		}
	}
	return dst
}

// withBorder surrounds src with a one-pixel frame of colour c.
func withBorder(src *image.NRGBA, c color.NRGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2, b.Dy()+2))
	for y := 0; y < dst.Bounds().Dy(); y++ {
		for x := 0; x < dst.Bounds().Dx(); x++ {
			if x == 0 || y == 0 || x == dst.Bounds().Dx()-1 || y == dst.Bounds().Dy()-1 {
				dst.SetNRGBA(x, y, c)
				continue
			}
			dst.SetNRGBA(x, y, src.NRGBAAt(b.Min.X+x-1, b.Min.Y+y-1))
		}
	}
	return dst
}

func setOf(lengths ...int) CandidateSet {
	s := NewCandidateSet()
	for _, l := range lengths {
		s.Add(l)
	}
	return s
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
