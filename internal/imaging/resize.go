package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// Resampler backend names accepted by NewResampler.
const (
	// ResamplerImaging uses disintegration/imaging nearest-neighbour resizing.
	ResamplerImaging = "imaging"
	// ResamplerBild uses anthonynsimon/bild nearest-neighbour resizing.
	ResamplerBild = "bild"
	// ResamplerSample picks the top-left pixel of every block and keeps
	// paletted frames paletted.
	ResamplerSample = "sample"
)

// Resampler shrinks an image by an integer factor.
type Resampler interface {
	// Name returns the backend name.
	Name() string
	// Downscale returns img reduced to Dx()/stride x Dy()/stride.
	Downscale(img image.Image, stride int) image.Image
}

// Resamplers lists the backend names in a stable order.
func Resamplers() []string {
	return []string{ResamplerImaging, ResamplerBild, ResamplerSample}
}

// NewResampler returns the backend with the given name. An empty name
// selects ResamplerImaging.
func NewResampler(name string) (Resampler, error) {
	switch name {
	case "", ResamplerImaging:
		return imagingResampler{}, nil
	case ResamplerBild:
		return bildResampler{}, nil
	case ResamplerSample:
		return sampleResampler{}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q", name)
	}
}

type imagingResampler struct{}

func (imagingResampler) Name() string { return ResamplerImaging }

func (imagingResampler) Downscale(img image.Image, stride int) image.Image {
	w, h := scaledSize(img.Bounds(), stride)
	return imaging.Resize(img, w, h, imaging.NearestNeighbor)
}

type bildResampler struct{}

func (bildResampler) Name() string { return ResamplerBild }

func (bildResampler) Downscale(img image.Image, stride int) image.Image {
	w, h := scaledSize(img.Bounds(), stride)
	return transform.Resize(img, w, h, transform.NearestNeighbor)
}

type sampleResampler struct{}

func (sampleResampler) Name() string { return ResamplerSample }

func (sampleResampler) Downscale(img image.Image, stride int) image.Image {
	b := img.Bounds()
	w, h := scaledSize(b, stride)

	if p, ok := img.(*image.Paletted); ok {
		dst := image.NewPaletted(image.Rect(0, 0, w, h), p.Palette)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.SetColorIndex(x, y, p.ColorIndexAt(b.Min.X+x*stride, b.Min.Y+y*stride))
			}
		}
		return dst
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, img.At(b.Min.X+x*stride, b.Min.Y+y*stride))
		}
	}
	return dst
}

func scaledSize(b image.Rectangle, stride int) (int, int) {
	if stride < 1 {
		stride = 1
	}
	return b.Dx() / stride, b.Dy() / stride
}

// Shrink returns a copy of seq with every frame reduced by stride.
//
// Frame delays, palettes and the loop count are carried over. The input
// sequence is not modified.
func Shrink(seq *Sequence, r Resampler, stride int) (*Sequence, error) {
	if stride < 1 {
		return nil, fmt.Errorf("invalid stride %d", stride)
	}

	w, h := scaledSize(image.Rect(0, 0, seq.Width, seq.Height), stride)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("stride %d leaves no pixels of %dx%d", stride, seq.Width, seq.Height)
	}

	out := &Sequence{
		Format:    seq.Format,
		Width:     w,
		Height:    h,
		Frames:    make([]Frame, len(seq.Frames)),
		LoopCount: seq.LoopCount,
	}
	for i, f := range seq.Frames {
		out.Frames[i] = Frame{
			Image:   r.Downscale(f.Image, stride),
			Delay:   f.Delay,
			Palette: f.Palette,
		}
	}
	return out, nil
}
