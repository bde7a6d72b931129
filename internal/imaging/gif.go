package imaging

import (
	"image"
	"image/draw"
	"image/gif"

	"github.com/disintegration/imaging"
)

// sequenceFromGIF composites the frames of an animated GIF onto a canvas.
//
// GIF frames may cover only part of the canvas and rely on the previous
// frame for the rest. Each resulting Frame is a full-canvas snapshot taken
// after drawing, with the frame's disposal method applied before the next
// one is drawn.
func sequenceFromGIF(g *gif.GIF) *Sequence {
	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		var union image.Rectangle
		for _, p := range g.Image {
			union = union.Union(p.Bounds())
		}
		width, height = union.Max.X, union.Max.Y
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	seq := &Sequence{
		Format:    "gif",
		Width:     width,
		Height:    height,
		Frames:    make([]Frame, 0, len(g.Image)),
		LoopCount: g.LoopCount,
	}

	for i, p := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = imaging.Clone(canvas)
		}

		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)
		seq.Frames = append(seq.Frames, Frame{
			Image:   imaging.Clone(canvas),
			Delay:   delay,
			Palette: p.Palette,
		})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			draw.Draw(canvas, canvas.Bounds(), previous, image.Point{}, draw.Src)
		}
	}

	return seq
}
