package stride

import (
	"context"
	"image"
	"image/color"
)

// Axis is the direction a run was measured in.
type Axis int

const (
	// Horizontal runs go left to right along a row.
	Horizontal Axis = iota
	// Vertical runs go top to bottom along a column.
	Vertical
)

// String returns "horizontal" or "vertical".
func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// MarshalText encodes the axis by name.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Disproof describes the lone pixel that ruled out any stride for a frame.
type Disproof struct {
	// X and Y locate the single-pixel run.
	X int `json:"x"`
	Y int `json:"y"`

	// Axis is the scan direction in which the run was one pixel long.
	Axis Axis `json:"axis"`

	// Color is the colour of the run.
	Color color.NRGBA `json:"color"`
}

// Scan is the outcome of scanning one frame: a Disproof, or the run lengths
// observed. Candidates is nil when Disproof is set.
type Scan struct {
	Candidates CandidateSet
	Disproof   *Disproof
}

// Disproved reports whether the frame contains a run no stride can explain.
func (s Scan) Disproved() bool {
	return s.Disproof != nil
}

// run is the state of the run currently open on one scan line.
type run struct {
	color  color.NRGBA
	length int
	// first is set while the open run is the first one on its line.
	first bool
}

// extend grows the run when c continues it.
func (r *run) extend(c color.NRGBA) bool {
	if r.length > 0 && r.color == c {
		r.length++
		return true
	}
	return false
}

// restart opens a new run of colour c.
func (r *run) restart(c color.NRGBA) {
	r.first = r.length == 0
	r.color = c
	r.length = 1
}

type scanner struct {
	ignoreBorder bool
	candidates   CandidateSet
}

// close applies the disproof and candidate rules to a finished run. end is
// the last pixel of the run; last marks a run that ends its line.
func (s *scanner) close(r run, last bool, end image.Point, axis Axis) *Disproof {
	if r.length == 0 {
		return nil
	}
	if s.ignoreBorder && (r.first || last) {
		return nil
	}
	if r.length == 1 {
		return &Disproof{X: end.X, Y: end.Y, Axis: axis, Color: r.color}
	}
	if r.color.A > 0 {
		s.candidates.Add(r.length)
	}
	return nil
}

// ScanFrame scans every row and column of src once and collects the lengths
// of its uniform colour runs. See ScanFrameContext.
func ScanFrame(src PixelSource, ignoreBorder bool) Scan {
	scan, _ := ScanFrameContext(context.Background(), src, ignoreBorder)
	return scan
}

// ScanFrameContext is ScanFrame with cancellation.
//
// Rows and columns are measured in the same traversal: the horizontal run is
// reset at the start of every row, while one vertical run per column is kept
// across rows and closed after the last row. The scan returns as soon as a
// closed run is exactly one pixel long, unless ignoreBorder exempts it for
// being the first or last run of its line.
//
// ctx is checked once per row; a cancelled scan returns ctx.Err().
func ScanFrameContext(ctx context.Context, src PixelSource, ignoreBorder bool) (Scan, error) {
	b := src.Bounds()
	s := scanner{ignoreBorder: ignoreBorder, candidates: NewCandidateSet()}
	columns := make([]run, b.Dx())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return Scan{}, err
		}

		var row run
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)

			if !row.extend(c) {
				if d := s.close(row, false, image.Pt(x-1, y), Horizontal); d != nil {
					return Scan{Disproof: d}, nil
				}
				row.restart(c)
			}

			col := &columns[x-b.Min.X]
			if !col.extend(c) {
				if d := s.close(*col, false, image.Pt(x, y-1), Vertical); d != nil {
					return Scan{Disproof: d}, nil
				}
				col.restart(c)
			}
		}

		if d := s.close(row, true, image.Pt(b.Max.X-1, y), Horizontal); d != nil {
			return Scan{Disproof: d}, nil
		}
	}

	for i, col := range columns {
		if d := s.close(col, true, image.Pt(b.Min.X+i, b.Max.Y-1), Vertical); d != nil {
			return Scan{Disproof: d}, nil
		}
	}

	return Scan{Candidates: s.candidates}, nil
}
