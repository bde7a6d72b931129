package stride

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// errDisproved stops an errgroup once one frame has been disproved.
var errDisproved = errors.New("frame disproved")

// Options controls a Detector.
type Options struct {
	// IgnoreBorder skips the first and last run of every row and column.
	// It also disables the check that the stride divides the frame size.
	IgnoreBorder bool

	// FirstFrameOnly scans only the first frame of an animation.
	FirstFrameOnly bool

	// UseGCD reduces candidates with ReduceGCD instead of Reduce.
	UseGCD bool

	// Workers is the number of frames scanned concurrently.
	// Values below 2 scan frames one after another.
	Workers int
}

// Result is the outcome of a detection.
type Result struct {
	// Stride is the detected factor, or Undetected.
	Stride int `json:"stride"`

	// Reason explains Stride.
	Reason Reason `json:"reason"`

	// Candidates are the merged run lengths in ascending order.
	// Empty when a frame was disproved.
	Candidates []int `json:"candidates"`

	// FramesScanned counts the frames whose scan completed.
	FramesScanned int `json:"frames_scanned"`

	// Disproof is set when Reason is ReasonDisproved.
	Disproof *Disproof `json:"disproof,omitempty"`
}

// Detected reports whether Stride is a usable factor.
func (r Result) Detected() bool {
	return r.Stride > Undetected
}

// Detector aggregates run-length evidence across the frames of an image.
type Detector struct {
	opts Options
}

// NewDetector creates a Detector with the given options.
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts}
}

// Options returns the options the detector was created with.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect finds the stride of a single still image.
func (d *Detector) Detect(ctx context.Context, src PixelSource) (Result, error) {
	return d.DetectFrames(ctx, []PixelSource{src})
}

// DetectFrames finds the stride shared by all frames.
//
// Every frame is scanned unless FirstFrameOnly is set, and all candidate run
// lengths go into one set that is reduced once at the end. The first
// disproved frame ends the detection with Undetected; remaining frames are
// not scanned. An empty frame list is Undetected with ReasonNoEvidence.
//
// The returned error is non-nil only when ctx is cancelled.
func (d *Detector) DetectFrames(ctx context.Context, frames []PixelSource) (Result, error) {
	if len(frames) == 0 {
		return Result{Stride: Undetected, Reason: ReasonNoEvidence, Candidates: []int{}}, nil
	}
	if d.opts.FirstFrameOnly {
		frames = frames[:1]
	}

	var (
		candidates CandidateSet
		disproof   *Disproof
		scanned    int
		err        error
	)
	if d.opts.Workers > 1 && len(frames) > 1 {
		candidates, disproof, scanned, err = d.scanParallel(ctx, frames)
	} else {
		candidates, disproof, scanned, err = d.scanSequential(ctx, frames)
	}
	if err != nil {
		return Result{}, err
	}

	if disproof != nil {
		return Result{
			Stride:        Undetected,
			Reason:        ReasonDisproved,
			Candidates:    []int{},
			FramesScanned: scanned,
			Disproof:      disproof,
		}, nil
	}

	result := Result{Candidates: candidates.Sorted(), FramesScanned: scanned}
	if d.opts.UseGCD {
		result.Stride, result.Reason = ReduceGCD(candidates)
	} else {
		result.Stride, result.Reason = Reduce(candidates)
	}

	if result.Detected() && !d.opts.IgnoreBorder && !aligned(frames, result.Stride) {
		result.Stride, result.Reason = Undetected, ReasonMisaligned
	}
	return result, nil
}

func (d *Detector) scanSequential(ctx context.Context, frames []PixelSource) (CandidateSet, *Disproof, int, error) {
	candidates := NewCandidateSet()
	for i, frame := range frames {
		scan, err := ScanFrameContext(ctx, frame, d.opts.IgnoreBorder)
		if err != nil {
			return nil, nil, i, err
		}
		if scan.Disproved() {
			return nil, scan.Disproof, i + 1, nil
		}
		candidates.Merge(scan.Candidates)
	}
	return candidates, nil, len(frames), nil
}

// scanParallel scans frames concurrently into per-frame sets, merged once
// every scan has finished. A disproof cancels the scans still running.
func (d *Detector) scanParallel(ctx context.Context, frames []PixelSource) (CandidateSet, *Disproof, int, error) {
	scans := make([]Scan, len(frames))
	done := make([]bool, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	for i, frame := range frames {
		g.Go(func() error {
			scan, err := ScanFrameContext(gctx, frame, d.opts.IgnoreBorder)
			if err != nil {
				return err
			}
			scans[i] = scan
			done[i] = true
			if scan.Disproved() {
				return errDisproved
			}
			return nil
		})
	}

	err := g.Wait()

	scanned := 0
	for _, ok := range done {
		if ok {
			scanned++
		}
	}

	if errors.Is(err, errDisproved) {
		for i, scan := range scans {
			if done[i] && scan.Disproved() {
				return nil, scan.Disproof, scanned, nil
			}
		}
	}
	if err != nil {
		return nil, nil, scanned, err
	}

	candidates := NewCandidateSet()
	for _, scan := range scans {
		candidates.Merge(scan.Candidates)
	}
	return candidates, nil, scanned, nil
}

// aligned reports whether stride divides the width and height of every frame.
func aligned(frames []PixelSource, stride int) bool {
	for _, frame := range frames {
		b := frame.Bounds()
		if b.Dx()%stride != 0 || b.Dy()%stride != 0 {
			return false
		}
	}
	return true
}
