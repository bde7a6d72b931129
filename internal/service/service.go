// Package service drives a full unscale: load an image, detect its pixel
// size, shrink every frame by it and write the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	apperrors "github.com/ironsheep/pixelscale/internal/errors"
	"github.com/ironsheep/pixelscale/internal/imaging"
	"github.com/ironsheep/pixelscale/internal/logger"
	"github.com/ironsheep/pixelscale/internal/stride"
	"github.com/sirupsen/logrus"
)

// ErrNotDetected is returned when no stride of two or more was found.
var ErrNotDetected = errors.New("failed to detect pixel art scaling")

// DetectOptions are the per-request detection switches.
type DetectOptions struct {
	IgnoreBorder   bool `json:"ignore_border"`
	FirstFrameOnly bool `json:"first_frame_only"`
}

// Request describes one unscale run.
type Request struct {
	// Input is the image to read.
	Input string
	// Output is where the result goes. Empty means "<name>.scaled.<ext>"
	// next to Input, or Input itself with InPlace.
	Output  string
	InPlace bool

	IgnoreBorder   bool
	FirstFrameOnly bool
}

// Response reports what a run did.
type Response struct {
	Input     string        `json:"input"`
	Output    string        `json:"output,omitempty"`
	Format    string        `json:"format"`
	OldWidth  int           `json:"old_width"`
	OldHeight int           `json:"old_height"`
	NewWidth  int           `json:"new_width,omitempty"`
	NewHeight int           `json:"new_height,omitempty"`
	Stride    int           `json:"stride"`
	Frames    int           `json:"frames"`
	Reason    stride.Reason `json:"reason"`
}

// Analysis is the outcome of a detection on one image.
type Analysis struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Frames int    `json:"frames"`

	// Detected mirrors Result.Detected for JSON consumers.
	Detected bool `json:"detected"`
	// NewWidth and NewHeight are the native size; zero when not detected.
	NewWidth  int `json:"new_width,omitempty"`
	NewHeight int `json:"new_height,omitempty"`

	stride.Result
}

// NewAnalysis describes the detection result of seq.
func NewAnalysis(seq *imaging.Sequence, result stride.Result) *Analysis {
	a := &Analysis{
		Format:   seq.Format,
		Width:    seq.Width,
		Height:   seq.Height,
		Frames:   len(seq.Frames),
		Detected: result.Detected(),
		Result:   result,
	}
	if a.Detected {
		a.NewWidth = seq.Width / result.Stride
		a.NewHeight = seq.Height / result.Stride
	}
	return a
}

// Unscaler runs detections and downscales. It is safe for concurrent use.
type Unscaler struct {
	cache     *imaging.ImageCache
	resampler imaging.Resampler
	logger    *logrus.Logger
	out       io.Writer
	workers   int
	useGCD    bool
}

// Option configures an Unscaler.
type Option func(*Unscaler)

// WithCache shares an image cache with other components.
func WithCache(c *imaging.ImageCache) Option {
	return func(u *Unscaler) { u.cache = c }
}

// WithResampler selects the downscaling backend.
func WithResampler(r imaging.Resampler) Option {
	return func(u *Unscaler) { u.resampler = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *logrus.Logger) Option {
	return func(u *Unscaler) { u.logger = l }
}

// WithOutput sets where Run prints its progress lines.
func WithOutput(w io.Writer) Option {
	return func(u *Unscaler) { u.out = w }
}

// WithWorkers sets how many frames are scanned concurrently.
func WithWorkers(n int) Option {
	return func(u *Unscaler) { u.workers = n }
}

// WithGCD switches candidate reduction to the greatest common divisor.
func WithGCD(enabled bool) Option {
	return func(u *Unscaler) { u.useGCD = enabled }
}

// New creates an Unscaler. Without options it uses a private cache, the
// imaging resampler, a discarding logger and sequential scanning.
func New(opts ...Option) *Unscaler {
	u := &Unscaler{workers: 1, out: io.Discard}
	for _, opt := range opts {
		opt(u)
	}
	if u.cache == nil {
		u.cache = imaging.NewImageCache()
	}
	if u.resampler == nil {
		u.resampler, _ = imaging.NewResampler(imaging.ResamplerImaging)
	}
	if u.logger == nil {
		u.logger = logger.Discard()
	}
	return u
}

// Cache returns the image cache used by the Unscaler.
func (u *Unscaler) Cache() *imaging.ImageCache {
	return u.cache
}

// Load reads path through the cache. A missing file is reported as a
// not-found AppError.
func (u *Unscaler) Load(path string) (*imaging.Sequence, error) {
	seq, err := u.cache.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError("image not found", err)
	}
	return seq, err
}

func (u *Unscaler) detector(opts DetectOptions) *stride.Detector {
	return stride.NewDetector(stride.Options{
		IgnoreBorder:   opts.IgnoreBorder,
		FirstFrameOnly: opts.FirstFrameOnly,
		UseGCD:         u.useGCD,
		Workers:        u.workers,
	})
}

// DetectImage finds the stride of an in-memory sequence.
func (u *Unscaler) DetectImage(ctx context.Context, seq *imaging.Sequence, opts DetectOptions) (stride.Result, error) {
	return u.detector(opts).DetectFrames(ctx, stride.Sources(seq.Images()))
}

// Detect loads path through the cache and finds its stride.
func (u *Unscaler) Detect(ctx context.Context, path string, opts DetectOptions) (*Analysis, error) {
	seq, err := u.Load(path)
	if err != nil {
		return nil, err
	}

	result, err := u.DetectImage(ctx, seq, opts)
	if err != nil {
		return nil, err
	}

	u.logger.WithFields(logrus.Fields{
		"path":       path,
		"stride":     result.Stride,
		"reason":     result.Reason,
		"frames":     result.FramesScanned,
		"candidates": result.Candidates,
	}).Debug("detection finished")

	analysis := NewAnalysis(seq, result)
	analysis.Path = path
	return analysis, nil
}

// DownscaleImage detects the stride of seq and shrinks every frame by it.
// It returns ErrNotDetected, together with the detection result, when there
// is nothing to shrink.
func (u *Unscaler) DownscaleImage(ctx context.Context, seq *imaging.Sequence, opts DetectOptions) (*imaging.Sequence, stride.Result, error) {
	result, err := u.DetectImage(ctx, seq, opts)
	if err != nil {
		return nil, result, err
	}
	if !result.Detected() {
		return nil, result, ErrNotDetected
	}

	shrunk, err := imaging.Shrink(seq, u.resampler, result.Stride)
	if err != nil {
		return nil, result, fmt.Errorf("failed to downscale: %w", err)
	}
	return shrunk, result, nil
}

// Run performs a complete unscale of req.Input.
//
// Animated input written to a format without animation is reduced to its
// first frame before detection, with a logged warning. When
// detection fails Run returns ErrNotDetected and a Response describing the
// analysis; nothing is written.
func (u *Unscaler) Run(ctx context.Context, req Request) (*Response, error) {
	seq, err := u.Load(req.Input)
	if err != nil {
		return nil, err
	}

	format := imaging.OutputFormat(req.Output, seq.Format)
	outPath := imaging.OutputPath(req.Input, req.Output, req.InPlace, format)

	if seq.Animated() && !imaging.SupportsAnimation(format) {
		u.logger.Warnf("animated %s images are not supported, writing still image instead", format)
		seq = seq.First()
	}

	log := u.logger.WithFields(logrus.Fields{
		"input":  req.Input,
		"format": format,
		"frames": len(seq.Frames),
	})

	opts := DetectOptions{IgnoreBorder: req.IgnoreBorder, FirstFrameOnly: req.FirstFrameOnly}
	shrunk, result, err := u.DownscaleImage(ctx, seq, opts)

	resp := &Response{
		Input:     req.Input,
		Format:    format,
		OldWidth:  seq.Width,
		OldHeight: seq.Height,
		Stride:    result.Stride,
		Frames:    len(seq.Frames),
		Reason:    result.Reason,
	}
	if err != nil {
		log.WithError(err).WithField("reason", result.Reason).Info("no scale detected")
		if errors.Is(err, ErrNotDetected) {
			return resp, err
		}
		return nil, err
	}

	fmt.Fprintf(u.out, "resizing %d x %d -> %d x %d\n", seq.Width, seq.Height, shrunk.Width, shrunk.Height)

	if err := imaging.EncodeFile(outPath, shrunk, format); err != nil {
		return nil, err
	}
	u.cache.Evict(outPath)

	fmt.Fprintf(u.out, "written %s\n", outPath)
	log.WithFields(logrus.Fields{"output": outPath, "stride": result.Stride}).Info("image unscaled")

	resp.Output = outPath
	resp.NewWidth = shrunk.Width
	resp.NewHeight = shrunk.Height
	return resp, nil
}
