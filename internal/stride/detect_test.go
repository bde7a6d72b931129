package stride

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func detect(t *testing.T, opts Options, frames ...*image.NRGBA) Result {
	t.Helper()
	sources := make([]PixelSource, len(frames))
	for i, f := range frames {
		sources[i] = f
	}
	result, err := NewDetector(opts).DetectFrames(context.Background(), sources)
	if err != nil {
		t.Fatalf("DetectFrames failed: %v", err)
	}
	return result
}

// animationFrames returns three 8x8 frames whose own candidate sets are
// {4, 8}, {4} and {8}.
func animationFrames() (a, b, c *image.NRGBA) {
	return upscale(fromPattern("aa", "bc"), 4),
		upscale(fromPattern("ab", "ba"), 4),
		upscale(fromPattern("c"), 8)
}

func TestDetect_UpscaleRoundTrip(t *testing.T) {
	for n := 2; n <= 6; n++ {
		result, err := NewDetector(Options{}).Detect(context.Background(), upscale(uniqueImage(4, 3), n))
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if result.Stride != n {
			t.Errorf("n=%d: stride = %d (%s)", n, result.Stride, result.Reason)
		}
		if !result.Detected() || result.Reason != ReasonDetected {
			t.Errorf("n=%d: Detected() = %v, reason %s", n, result.Detected(), result.Reason)
		}
		if result.FramesScanned != 1 {
			t.Errorf("n=%d: FramesScanned = %d, want 1", n, result.FramesScanned)
		}
	}
}

func TestDetect_Deterministic(t *testing.T) {
	img := upscale(uniqueImage(5, 5), 3)
	first := detect(t, Options{}, img)
	for i := 0; i < 5; i++ {
		again := detect(t, Options{}, img)
		if again.Stride != first.Stride || !equalInts(again.Candidates, first.Candidates) {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}

func TestDetect_SingletonDisproof(t *testing.T) {
	img := upscale(uniqueImage(4, 4), 2)
	img.SetNRGBA(3, 3, testColor(250))

	result := detect(t, Options{}, img)
	if result.Stride != Undetected {
		t.Errorf("stride = %d, want %d", result.Stride, Undetected)
	}
	if result.Reason != ReasonDisproved {
		t.Errorf("reason = %s, want %s", result.Reason, ReasonDisproved)
	}
	if result.Disproof == nil {
		t.Fatal("expected a disproof")
	}
	if len(result.Candidates) != 0 {
		t.Errorf("candidates = %v, want none", result.Candidates)
	}
}

func TestDetect_BorderSuppression(t *testing.T) {
	img := withBorder(upscale(uniqueImage(4, 3), 3), testColor(200))

	if got := detect(t, Options{IgnoreBorder: true}, img); got.Stride != 3 {
		t.Errorf("ignore border: stride = %d (%s), want 3", got.Stride, got.Reason)
	}
	if got := detect(t, Options{}, img); got.Stride != Undetected {
		t.Errorf("keep border: stride = %d, want %d", got.Stride, Undetected)
	}
}

func TestDetect_Animation(t *testing.T) {
	a, b, c := animationFrames()

	t.Run("frames agree on the smallest run", func(t *testing.T) {
		result := detect(t, Options{}, a, b, c)
		if result.Stride != 4 {
			t.Errorf("stride = %d (%s), want 4", result.Stride, result.Reason)
		}
		if !equalInts(result.Candidates, []int{4, 8}) {
			t.Errorf("candidates = %v, want [4 8]", result.Candidates)
		}
		if result.FramesScanned != 3 {
			t.Errorf("FramesScanned = %d, want 3", result.FramesScanned)
		}
	})

	t.Run("first frame only", func(t *testing.T) {
		result := detect(t, Options{FirstFrameOnly: true}, c, a, b)
		if result.Stride != 8 {
			t.Errorf("stride = %d, want 8", result.Stride)
		}
		if result.FramesScanned != 1 {
			t.Errorf("FramesScanned = %d, want 1", result.FramesScanned)
		}
	})

	t.Run("full mode uses every frame", func(t *testing.T) {
		if got := detect(t, Options{}, c, a, b); got.Stride != 4 {
			t.Errorf("stride = %d, want 4", got.Stride)
		}
	})

	t.Run("one disproved frame fails the sequence", func(t *testing.T) {
		bad := upscale(uniqueImage(2, 2), 4)
		bad.SetNRGBA(0, 0, testColor(250))

		result := detect(t, Options{}, a, bad, b, c)
		if result.Stride != Undetected || result.Reason != ReasonDisproved {
			t.Errorf("got %d (%s), want %d (%s)", result.Stride, result.Reason, Undetected, ReasonDisproved)
		}
		if result.FramesScanned != 2 {
			t.Errorf("FramesScanned = %d, want 2", result.FramesScanned)
		}
	})
}

func TestDetect_Parallel(t *testing.T) {
	a, b, c := animationFrames()

	t.Run("matches sequential", func(t *testing.T) {
		seq := detect(t, Options{}, a, b, c, a, b, c)
		par := detect(t, Options{Workers: 4}, a, b, c, a, b, c)
		if par.Stride != seq.Stride || !equalInts(par.Candidates, seq.Candidates) {
			t.Errorf("parallel %+v, sequential %+v", par, seq)
		}
		if par.FramesScanned != 6 {
			t.Errorf("FramesScanned = %d, want 6", par.FramesScanned)
		}
	})

	t.Run("disproof short-circuits", func(t *testing.T) {
		bad := upscale(uniqueImage(2, 2), 4)
		bad.SetNRGBA(5, 5, testColor(250))

		result := detect(t, Options{Workers: 3}, a, b, bad, c)
		if result.Stride != Undetected || result.Reason != ReasonDisproved {
			t.Errorf("got %d (%s), want %d (%s)", result.Stride, result.Reason, Undetected, ReasonDisproved)
		}
		if result.Disproof == nil {
			t.Error("expected the disproof to be reported")
		}
	})
}

func TestDetect_EmptySequence(t *testing.T) {
	for _, opts := range []Options{{}, {FirstFrameOnly: true}, {Workers: 4}} {
		result, err := NewDetector(opts).DetectFrames(context.Background(), nil)
		if err != nil {
			t.Fatalf("DetectFrames failed: %v", err)
		}
		if result.Stride != Undetected || result.Reason != ReasonNoEvidence {
			t.Errorf("%+v: got %d (%s)", opts, result.Stride, result.Reason)
		}
	}
}

func TestDetect_DegenerateImages(t *testing.T) {
	tests := []struct {
		name string
		img  *image.NRGBA
	}{
		{"0x0", image.NewNRGBA(image.Rect(0, 0, 0, 0))},
		{"1x1", fromPattern("a")},
		{"fully transparent", upscale(fromPattern("..", ".."), 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect(t, Options{}, tt.img); got.Stride != Undetected {
				t.Errorf("stride = %d, want %d", got.Stride, Undetected)
			}
		})
	}
}

func TestDetect_Misaligned(t *testing.T) {
	// Runs are all 2 long once the transparent run of 3 is excluded, but 2
	// does not divide the width of 5.
	result := detect(t, Options{}, fromPattern("...aa", "...aa"))
	if result.Stride != Undetected || result.Reason != ReasonMisaligned {
		t.Errorf("got %d (%s), want %d (%s)", result.Stride, result.Reason, Undetected, ReasonMisaligned)
	}
	if !equalInts(result.Candidates, []int{2}) {
		t.Errorf("candidates = %v, want [2]", result.Candidates)
	}
}

func TestDetect_UseGCD(t *testing.T) {
	img := upscale(fromPattern("aabbb", "aabbb"), 3)

	if got := detect(t, Options{}, img); got.Stride != Undetected || got.Reason != ReasonInconsistent {
		t.Errorf("default: got %d (%s), want %d (%s)", got.Stride, got.Reason, Undetected, ReasonInconsistent)
	}
	if got := detect(t, Options{UseGCD: true}, img); got.Stride != 3 {
		t.Errorf("gcd: stride = %d (%s), want 3", got.Stride, got.Reason)
	}
}

func TestDetect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, b, c := animationFrames()
	for _, workers := range []int{1, 3} {
		_, err := NewDetector(Options{Workers: workers}).DetectFrames(ctx, []PixelSource{a, b, c})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: err = %v, want context.Canceled", workers, err)
		}
	}
}

func TestSource(t *testing.T) {
	t.Run("NRGBA is used directly", func(t *testing.T) {
		img := uniqueImage(2, 2)
		if src := Source(img); src != PixelSource(img) {
			t.Error("Source should return *image.NRGBA unchanged")
		}
	})

	t.Run("other images are converted", func(t *testing.T) {
		rgba := image.NewRGBA(image.Rect(0, 0, 4, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 4; x++ {
				rgba.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
			}
		}
		src := Source(rgba)
		if got := src.NRGBAAt(1, 1); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
			t.Errorf("NRGBAAt = %v", got)
		}
		if src.Bounds().Dx() != 4 || src.Bounds().Dy() != 2 {
			t.Errorf("bounds = %v", src.Bounds())
		}
	})

	t.Run("Sources keeps order", func(t *testing.T) {
		a, b := uniqueImage(1, 1), uniqueImage(2, 2)
		srcs := Sources([]image.Image{a, b})
		if len(srcs) != 2 || srcs[1].Bounds().Dx() != 2 {
			t.Errorf("Sources returned %v", srcs)
		}
	})
}
