package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func decodeOverlay(t *testing.T, result *GridOverlayResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestGridOverlay(t *testing.T) {
	magenta := color.NRGBA{255, 0, 255, 255}
	red := color.NRGBA{255, 0, 0, 255}

	tests := []struct {
		name      string
		opts      GridOptions
		wantSize  int
		lineAt    image.Point
		contentAt image.Point
	}{
		{name: "zoom 1", opts: GridOptions{Stride: 4}, wantSize: 8, lineAt: image.Pt(4, 1), contentAt: image.Pt(1, 1)},
		{name: "zoom 3", opts: GridOptions{Stride: 4, Zoom: 3}, wantSize: 24, lineAt: image.Pt(1, 12), contentAt: image.Pt(5, 5)},
		{name: "stride 2", opts: GridOptions{Stride: 2, Zoom: 2}, wantSize: 16, lineAt: image.Pt(4, 9), contentAt: image.Pt(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := GridOverlay(createBlockImage(4), tt.opts)
			if err != nil {
				t.Fatalf("GridOverlay failed: %v", err)
			}
			if result.Width != tt.wantSize || result.Height != tt.wantSize {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantSize, tt.wantSize)
			}
			if result.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", result.MimeType)
			}

			img := decodeOverlay(t, result)
			if got := nrgbaAt(img, tt.lineAt.X, tt.lineAt.Y); got != magenta {
				t.Errorf("grid line at %v: got %v, want %v", tt.lineAt, got, magenta)
			}
			if got := nrgbaAt(img, tt.contentAt.X, tt.contentAt.Y); got != red {
				t.Errorf("content at %v: got %v, want %v", tt.contentAt, got, red)
			}
		})
	}
}

func TestGridOverlay_Mark(t *testing.T) {
	mark := image.Pt(1, 1)
	result, err := GridOverlay(createBlockImage(4), GridOptions{Stride: 4, Zoom: 3, Mark: &mark})
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	img := decodeOverlay(t, result)
	if got := nrgbaAt(img, 3, 3); got != markColor {
		t.Errorf("mark outline: got %v, want %v", got, markColor)
	}
	if got := nrgbaAt(img, 4, 4); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("mark interior should keep content, got %v", got)
	}
}

func TestGridOverlay_Color(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  color.NRGBA
	}{
		{name: "rgb", color: "#00FF00", want: color.NRGBA{0, 255, 0, 255}},
		{name: "no hash", color: "0000FF", want: color.NRGBA{0, 0, 255, 255}},
		{name: "invalid falls back", color: "not-a-color", want: color.NRGBA{255, 0, 255, 255}},
		{name: "empty falls back", color: "", want: color.NRGBA{255, 0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := GridOverlay(createBlockImage(4), GridOptions{Stride: 4, Color: tt.color})
			if err != nil {
				t.Fatalf("GridOverlay failed: %v", err)
			}
			if got := nrgbaAt(decodeOverlay(t, result), 4, 0); got != tt.want {
				t.Errorf("line color: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGridOverlay_Errors(t *testing.T) {
	if _, err := GridOverlay(createBlockImage(2), GridOptions{Stride: 0}); err == nil {
		t.Error("expected error for stride 0")
	}
	if _, err := GridOverlay(createBlockImage(100), GridOptions{Stride: 2, Zoom: 50}); err == nil {
		t.Error("expected error for oversized zoom")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{input: "#FF0000", want: color.NRGBA{255, 0, 0, 255}},
		{input: "#FF000080", want: color.NRGBA{255, 0, 0, 128}},
		{input: "00ff00", want: color.NRGBA{0, 255, 0, 255}},
		{input: "", wantErr: true},
		{input: "#GG0000", wantErr: true},
		{input: "#FF0000ZZ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
