package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ironsheep/pixelscale/internal/config"
	"github.com/ironsheep/pixelscale/internal/imaging"
	"github.com/ironsheep/pixelscale/internal/logger"
	"github.com/ironsheep/pixelscale/internal/service"
)

// pixelArt encodes a 2x2 four-colour pattern upscaled by n as PNG.
func pixelArt(t *testing.T, n int) []byte {
	t.Helper()
	colors := []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 255, 255}}
	img := image.NewNRGBA(image.Rect(0, 0, 2*n, 2*n))
	for y := 0; y < 2*n; y++ {
		for x := 0; x < 2*n; x++ {
			img.SetNRGBA(x, y, colors[(y/n)*2+x/n])
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func newTestHandler(cfg *config.Config) http.Handler {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return NewHandler(service.New(), cfg, logger.Discard(), "test")
}

// upload posts data as the "image" field of a multipart form.
func upload(t *testing.T, h http.Handler, target, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "upload.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error struct {
		Type       string `json:"type"`
		Message    string `json:"message"`
		Details    string `json:"details"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newTestHandler(nil).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "available" || body["version"] != "test" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestDetect(t *testing.T) {
	h := newTestHandler(nil)

	tests := []struct {
		name       string
		target     string
		data       []byte
		wantStride int
		wantReason string
	}{
		{"upscaled", "/detect", pixelArt(t, 4), 4, "detected"},
		{"native resolution", "/detect", pixelArt(t, 1), 1, "disproved"},
		{"explicit options", "/detect?ignore_border=false&first_frame_only=1", pixelArt(t, 3), 3, "detected"},
		{"border suppression leaves no evidence", "/detect?ignore_border=true", pixelArt(t, 3), 1, "no_evidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(t, h, tt.target, UploadField, tt.data)
			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200: %s", w.Code, w.Body.String())
			}

			var body struct {
				Stride   int    `json:"stride"`
				Reason   string `json:"reason"`
				Detected bool   `json:"detected"`
				Format   string `json:"format"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Stride != tt.wantStride || body.Reason != tt.wantReason {
				t.Errorf("got stride %d (%s), want %d (%s)", body.Stride, body.Reason, tt.wantStride, tt.wantReason)
			}
			if body.Detected != (tt.wantStride > 1) || body.Format != "png" {
				t.Errorf("unexpected body: %+v", body)
			}
		})
	}
}

func TestDetect_BadRequests(t *testing.T) {
	h := newTestHandler(nil)

	tests := []struct {
		name   string
		target string
		field  string
		data   []byte
	}{
		{"invalid boolean", "/detect?ignore_border=maybe", UploadField, pixelArt(t, 2)},
		{"wrong field", "/detect", "file", pixelArt(t, 2)},
		{"corrupt image", "/detect", UploadField, []byte("not an image")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(t, h, tt.target, tt.field, tt.data)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", w.Code)
			}
			if body := decodeError(t, w); body.Error.Type != "validation" {
				t.Errorf("type: got %s, want validation", body.Error.Type)
			}
		})
	}
}

func TestDetect_TooLarge(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MaxUploadBytes = 256

	w := upload(t, newTestHandler(cfg), "/detect", UploadField, make([]byte, 10*1024))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: got %d, want 413", w.Code)
	}
}

func TestUpload_TooManyPixels(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MaxPixels = 99

	for _, target := range []string{"/detect", "/downscale"} {
		t.Run(target, func(t *testing.T) {
			// 5x upscale of a 2x2 pattern is 100 pixels.
			w := upload(t, newTestHandler(cfg), target, UploadField, pixelArt(t, 5))
			if w.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("status: got %d, want 413", w.Code)
			}
			if body := decodeError(t, w); body.Error.Type != "too_large" {
				t.Errorf("type: got %s, want too_large", body.Error.Type)
			}
		})
	}
}

func TestDownscale(t *testing.T) {
	h := newTestHandler(nil)

	tests := []struct {
		name     string
		target   string
		wantMime string
		format   string
	}{
		{"keeps input format", "/downscale", "image/png", "png"},
		{"format override", "/downscale?format=gif", "image/gif", "gif"},
		{"format alias", "/downscale?format=jpg", "image/jpeg", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(t, h, tt.target, UploadField, pixelArt(t, 5))
			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200: %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.wantMime {
				t.Errorf("Content-Type: got %s, want %s", ct, tt.wantMime)
			}
			if s := w.Header().Get("X-Pixelscale-Stride"); s != "5" {
				t.Errorf("stride header: got %s, want 5", s)
			}

			seq, err := imaging.Decode(w.Body)
			if err != nil {
				t.Fatalf("response is not an image: %v", err)
			}
			if seq.Format != tt.format || seq.Width != 2 || seq.Height != 2 {
				t.Errorf("got %s %dx%d, want %s 2x2", seq.Format, seq.Width, seq.Height, tt.format)
			}
		})
	}
}

func TestDownscale_Undetected(t *testing.T) {
	w := upload(t, newTestHandler(nil), "/downscale", UploadField, pixelArt(t, 1))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", w.Code)
	}

	body := decodeError(t, w)
	if body.Error.Type != "undetected" || body.Error.Message != "failed to detect pixel art scaling" {
		t.Errorf("unexpected error: %+v", body.Error)
	}
	if body.Error.Details != "reason: disproved" {
		t.Errorf("Details: got %q", body.Error.Details)
	}
}

func TestDownscale_UnsupportedFormat(t *testing.T) {
	w := upload(t, newTestHandler(nil), "/downscale?format=xcf", UploadField, pixelArt(t, 2))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", w.Code)
	}
}
