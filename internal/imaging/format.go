package imaging

import (
	"path/filepath"
	"strings"
)

// Output format names, matching the names image decoders register.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
)

var mimeTypes = map[string]string{
	FormatPNG:  "image/png",
	FormatJPEG: "image/jpeg",
	FormatGIF:  "image/gif",
	FormatBMP:  "image/bmp",
	FormatTIFF: "image/tiff",
	FormatWebP: "image/webp",
}

// NormalizeFormat lower-cases a format name or file extension and maps
// aliases to their canonical name ("jpg" -> "jpeg", "tif" -> "tiff").
func NormalizeFormat(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	switch name {
	case "jpg":
		return FormatJPEG
	case "tif":
		return FormatTIFF
	}
	return name
}

// Supported reports whether format can be written.
func Supported(format string) bool {
	_, ok := mimeTypes[NormalizeFormat(format)]
	return ok
}

// SupportsAnimation reports whether format can hold more than one frame.
func SupportsAnimation(format string) bool {
	return NormalizeFormat(format) == FormatGIF
}

// FormatFromPath derives the format from a file extension. The second
// result is false when the extension is missing or not supported.
func FormatFromPath(path string) (string, bool) {
	format := NormalizeFormat(filepath.Ext(path))
	if !Supported(format) {
		return "", false
	}
	return format, true
}

// Extension returns the file extension used when writing format, without
// the leading dot. JPEG files are written as ".jpg".
func Extension(format string) string {
	format = NormalizeFormat(format)
	if format == FormatJPEG {
		return "jpg"
	}
	return format
}

// MimeType returns the MIME type of format, or "application/octet-stream".
func MimeType(format string) string {
	if m, ok := mimeTypes[NormalizeFormat(format)]; ok {
		return m
	}
	return "application/octet-stream"
}

// OutputFormat picks the format to write.
//
// The extension of output wins when it names a supported format. Otherwise
// the input format is kept, and PNG is used when the input format cannot
// be written either.
func OutputFormat(output, inputFormat string) string {
	if output != "" {
		if format, ok := FormatFromPath(output); ok {
			return format
		}
	}
	if Supported(inputFormat) {
		return NormalizeFormat(inputFormat)
	}
	return FormatPNG
}

// OutputPath resolves where a downscaled image is written.
//
// An explicit output path is returned unchanged and inPlace is then ignored.
// With inPlace the input is overwritten. Otherwise the result goes next to
// the input as "<name>.scaled.<ext>", where ext follows format.
func OutputPath(input, output string, inPlace bool, format string) string {
	if output != "" {
		return output
	}
	if inPlace {
		return input
	}

	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".scaled." + Extension(format)
}
