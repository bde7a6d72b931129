// Package imaging decodes, resizes and encodes the images the scale
// detector works on.
//
// Images are handled as a Sequence of full-canvas frames. A still image is a
// sequence of one frame; an animated GIF is composited frame by frame so
// every Frame can be analysed or resized on its own. All pixel coordinates
// are 0-based with (0,0) at the top-left corner.
//
// # Formats
//
// Decoding sniffs the format from the file content. PNG, JPEG and GIF come
// from the standard library, BMP and TIFF from golang.org/x/image, and WebP
// from github.com/chai2010/webp. Only GIF output keeps animation; the other
// formats write the first frame.
//
// # Resampling
//
// Downscaling is nearest-neighbour by an integer factor. Three interchangeable
// backends are available through NewResampler: disintegration/imaging (the
// default), anthonynsimon/bild, and a direct block sampler that keeps
// paletted frames paletted.
//
// GridOverlay draws the block grid of a stride over a frame so a result can
// be checked by eye.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Sequences returned by the
// cache are shared between callers and must be treated as read-only; Shrink
// always returns a new sequence.
//
// # Color Representation
//
// Colors are reported as non-premultiplied 8-bit RGBA, with hex and HSL
// forms computed by github.com/lucasb-eyer/go-colorful.
package imaging
