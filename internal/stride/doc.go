// Package stride detects the integer factor by which a pixel-art image was
// magnified with nearest-neighbour (blocky) scaling.
//
// Detection works on the run lengths of uniformly coloured pixels. Every row
// and every column of a frame is scanned once; each maximal run of identical
// colour is "closed" when the colour changes or the line ends, and its length
// becomes evidence for the block size. A frame that was magnified by n has
// only runs whose length is a multiple of n, so the smallest observed run is
// the stride as long as every other run is a multiple of it.
//
// # Pipeline
//
//  1. ScanFrame walks a PixelSource and returns a Scan: either a Disproof (a
//     lone one-pixel run was found, so no stride can explain the frame) or the
//     CandidateSet of observed run lengths.
//  2. Reduce turns the candidate set into a stride, or Undetected.
//  3. Detector drives ScanFrame across the frames of an animation, merges
//     their candidates and calls Reduce once.
//
// # Sentinel
//
// Undetected (1) is the only failure signal. It covers disproved frames,
// empty evidence, a smallest run of one pixel and inconsistent run lengths.
// A Result also carries a Reason that explains which of these happened;
// callers that only need the integer can ignore it. An image that is already
// at its native resolution is reported as Undetected too.
//
// # Colours
//
// Pixels are compared exactly, channel by channel, in non-premultiplied 8-bit
// RGBA. Fully transparent runs (alpha 0) never become candidates but still
// trigger a disproof when they are a single pixel long.
//
// # Border suppression
//
// With ignoreBorder set, the first and the last run of every row and column
// are skipped entirely. This tolerates a decorative frame that is not aligned
// to the pixel grid. It is a heuristic: content that touches the image edge is
// skipped as well.
//
// # Thread Safety
//
// All functions are pure with respect to their inputs. A Detector may be used
// concurrently; with Options.Workers above one it scans frames in parallel
// and stops the remaining scans as soon as one frame is disproved.
package stride
