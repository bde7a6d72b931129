// Package server implements the MCP (Model Context Protocol) server for pixelscale.
//
// The server speaks JSON-RPC 2.0 over a pair of streams, normally stdin and
// stdout: one request per line in, one response per line out. It lets an MCP
// client inspect pixel art and undo its upscaling.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load an image and report size, format and frame count
//   - image_detect_scale: Detect the upscale factor
//   - image_downscale: Detect and write the image at native resolution
//   - image_sample_color: Get the color at a pixel of any frame
//   - image_palette: List the exact colors of a frame
//   - image_stride_grid: Draw the block grid over a frame as a base64 PNG
//
// # Image Caching
//
// Images are loaded through the Unscaler's cache, so a client that loads,
// inspects and then downscales a file decodes it once. In-place downscales
// evict the overwritten file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. Lines that are not valid JSON get
// a -32700 parse error.
package server
