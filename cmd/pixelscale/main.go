// Package main provides the entry point for the pixelscale CLI.
//
// pixelscale detects the integer factor a piece of pixel art was upscaled
// by and writes it back at its native resolution.
//
// Usage:
//
//	pixelscale sprite.png                 # writes sprite.scaled.png
//	pixelscale -i sprite.gif              # overwrites sprite.gif
//	pixelscale detect sprite.png          # prints the factor only
//	pixelscale mcp                        # MCP server on stdio
//	pixelscale serve --addr :8080         # HTTP API
//
// See --help for all available options.
package main

// main is the entry point for pixelscale.
func main() {
	Execute()
}
