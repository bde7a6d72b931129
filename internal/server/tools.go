package server

import "github.com/ironsheep/pixelscale/internal/imaging"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func detectProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"ignore_border": map[string]interface{}{
			"type":        "boolean",
			"description": "Ignore the first and last run of every row and column, for artwork with a frame or padding. Default false",
			"default":     false,
		},
		"first_frame_only": map[string]interface{}{
			"type":        "boolean",
			"description": "Only analyse the first frame of an animation. Default false",
			"default":     false,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	downscale := detectProperties()
	downscale["output"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional output path. Defaults to <name>.scaled.<ext> next to the input; the extension selects the format",
	}
	downscale["in_place"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Overwrite the input file. Cannot be combined with output",
		"default":     false,
	}

	grid := detectProperties()
	delete(grid, "first_frame_only")
	grid["stride"] = map[string]interface{}{
		"type":        "integer",
		"description": "Block size to draw. Default 0 detects it on the chosen frame",
		"default":     0,
	}
	grid["zoom"] = map[string]interface{}{
		"type":        "integer",
		"description": "Nearest-neighbour magnification applied before drawing. Default 1",
		"default":     1,
	}
	grid["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Grid line color as #RRGGBB or #RRGGBBAA. Default " + imaging.DefaultGridColor,
	}
	grid["frame"] = map[string]interface{}{
		"type":        "integer",
		"description": "Frame index for animations. Default 0",
		"default":     0,
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and frame count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_detect_scale",
			Description: "Detect the integer factor a piece of pixel art was upscaled by. A stride of 1 means no scale could be established, not that the image is at native resolution.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_downscale",
			Description: "Detect the upscale factor of a pixel art image and write it back at native resolution. Animated GIFs keep every frame.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": downscale,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
					"frame": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index for animations. Default 0",
						"default":     0,
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_palette",
			Description: "List the exact colors of an image frame, most common first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors to return. Default 16, 0 for all",
						"default":     16,
					},
					"frame": map[string]interface{}{
						"type":        "integer",
						"description": "Frame index for animations. Default 0",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_stride_grid",
			Description: "Draw the pixel block grid over an image frame and return it as a base64 PNG, outlining the pixel that ruled out a scale when detection fails.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": grid,
				"required":   []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
