package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	apperrors "github.com/ironsheep/pixelscale/internal/errors"
	"github.com/ironsheep/pixelscale/internal/imaging"
	"github.com/ironsheep/pixelscale/internal/service"
	"github.com/ironsheep/pixelscale/internal/stride"
	"github.com/sirupsen/logrus"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_detect_scale").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000,
// except a path that does not exist, which is -32602 (invalid params).
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"tool":   params.Name,
			"status": apperrors.GetStatusCode(err),
		}).WithError(err).Info("tool failed")
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_detect_scale":
		return s.handleImageDetectScale(ctx, args)
	case "image_downscale":
		return s.handleImageDownscale(ctx, args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)
	case "image_palette":
		return s.handleImagePalette(args)
	case "image_stride_grid":
		return s.handleImageStrideGrid(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.unscaler.Load(a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.unscaler.Cache(), a.Path)
}

type imageDetectArgs struct {
	Path           string `json:"path"`
	IgnoreBorder   bool   `json:"ignore_border"`
	FirstFrameOnly bool   `json:"first_frame_only"`
}

func (s *Server) handleImageDetectScale(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.unscaler.Detect(ctx, a.Path, service.DetectOptions{
		IgnoreBorder:   a.IgnoreBorder,
		FirstFrameOnly: a.FirstFrameOnly,
	})
}

type imageDownscaleArgs struct {
	imageDetectArgs
	Output  string `json:"output"`
	InPlace bool   `json:"in_place"`
}

func (s *Server) handleImageDownscale(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageDownscaleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	resp, err := s.unscaler.Run(ctx, service.Request{
		Input:          a.Path,
		Output:         a.Output,
		InPlace:        a.InPlace,
		IgnoreBorder:   a.IgnoreBorder,
		FirstFrameOnly: a.FirstFrameOnly,
	})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w (%s)", err, resp.Reason)
		}
		return nil, err
	}
	return resp, nil
}

type imageSampleColorArgs struct {
	Path  string `json:"path"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Frame int    `json:"frame"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path, a.Frame)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(frame.Image, a.X, a.Y)
}

type imagePaletteArgs struct {
	Path  string `json:"path"`
	Limit *int   `json:"limit"`
	Frame int    `json:"frame"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	limit := 16
	if a.Limit != nil {
		limit = *a.Limit
	}
	frame, err := s.loadFrame(a.Path, a.Frame)
	if err != nil {
		return nil, err
	}
	return imaging.Palette(frame.Image, limit), nil
}

type imageStrideGridArgs struct {
	imageDetectArgs
	Stride int    `json:"stride"`
	Zoom   int    `json:"zoom"`
	Color  string `json:"color"`
	Frame  int    `json:"frame"`
}

type strideGridResult struct {
	*imaging.GridOverlayResult
	Detection *stride.Result `json:"detection,omitempty"`
}

// handleImageStrideGrid draws the block grid over one frame. Without an
// explicit stride the frame is detected on its own and a disproving pixel,
// if any, is outlined.
func (s *Server) handleImageStrideGrid(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageStrideGridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path, a.Frame)
	if err != nil {
		return nil, err
	}

	opts := imaging.GridOptions{Stride: a.Stride, Zoom: a.Zoom, Color: a.Color}
	var detection *stride.Result
	if opts.Stride == 0 {
		b := frame.Image.Bounds()
		single := &imaging.Sequence{Width: b.Dx(), Height: b.Dy(), Frames: []imaging.Frame{frame}}
		result, err := s.unscaler.DetectImage(ctx, single, service.DetectOptions{IgnoreBorder: a.IgnoreBorder})
		if err != nil {
			return nil, err
		}
		opts.Stride = result.Stride
		if result.Disproof != nil {
			opts.Mark = &image.Point{X: result.Disproof.X, Y: result.Disproof.Y}
		}
		detection = &result
	}

	overlay, err := imaging.GridOverlay(frame.Image, opts)
	if err != nil {
		return nil, err
	}
	return strideGridResult{GridOverlayResult: overlay, Detection: detection}, nil
}

func (s *Server) loadFrame(path string, index int) (imaging.Frame, error) {
	seq, err := s.unscaler.Load(path)
	if err != nil {
		return imaging.Frame{}, err
	}
	if index < 0 || index >= len(seq.Frames) {
		return imaging.Frame{}, fmt.Errorf("frame %d out of range (0-%d)", index, len(seq.Frames)-1)
	}
	return seq.Frames[index], nil
}
