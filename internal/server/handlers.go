package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ironsheep/vision-bridge-mcp/internal/imaging"
	"github.com/ironsheep/vision-bridge-mcp/internal/uispec"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "vision_ask", "vision_info").
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
// Unknown tool names and malformed parameters return -32602. Tool
// execution errors return a JSON-RPC error response with code -32000;
// the data field carries the underlying message (path rejection,
// decode failure, backend status, timeout).
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return s.errorResponse(req.ID, -32602, "Unknown tool", params.Name)
	}

	result, err := tool(ctx, params.Arguments)
	if err != nil {
		log.Printf("tool %s failed: %v", params.Name, err)
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

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadNormalized resolves a workspace path and prepares the image for
// transport. The returned name is the resolved path relative to the
// workspace root, which is how results refer to images no matter how
// the caller spelled the argument.
func (s *Server) loadNormalized(path string) (string, *imaging.Normalized, error) {
	if path == "" {
		return "", nil, fmt.Errorf("image_path is required")
	}
	resolved, err := s.resolver.Resolve(path)
	if err != nil {
		return "", nil, err
	}
	norm, err := s.normalizer.NormalizeFile(resolved)
	if err != nil {
		return "", nil, err
	}
	return s.resolver.Rel(resolved), norm, nil
}

type visionAskArgs struct {
	ImagePath string `json:"image_path"`
	Question  string `json:"question"`
}

type visionAskResult struct {
	Model  string `json:"model"`
	Image  string `json:"image"`
	Answer string `json:"answer"`
}

func (s *Server) handleVisionAsk(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a visionAskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Question == "" {
		return nil, fmt.Errorf("question is required")
	}
	image, norm, err := s.loadNormalized(a.ImagePath)
	if err != nil {
		return nil, err
	}
	answer, err := s.backend.Chat(ctx, a.Question, norm.PNG, false)
	if err != nil {
		return nil, err
	}
	return &visionAskResult{
		Model:  s.backend.Model(),
		Image:  image,
		Answer: answer,
	}, nil
}

type visionOCRArgs struct {
	ImagePath string `json:"image_path"`
}

type visionOCRResult struct {
	Model string `json:"model"`
	Image string `json:"image"`
	Text  string `json:"text"`
}

func (s *Server) handleVisionOCR(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a visionOCRArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	image, norm, err := s.loadNormalized(a.ImagePath)
	if err != nil {
		return nil, err
	}
	text, err := s.backend.Chat(ctx, ocrPrompt, norm.PNG, false)
	if err != nil {
		return nil, err
	}
	return &visionOCRResult{
		Model: s.backend.Model(),
		Image: image,
		Text:  text,
	}, nil
}

type visionUISpecArgs struct {
	ImagePath string `json:"image_path"`
}

// visionUISpecResult and visionUISpecRawResult are the two outcomes of
// vision_ui_spec. Exactly one of the ui / ui_raw keys appears, and the
// key is present even when its value is empty, so callers branch on
// key presence alone.
type visionUISpecResult struct {
	Model string           `json:"model"`
	Image string           `json:"image"`
	UI    *uispec.Document `json:"ui"`
}

type visionUISpecRawResult struct {
	Model string `json:"model"`
	Image string `json:"image"`
	UIRaw string `json:"ui_raw"`
}

func (s *Server) handleVisionUISpec(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a visionUISpecArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	image, norm, err := s.loadNormalized(a.ImagePath)
	if err != nil {
		return nil, err
	}
	reply, err := s.backend.Chat(ctx, uiSpecPrompt, norm.PNG, true)
	if err != nil {
		return nil, err
	}

	doc, err := uispec.Parse(reply)
	if err != nil {
		// The call still succeeds: the caller gets the raw reply
		// under ui_raw and can retry or read it as prose.
		log.Printf("ui spec reply not parseable: %v", err)
		return &visionUISpecRawResult{
			Model: s.backend.Model(),
			Image: image,
			UIRaw: reply,
		}, nil
	}
	return &visionUISpecResult{
		Model: s.backend.Model(),
		Image: image,
		UI:    doc,
	}, nil
}

type visionAskRegionArgs struct {
	ImagePath string `json:"image_path"`
	Question  string `json:"question"`
	X1        int    `json:"x1"`
	Y1        int    `json:"y1"`
	X2        int    `json:"x2"`
	Y2        int    `json:"y2"`
}

type visionAskRegionResult struct {
	Model  string       `json:"model"`
	Image  string       `json:"image"`
	Region imaging.Rect `json:"region"`
	Answer string       `json:"answer"`
}

func (s *Server) handleVisionAskRegion(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a visionAskRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImagePath == "" {
		return nil, fmt.Errorf("image_path is required")
	}
	if a.Question == "" {
		return nil, fmt.Errorf("question is required")
	}
	resolved, err := s.resolver.Resolve(a.ImagePath)
	if err != nil {
		return nil, err
	}

	// Crop before normalizing so the region is addressed in original
	// pixel coordinates; only the crop itself is bounded for transport.
	img, err := imaging.Decode(resolved)
	if err != nil {
		return nil, err
	}
	region := imaging.Rect{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
	cropped, err := imaging.CropRegion(img, region)
	if err != nil {
		return nil, err
	}
	norm, err := s.normalizer.Normalize(cropped)
	if err != nil {
		return nil, err
	}

	answer, err := s.backend.Chat(ctx, a.Question, norm.PNG, false)
	if err != nil {
		return nil, err
	}
	return &visionAskRegionResult{
		Model:  s.backend.Model(),
		Image:  s.resolver.Rel(resolved),
		Region: region,
		Answer: answer,
	}, nil
}

type visionInfoArgs struct {
	ImagePath string `json:"image_path"`
}

type visionInfoResult struct {
	Image string `json:"image"`
	imaging.Info
}

func (s *Server) handleVisionInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a visionInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImagePath == "" {
		return nil, fmt.Errorf("image_path is required")
	}
	resolved, err := s.resolver.Resolve(a.ImagePath)
	if err != nil {
		return nil, err
	}
	info, err := s.normalizer.Inspect(resolved)
	if err != nil {
		return nil, err
	}
	return &visionInfoResult{
		Image: s.resolver.Rel(resolved),
		Info:  *info,
	}, nil
}
