package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imagePathProperty is the schema fragment shared by every tool: all of
// them start from an image inside the workspace.
func imagePathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Path to the image file, relative to the workspace root (or absolute inside it)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "vision_ask",
			Description: "Ask a vision-capable model a free-form question about an image in the workspace. Use for: \"What's in this screenshot?\", \"Which button is selected?\", \"Describe the layout\".",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": imagePathProperty(),
					"question": map[string]interface{}{
						"type":        "string",
						"description": "The question to ask about the image",
					},
				},
				"required": []string{"image_path", "question"},
			},
		},
		{
			Name:        "vision_ocr",
			Description: "Extract all visible text from an image (OCR-style, best effort). Preserves spelling, casing, punctuation, and line breaks; unreadable spans are marked [illegible].",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": imagePathProperty(),
				},
				"required": []string{"image_path"},
			},
		},
		{
			Name:        "vision_ui_spec",
			Description: "Turn a UI screenshot into a structured JSON spec (summary plus elements with type, label, role, pixel bounds). Falls back to the raw model reply when it is not valid JSON.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": imagePathProperty(),
				},
				"required": []string{"image_path"},
			},
		},
		{
			Name:        "vision_ask_region",
			Description: "Ask a question about a rectangular region of an image. The region is cropped out and sent to the model on its own, which helps with small details in large screenshots.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": imagePathProperty(),
					"question": map[string]interface{}{
						"type":        "string",
						"description": "The question to ask about the region",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
				},
				"required": []string{"image_path", "question", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "vision_info",
			Description: "Get image metadata without calling the model: dimensions, detected format, file size, and the dimensions the model would be shown after downscaling. Useful for mapping vision_ui_spec bounds back to original pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": imagePathProperty(),
				},
				"required": []string{"image_path"},
			},
		},
	}
}

// handleToolsList responds with the tool definitions
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
