package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/vision-bridge-mcp/internal/config"
	"github.com/ironsheep/vision-bridge-mcp/internal/imaging"
	"github.com/ironsheep/vision-bridge-mcp/internal/ollama"
	"github.com/ironsheep/vision-bridge-mcp/internal/workspace"
)

// Server handles MCP protocol communication and owns the vision
// pipeline shared by every tool: path resolution, normalization, and
// the backend client.
type Server struct {
	resolver   *workspace.Resolver
	normalizer *imaging.Normalizer
	backend    *ollama.Client
	tools      map[string]toolFunc
}

// toolFunc executes one tool call. The returned value is marshalled
// into the MCP content wrapper.
type toolFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New wires the pipeline from cfg and builds the tool table. The table
// is the single routing authority: tools/list and tools/call both work
// off what is registered here.
func New(cfg *config.Config) (*Server, error) {
	resolver, err := workspace.NewResolver(cfg.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	backend, err := ollama.NewClient(cfg.Host, cfg.Model, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	s := &Server{
		resolver:   resolver,
		normalizer: imaging.NewNormalizer(cfg.MaxEdge),
		backend:    backend,
	}
	s.tools = map[string]toolFunc{
		"vision_ask":        s.handleVisionAsk,
		"vision_ocr":        s.handleVisionOCR,
		"vision_ui_spec":    s.handleVisionUISpec,
		"vision_ask_region": s.handleVisionAskRegion,
		"vision_info":       s.handleVisionInfo,
	}
	return s, nil
}

// Run starts the MCP server, reading requests from stdin and writing
// responses to stdout until EOF. Requests are handled one at a time,
// in order.
func (s *Server) Run() error {
	return s.serve(os.Stdin, os.Stdout)
}

func (s *Server) serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)
	ctx := context.Background()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			resp := s.errorResponse(nil, -32700, "Parse error", err.Error())
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "vision-bridge-mcp",
				"version": "0.1.0",
			},
		},
	}
}
