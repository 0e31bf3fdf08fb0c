// Package server implements the MCP (Model Context Protocol) server for the
// vision bridge.
//
// This package provides a JSON-RPC 2.0 server that lets a text-only coding
// assistant look at images through a locally hosted vision model. Tool calls
// name an image inside the workspace; the server validates the path, prepares
// the pixels, forwards them to the Ollama backend, and returns the model's
// reply as structured JSON.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Model-backed tools:
//   - vision_ask: Free-form question about an image
//   - vision_ocr: Extract all visible text
//   - vision_ui_spec: Structured JSON description of a UI screenshot
//   - vision_ask_region: Question about a cropped rectangle of an image
//
// Local-only tools:
//   - vision_info: Image metadata without a model call
//
// # Image Handling
//
// Every image is resolved against the configured workspace root; paths that
// escape the root, including through symlinks, are rejected before any file
// content is read. Accepted formats are PNG, JPEG, WebP, and BMP. Before
// transport the image is flattened to opaque color, downscaled so its longer
// side fits the configured bound, and re-encoded as PNG in memory. Nothing
// is written to disk.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Requests are processed one at a time in arrival order; slow model calls
// simply delay the requests queued behind them.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
