// Package ollama talks to the local vision backend over its chat API.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Sentinel errors for the two transport-level failure classes. Non-2xx
// responses are reported as *StatusError instead; match with errors.As.
var (
	ErrUnavailable = errors.New("backend unavailable")
	ErrTimeout     = errors.New("backend timeout")
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error: status %d: %s", e.StatusCode, e.Body)
}

// Client sends single-shot chat requests to the backend. One request
// carries exactly one image; there is no retry and no streaming.
type Client struct {
	api   *api.Client
	model string
}

// NewClient builds a client for the given base URL (no trailing slash)
// and model id. timeout bounds each Chat call end to end.
func NewClient(host, model string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("backend host: %w", err)
	}
	return &Client{
		api:   api.NewClient(base, &http.Client{Timeout: timeout}),
		model: model,
	}, nil
}

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

// Chat sends prompt plus one PNG image and returns the reply's message
// content, trimmed of surrounding whitespace and defaulting to the
// empty string. When jsonMode is set the backend is asked to format the
// reply as JSON. Exactly one attempt is made; failures are classified
// into ErrUnavailable, ErrTimeout, or *StatusError.
//
// The image bytes ride the request as the single entry of the message's
// images array; api.ImageData marshals them as base64 on the wire.
func (c *Client) Chat(ctx context.Context, prompt string, png []byte, jsonMode bool) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{png},
			},
		},
		Stream: &stream,
	}
	if jsonMode {
		req.Format = json.RawMessage(`"json"`)
	}

	var reply strings.Builder
	err := c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(reply.String()), nil
}

// classify maps a transport error onto the bridge's failure classes.
func classify(err error) error {
	var status api.StatusError
	if errors.As(err, &status) {
		body := status.ErrorMessage
		if body == "" {
			body = status.Status
		}
		return &StatusError{StatusCode: status.StatusCode, Body: body}
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
