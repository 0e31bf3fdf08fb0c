// Package config loads the bridge's runtime settings from the
// environment, once, at startup. Everything below main receives the
// resulting Config (or values from it) explicitly; no other package
// consults the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultHost    = "http://localhost:11434"
	DefaultModel   = "qwen2.5vl:7b"
	DefaultMaxEdge = 1600
	DefaultTimeout = 120 * time.Second
)

// Config holds the bridge's settings. It is immutable after Load.
type Config struct {
	// WorkspaceRoot is the absolute path of the directory image paths
	// are confined to. Relative tool paths are joined to it.
	WorkspaceRoot string

	// Host is the backend base URL, without a trailing slash.
	Host string

	// Model is the vision-capable model id sent with every request.
	Model string

	// MaxEdge bounds the longer side of normalized images, in pixels.
	MaxEdge int

	// Timeout bounds each backend call end to end.
	Timeout time.Duration
}

// Load reads the environment, applies defaults, and validates the
// result. The workspace root is made absolute here; an empty variable
// counts as unset.
func Load() (*Config, error) {
	cfg := &Config{
		WorkspaceRoot: ".",
		Host:          DefaultHost,
		Model:         DefaultModel,
		MaxEdge:       DefaultMaxEdge,
		Timeout:       DefaultTimeout,
	}

	if v := os.Getenv("WORKSPACE_ROOT"); v != "" {
		cfg.WorkspaceRoot = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("VISION_MAX_EDGE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("VISION_MAX_EDGE: want a positive integer, got %q", v)
		}
		cfg.MaxEdge = n
	}
	if v := os.Getenv("VISION_TIMEOUT_S"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("VISION_TIMEOUT_S: want a positive integer, got %q", v)
		}
		cfg.Timeout = time.Duration(n) * time.Second
	}

	cfg.Host = strings.TrimRight(cfg.Host, "/")
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("OLLAMA_HOST: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("OLLAMA_HOST: want http(s)://host[:port], got %q", cfg.Host)
	}

	root, err := filepath.Abs(cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("WORKSPACE_ROOT: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("WORKSPACE_ROOT: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("WORKSPACE_ROOT: %s is not a directory", root)
	}
	cfg.WorkspaceRoot = root

	return cfg, nil
}
