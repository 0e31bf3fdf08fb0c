// Package workspace confines tool-supplied image paths to a single
// root directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors raised by Resolve. Match with errors.Is; the wrapped
// message carries the offending detail.
var (
	ErrOutsideRoot     = errors.New("path outside workspace root")
	ErrNotFound        = errors.New("file not found")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// allowedExtensions is the raster allow-list. Lookup is on the
// lowercased extension, so matching is case-insensitive.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
}

// Resolver validates image paths against one root directory.
type Resolver struct {
	root string // absolute, symlink-resolved, no trailing separator
}

// NewResolver canonicalizes root and anchors a resolver there. The root
// must be an existing directory.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", resolved)
	}
	return &Resolver{root: resolved}, nil
}

// Root returns the canonical workspace root.
func (r *Resolver) Root() string { return r.root }

// Resolve turns a raw tool argument into an absolute path proven to be
// a supported image file inside the workspace root. Relative paths are
// joined to the root; absolute paths are taken as-is.
//
// Checks run in a fixed order: containment, then existence, then
// extension. Containment is checked lexically before the filesystem is
// touched, so a path outside the root reports ErrOutsideRoot whether or
// not anything exists there. Symlinks are resolved and the containment
// check repeated, so a link inside the root cannot reach outside it,
// whether or not its target exists.
func (r *Resolver) Resolve(raw string) (string, error) {
	candidate := raw
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(r.root, candidate)
	}
	candidate = filepath.Clean(candidate)

	if !r.contains(candidate) {
		return "", fmt.Errorf("%w: %s must be within %s", ErrOutsideRoot, raw, r.root)
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			// EvalSymlinks fails on a missing target, so containment is
			// decided on where the path would land. A dangling link aimed
			// outside the root must fail the same way as one whose target
			// exists, or the error identity would reveal whether outside
			// files exist.
			if !r.contains(missingTarget(candidate)) {
				return "", fmt.Errorf("%w: %s must be within %s", ErrOutsideRoot, raw, r.root)
			}
			return "", fmt.Errorf("%w: %s", ErrNotFound, raw)
		}
		return "", fmt.Errorf("resolving %s: %w", raw, err)
	}
	if !r.contains(resolved) {
		return "", fmt.Errorf("%w: %s must be within %s", ErrOutsideRoot, raw, r.root)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, raw)
		}
		return "", fmt.Errorf("stat %s: %w", raw, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, raw)
	}

	ext := strings.ToLower(filepath.Ext(resolved))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	return resolved, nil
}

// contains reports whether path equals the root or lives under it.
// Separator-aware so /work never matches /workdir.
func (r *Resolver) contains(path string) bool {
	if path == r.root {
		return true
	}
	return strings.HasPrefix(path, r.root+string(filepath.Separator))
}

// missingTarget reports where a nonexistent path would land once every
// component that does exist is resolved. EvalSymlinks cannot answer
// this (it fails on the missing target), so existing ancestors are
// canonicalized and dangling links followed lexically. The hop cap
// matches the kernel's symlink limit; past it, or on a read failure,
// the partially resolved form is returned and containment decides.
func missingTarget(candidate string) string {
	path := candidate
	tail := ""
	for hops := 0; hops < 40; hops++ {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			return filepath.Join(resolved, tail)
		}
		if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				break
			}
			if !filepath.IsAbs(link) {
				link = filepath.Join(filepath.Dir(path), link)
			}
			path = filepath.Clean(link)
			continue
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		tail = filepath.Join(filepath.Base(path), tail)
		path = parent
	}
	return filepath.Join(path, tail)
}

// Rel reports a resolved path relative to the root, the form every tool
// result uses. Falls back to the input if it is not under the root.
func (r *Resolver) Rel(resolved string) string {
	rel, err := filepath.Rel(r.root, resolved)
	if err != nil {
		return resolved
	}
	return rel
}
