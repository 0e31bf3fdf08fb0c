package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/disintegration/imaging"

	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrDecode reports image content that could not be decoded. The
// wrapped message carries the underlying cause.
var ErrDecode = errors.New("cannot decode image")

// Normalizer prepares workspace images for transport to the vision
// backend: one consistent pixel format (opaque color, no alpha, no
// palette), dimensions bounded by maxEdge, re-encoded as lossless PNG.
// Nothing is ever written to disk.
type Normalizer struct {
	maxEdge int
}

// NewNormalizer returns a normalizer bounding the longer image side to
// maxEdge pixels.
func NewNormalizer(maxEdge int) *Normalizer {
	return &Normalizer{maxEdge: maxEdge}
}

// Normalized is a transport-ready rendition of a source image.
type Normalized struct {
	PNG    []byte
	Width  int
	Height int
}

// Decode reads and decodes a raster image file. The registered formats
// are exactly the workspace allow-list: PNG, JPEG, WebP, and BMP.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// NormalizeFile decodes the image at path and normalizes it.
func (n *Normalizer) NormalizeFile(path string) (*Normalized, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return n.Normalize(img)
}

// Normalize flattens img to opaque color, downscales it if its longer
// side exceeds the edge bound, and re-encodes it as PNG in memory.
//
// The scale factor is maxEdge over the longer side; both axes are
// multiplied by it with fractional pixels truncated, so a 3200x1800
// image bounded at 1600 comes out exactly 1600x900. Images already
// within the bound keep their dimensions; nothing is ever upscaled.
func (n *Normalizer) Normalize(img image.Image) (*Normalized, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	// Composite over an opaque canvas so no alpha channel or palette
	// survives into the transport encoding.
	flat := imaging.New(w, h, color.NRGBA{0, 0, 0, 255})
	flat = imaging.Overlay(flat, img, image.Point{}, 1.0)

	if nw, nh := n.boundedSize(w, h); nw != w || nh != h {
		flat = imaging.Resize(flat, nw, nh, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	out := flat.Bounds()
	return &Normalized{
		PNG:    buf.Bytes(),
		Width:  out.Dx(),
		Height: out.Dy(),
	}, nil
}

// boundedSize applies the edge bound to a width/height pair: unchanged
// when within the bound, otherwise both axes scaled by maxEdge over the
// longer side with fractions truncated. A degenerate axis clamps to one
// pixel.
func (n *Normalizer) boundedSize(w, h int) (int, int) {
	edge := max(w, h)
	if edge <= n.maxEdge {
		return w, h
	}
	scale := float64(n.maxEdge) / float64(edge)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
