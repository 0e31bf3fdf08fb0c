package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// newFilledImage returns an opaque image of the given size.
func newFilledImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writeImage encodes img into dir under name, picking the encoder from
// the extension, and returns the full path.
func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		t.Fatalf("no encoder for %s", name)
	}
	if err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// decodeResult decodes a Normalized back into pixels for inspection.
func decodeResult(t *testing.T, norm *Normalized) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(norm.PNG))
	if err != nil {
		t.Fatalf("failed to decode normalized output: %v", err)
	}
	if format != "png" {
		t.Errorf("output format: got %s, want png", format)
	}
	return img
}

func TestNormalize_KeepsSmallImages(t *testing.T) {
	n := NewNormalizer(1600)

	norm, err := n.Normalize(newFilledImage(800, 600, color.RGBA{10, 20, 30, 255}))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Width != 800 || norm.Height != 600 {
		t.Errorf("dimensions: got %dx%d, want 800x600", norm.Width, norm.Height)
	}

	img := decodeResult(t, norm)
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 600 {
		t.Errorf("decoded dimensions: got %dx%d, want 800x600", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestNormalize_DownscalesToEdgeBound(t *testing.T) {
	n := NewNormalizer(1600)

	norm, err := n.Normalize(image.NewRGBA(image.Rect(0, 0, 3200, 1800)))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Width != 1600 || norm.Height != 900 {
		t.Errorf("dimensions: got %dx%d, want 1600x900", norm.Width, norm.Height)
	}
}

func TestNormalize_PortraitOrientation(t *testing.T) {
	n := NewNormalizer(1600)

	norm, err := n.Normalize(image.NewRGBA(image.Rect(0, 0, 1800, 3200)))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Width != 900 || norm.Height != 1600 {
		t.Errorf("dimensions: got %dx%d, want 900x1600", norm.Width, norm.Height)
	}
}

func TestNormalize_TruncatesFractionalPixels(t *testing.T) {
	n := NewNormalizer(100)

	// scale = 100/1000; 333 * 0.1 = 33.3, truncated to 33.
	norm, err := n.Normalize(image.NewRGBA(image.Rect(0, 0, 333, 1000)))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Width != 33 || norm.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 33x100", norm.Width, norm.Height)
	}
}

func TestNormalize_ClampsDegenerateAxis(t *testing.T) {
	n := NewNormalizer(1600)

	norm, err := n.Normalize(image.NewRGBA(image.Rect(0, 0, 4000, 1)))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Width != 1600 || norm.Height != 1 {
		t.Errorf("dimensions: got %dx%d, want 1600x1", norm.Width, norm.Height)
	}
}

func TestNormalize_NeverUpscales(t *testing.T) {
	n := NewNormalizer(1600)

	norm, err := n.Normalize(newFilledImage(4, 4, color.RGBA{255, 0, 0, 255}))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm.Width != 4 || norm.Height != 4 {
		t.Errorf("dimensions: got %dx%d, want 4x4", norm.Width, norm.Height)
	}
}

func TestNormalize_FlattensAlpha(t *testing.T) {
	n := NewNormalizer(1600)

	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 0})    // fully transparent
	src.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 128})  // half transparent

	norm, err := n.Normalize(src)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	img := decodeResult(t, norm)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				t.Fatalf("pixel (%d,%d) is not opaque: alpha %d", x, y, a)
			}
		}
	}

	// A fully transparent pixel composites to the black canvas.
	if r, g, b, _ := img.At(0, 0).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("transparent pixel should flatten to black, got (%d,%d,%d)", r, g, b)
	}
}

func TestNormalizeFile_Formats(t *testing.T) {
	n := NewNormalizer(1600)
	dir := t.TempDir()
	src := newFilledImage(64, 48, color.RGBA{0, 128, 255, 255})

	// WebP is decode-only in the registry, so it has no writer here;
	// the remaining allow-list formats round-trip.
	for _, name := range []string{"shot.png", "shot.jpg", "shot.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := writeImage(t, dir, name, src)

			norm, err := n.NormalizeFile(path)
			if err != nil {
				t.Fatalf("NormalizeFile failed: %v", err)
			}
			if norm.Width != 64 || norm.Height != 48 {
				t.Errorf("dimensions: got %dx%d, want 64x48", norm.Width, norm.Height)
			}
			decodeResult(t, norm)
		})
	}
}

func TestNormalizeFile_DownscalesFromDisk(t *testing.T) {
	n := NewNormalizer(100)
	path := writeImage(t, t.TempDir(), "big.png", image.NewRGBA(image.Rect(0, 0, 200, 150)))

	norm, err := n.NormalizeFile(path)
	if err != nil {
		t.Fatalf("NormalizeFile failed: %v", err)
	}
	if norm.Width != 100 || norm.Height != 75 {
		t.Errorf("dimensions: got %dx%d, want 100x75", norm.Width, norm.Height)
	}
}

func TestNormalizeFile_CorruptContent(t *testing.T) {
	n := NewNormalizer(1600)
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("this is not a png"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := n.NormalizeFile(path)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestNormalizeFile_MissingFile(t *testing.T) {
	n := NewNormalizer(1600)

	_, err := n.NormalizeFile(filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Fatal("NormalizeFile should fail for a missing file")
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("a missing file is not a decode failure: %v", err)
	}
}
