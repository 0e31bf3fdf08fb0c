package imaging

import (
	"fmt"
	"image"
	"os"
)

// Info describes an image file without fully decoding it, plus the
// dimensions the backend would be shown after normalization.
type Info struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Format           string `json:"format"`
	FileSizeBytes    int64  `json:"file_size_bytes"`
	NormalizedWidth  int    `json:"normalized_width"`
	NormalizedHeight int    `json:"normalized_height"`
}

// Inspect probes the image header at path. Format detection comes from
// the decoder registry, not the file extension. The normalized
// dimensions follow the same scaling math as Normalize, so callers can
// map pixel coordinates returned by the backend onto the original file.
func (n *Normalizer) Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	nw, nh := n.boundedSize(cfg.Width, cfg.Height)
	return &Info{
		Width:            cfg.Width,
		Height:           cfg.Height,
		Format:           format,
		FileSizeBytes:    stat.Size(),
		NormalizedWidth:  nw,
		NormalizedHeight: nh,
	}, nil
}
