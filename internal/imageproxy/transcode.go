package imageproxy

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"photofeed-backend/internal/config"
	"photofeed-backend/internal/telemetry"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"

	// registers the AVIF decoder with image.Decode
	_ "github.com/gen2brain/avif"
)

// Transcoder re-encodes images to lossy WebP at their original resolution
type Transcoder struct {
	quality  int
	method   int
	maxBytes int64
}

func NewTranscoder(cfg config.ImageConfig) *Transcoder {
	return &Transcoder{
		quality:  cfg.Quality,
		method:   cfg.Method,
		maxBytes: cfg.MaxBytes,
	}
}

// ToWebP decodes r, applies the EXIF orientation so clients never rotate, and
// returns the WebP encoding. Inputs larger than the configured cap are rejected.
func (t *Transcoder) ToWebP(r io.Reader) ([]byte, error) {
	start := time.Now()
	defer func() {
		telemetry.TranscodeDuration.Observe(time.Since(start).Seconds())
	}()

	data, err := io.ReadAll(io.LimitReader(r, t.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > t.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", t.maxBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	out := &bytes.Buffer{}
	if err := webp.Encode(out, img, webp.Options{Quality: t.quality, Method: t.method}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return out.Bytes(), nil
}
