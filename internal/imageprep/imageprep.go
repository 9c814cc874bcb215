package imageprep

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxHeight = 1024
	jpegQuality      = 95
	dataURLPrefix    = "data:image/jpeg;base64,"

	// decoded images above this many pixels are refused before allocation
	MaxPixels = 40_000_000
)

var (
	ErrEmptyPayload  = errors.New("empty image payload")
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// normalizes uploaded images before they are sent to the remote service
type Preprocessor struct {
	quality int
}

func New() *Preprocessor {
	return &Preprocessor{quality: jpegQuality}
}

// decodes a base64 image (raw or data URL), flattens alpha onto white,
// downsizes to maxHeight keeping the aspect ratio and returns a JPEG data URL
func (p *Preprocessor) Prepare(payload string, maxHeight int) (string, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image header: %w", err)
	}

	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return "", fmt.Errorf("image %s has no pixels", format)
	}

	if height > maxHeight {
		width = max(width*maxHeight/height, 1)
		height = maxHeight
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// wraps an unprocessed payload as a data URL, used when Prepare fails
func Passthrough(payload string) string {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		return payload
	}

	return dataURLPrefix + payload
}

func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}

		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip padding
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
	}

	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	return raw, nil
}
