package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/easyclip/internal/logging"
	"github.com/menta2k/easyclip/internal/utils"
	"github.com/menta2k/easyclip/pkg/types"
)

// ErrDecodeFailure is returned when a file cannot be read as an image.
var ErrDecodeFailure = errors.New("image decode failed")

// Processor handles the I/O around the clipping core: decoding photos,
// resolving where they live and writing clips back out.
type Processor struct {
	mu        sync.RWMutex
	resolvers map[string]ResolverFunc
	now       func() time.Time
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		resolvers: make(map[string]ResolverFunc),
		now:       time.Now,
	}
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders), honouring EXIF orientation
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return p.decodeImageFromBytes(data)
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	// Try standard image.Decode first
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	// Try WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("%w: unknown or unsupported format", ErrDecodeFailure)
}

// DecodeConfig reads only the dimensions of the image at path.
func (p *Processor) DecodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		return cfg, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		if cfg, err := webp.DecodeConfig(f); err == nil {
			return cfg, nil
		}
	}
	return image.Config{}, fmt.Errorf("%w: cannot read dimensions of %s", ErrDecodeFailure, path)
}

// DecodeSampled decodes the image at path, downsampled so that it is no
// larger than needed to fill reqWidth x reqHeight. See CalculateInSampleSize.
// ctx is checked between the header read and the full decode. Paths without
// an image extension are rejected before any I/O.
func (p *Processor) DecodeSampled(ctx context.Context, path string, reqWidth, reqHeight int) (types.SourceImage, error) {
	if !utils.IsImageFile(path) {
		return types.SourceImage{}, fmt.Errorf("%w: %s is not an image file", ErrDecodeFailure, path)
	}
	cfg, err := p.DecodeConfig(path)
	if err != nil {
		return types.SourceImage{}, err
	}
	sample := CalculateInSampleSize(cfg.Width, cfg.Height, reqWidth, reqHeight)

	if err := ctx.Err(); err != nil {
		return types.SourceImage{}, err
	}

	img, err := p.LoadImage(path)
	if err != nil {
		return types.SourceImage{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.SourceImage{}, err
	}

	if sample > 1 {
		b := img.Bounds()
		w := max(1, b.Dx()/sample)
		h := max(1, b.Dy()/sample)
		img = imaging.Resize(img, w, h, imaging.Box)
	}

	src := types.NewSourceImage(img)
	src.Path = path
	src.SampleSize = sample

	logging.Logger().Debug("image decoded",
		"path", path,
		"original_width", cfg.Width,
		"original_height", cfg.Height,
		"sample_size", sample)
	return src, nil
}

// CalculateInSampleSize returns the integer factor by which an image of
// width x height is shrunk at decode so it still fills reqWidth x reqHeight.
// The per-axis ratios are rounded and the smaller one governs; it is then
// moved onto the supported steps: below 3 as-is, below 6.5 four, below 8
// eight, otherwise the ratio itself. The result is at least 1.
func CalculateInSampleSize(width, height, reqWidth, reqHeight int) int {
	if reqWidth <= 0 || reqHeight <= 0 {
		return 1
	}
	if width <= reqWidth && height <= reqHeight {
		return 1
	}

	heightRatio := roundRatio(height, reqHeight)
	widthRatio := roundRatio(width, reqWidth)
	ratio := min(heightRatio, widthRatio)

	var sample int
	switch {
	case ratio < 3:
		sample = ratio
	case float64(ratio) < 6.5:
		sample = 4
	case ratio < 8:
		sample = 8
	default:
		sample = ratio
	}
	return max(1, sample)
}

func roundRatio(n, req int) int {
	return int(float64(n)/float64(req) + 0.5)
}
