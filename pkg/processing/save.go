package processing

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/easyclip/internal/logging"
	"github.com/menta2k/easyclip/internal/utils"
	"github.com/menta2k/easyclip/pkg/types"
)

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		return encodeWebP(f, img, &webp.Options{Lossless: lossless, Quality: float32(quality)})
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// encodeWebP encodes img into w and closes it. A failed close is reported
// when the encode itself succeeded.
func encodeWebP(w io.WriteCloser, img image.Image, opts *webp.Options) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close webp output: %w", cerr)
		}
	}()
	return webp.Encode(w, img, opts)
}

// SaveClip writes a clip into dir under a timestamped name such as
// clip_1700000000123.jpg and describes the written file.
func (p *Processor) SaveClip(img image.Image, dir, prefix, format string, quality int) (types.ClipResult, error) {
	if img == nil {
		return types.ClipResult{}, fmt.Errorf("save clip: nil image")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return types.ClipResult{}, fmt.Errorf("failed to create clip directory: %w", err)
	}

	format = utils.NormalizeFormat(format)
	path := utils.ClipFilename(dir, prefix, format, p.now())
	if err := p.SaveImage(img, path, format, quality, false); err != nil {
		return types.ClipResult{}, fmt.Errorf("failed to save clip: %w", err)
	}

	b := img.Bounds()
	result := types.ClipResult{Path: path, Width: b.Dx(), Height: b.Dy(), Format: format}
	logging.Logger().Info("clip saved",
		"path", result.Path,
		"width", result.Width,
		"height", result.Height)
	return result, nil
}
