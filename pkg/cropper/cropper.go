package cropper

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/menta2k/easyclip/pkg/geom"
)

// ErrInvalidRegion is returned when the crop rectangle has no pixels after
// rounding or reaches outside the rendered surface.
var ErrInvalidRegion = errors.New("crop region is empty or out of bounds")

// Cropper extracts the pixels under the crop window
type Cropper struct {
	config CropConfig
}

// CropConfig holds configuration for clip extraction
type CropConfig struct {
	// Interpolation names the resampling kernel used when rendering the
	// transformed photo: nearest, approx-bilinear, bilinear or catmull-rom.
	Interpolation string
	// FullResolution extracts from source pixels instead of the view-sized render.
	FullResolution bool
}

// Interpolations lists the accepted Interpolation names
func Interpolations() []string {
	return []string{"nearest", "approx-bilinear", "bilinear", "catmull-rom"}
}

// New creates a new Cropper with default configuration
func New() *Cropper {
	return &Cropper{
		config: CropConfig{
			Interpolation: "approx-bilinear",
		},
	}
}

// NewWithConfig creates a new Cropper with custom configuration
func NewWithConfig(config CropConfig) *Cropper {
	return &Cropper{config: config}
}

// Config returns the active configuration
func (c *Cropper) Config() CropConfig {
	return c.config
}

// Frame is everything needed to reproduce what the user sees: the photo, the
// transform placing it in the view, the view size and the crop window.
type Frame struct {
	Source     image.Image
	Transform  geom.Transform
	ViewWidth  int
	ViewHeight int
	Crop       geom.Rect
}

// Capture crops f according to the configuration.
func (c *Cropper) Capture(f Frame) (*image.NRGBA, error) {
	if c.config.FullResolution {
		return c.CropSource(f.Source, f.Transform, f.Crop)
	}
	return c.Crop(f.Source, f.Transform, image.Pt(f.ViewWidth, f.ViewHeight), f.Crop)
}

// Crop renders src under t into an off-screen surface the size of the view
// and returns the pixels bounded by cropRect.
func (c *Cropper) Crop(src image.Image, t geom.Transform, view image.Point, cropRect geom.Rect) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("crop: nil source image")
	}
	region := cropRect.Round()
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %v has no area", ErrInvalidRegion, region)
	}
	if !region.In(image.Rectangle{Max: view}) {
		return nil, fmt.Errorf("%w: %v outside view %dx%d", ErrInvalidRegion, region, view.X, view.Y)
	}

	surface := c.Render(src, t, view)
	return imaging.Crop(surface, region), nil
}

// CropSource maps cropRect back through t and extracts the matching region of
// src at its own resolution.
func (c *Cropper) CropSource(src image.Image, t geom.Transform, cropRect geom.Rect) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("crop: nil source image")
	}
	bounds := src.Bounds()
	local := t.Inverse().MapRect(cropRect)
	region := local.Round().Add(bounds.Min)
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %v has no area", ErrInvalidRegion, region)
	}
	if !region.In(bounds) {
		return nil, fmt.Errorf("%w: %v outside source %v", ErrInvalidRegion, region, bounds)
	}
	return imaging.Crop(src, region), nil
}

// Render draws src transformed by t onto a transparent surface sized view.
func (c *Cropper) Render(src image.Image, t geom.Transform, view image.Point) *image.NRGBA {
	surface := image.NewNRGBA(image.Rectangle{Max: view})
	origin := src.Bounds().Min
	s2d := t.PreTranslate(geom.Pt(-float64(origin.X), -float64(origin.Y))).Aff3()

	kernel := c.kernel()
	// Pure translations by whole pixels need no resampling.
	if t.Scale == 1 && t.TX == math.Trunc(t.TX) && t.TY == math.Trunc(t.TY) {
		kernel = draw.NearestNeighbor
	}
	kernel.Transform(surface, s2d, src, src.Bounds(), draw.Over, nil)
	return surface
}

func (c *Cropper) kernel() draw.Transformer {
	switch strings.ToLower(c.config.Interpolation) {
	case "nearest":
		return draw.NearestNeighbor
	case "bilinear":
		return draw.BiLinear
	case "catmull-rom":
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}
