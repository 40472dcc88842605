// Package clip holds the crop transform controller: it owns the photo's
// transform beneath a fixed crop window, applies pan and pinch requests,
// and after each gesture moves the photo back so the crop window is fully
// covered again.
//
// A Controller serialises all access behind one mutex, so the UI loop, a
// settle animation goroutine and renderers reading Transform may share it.
package clip

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/menta2k/easyclip/internal/logging"
	"github.com/menta2k/easyclip/pkg/cropper"
	"github.com/menta2k/easyclip/pkg/geom"
	"github.com/menta2k/easyclip/pkg/gesture"
	"github.com/menta2k/easyclip/pkg/types"
)

var (
	// ErrInvalidCropWindow is returned when an image is loaded before a
	// non-empty crop window has been applied to a laid out view.
	ErrInvalidCropWindow = errors.New("crop window not set or empty")
	// ErrBoundaryInconsistency is logged when the photo is smaller than the
	// crop window on an axis after a gesture. The scale floor should make it
	// unreachable.
	ErrBoundaryInconsistency = errors.New("photo does not span the crop window")
	ErrEmptyImage            = errors.New("source image has no pixels")
	ErrNoImage               = errors.New("no image loaded")
)

// coverEpsilon absorbs floating point noise when comparing edges.
const coverEpsilon = 1e-6

var _ gesture.Sink = (*Controller)(nil)

// Controller owns the live and committed transforms of a photo under a crop window.
type Controller struct {
	mu   sync.Mutex
	opts Options
	now  func() time.Time

	viewW, viewH float64
	pendingCrop  *geom.Rect
	crop         geom.Rect

	src      *types.SourceImage
	minScale float64

	// live is what is rendered, committed the last transform known to
	// cover the crop window.
	live      geom.Transform
	committed geom.Transform
	// pinchRatio is the ratio of the previous ApplyScale in this pinch.
	pinchRatio float64

	settle *Settle
}

// Option customises a Controller at construction.
type Option func(*Controller)

// WithClock replaces time.Now as the animation clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController creates a controller with the given tuning.
func NewController(opts Options, options ...Option) *Controller {
	c := &Controller{
		opts:      opts,
		now:       time.Now,
		minScale:  opts.MinScale,
		live:       geom.Identity(),
		committed:  geom.Identity(),
		pinchRatio: 1,
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Options returns the active tuning.
func (c *Controller) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// SetOptions swaps the tuning. Call it between gestures.
func (c *Controller) SetOptions(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
	if c.src == nil {
		c.minScale = opts.MinScale
	}
}

// SetViewSize records the laid out size of the view. A crop window set
// before the view had a size is applied now.
func (c *Controller) SetViewSize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewW, c.viewH = width, height
	if c.pendingCrop != nil && c.laidOut() {
		r := *c.pendingCrop
		c.pendingCrop = nil
		c.applyCropWindow(r)
	}
}

// ViewSize returns the view size recorded by SetViewSize.
func (c *Controller) ViewSize() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewW, c.viewH
}

// SetCropWindow sets the crop rectangle. Its horizontal edges are kept and
// it is re-centred vertically on the view, keeping its height. A photo that
// is already loaded is refitted to the new window, keeping its zoom.
func (c *Controller) SetCropWindow(r geom.Rect) error {
	if r.Empty() {
		return fmt.Errorf("%w: %v", ErrInvalidCropWindow, r)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.laidOut() {
		c.pendingCrop = &r
		return nil
	}
	c.applyCropWindow(r)
	return nil
}

// SetCropWindowWidth derives the crop window from its top-left corner and
// width, taking the height from the aspect ratio.
func (c *Controller) SetCropWindowWidth(topLeft geom.Point, width float64) error {
	aspect := c.Options().AspectRatio
	if aspect <= 0 {
		return fmt.Errorf("%w: aspect ratio %v", ErrInvalidCropWindow, aspect)
	}
	return c.SetCropWindow(geom.R(topLeft.X, topLeft.Y, topLeft.X+width, topLeft.Y+width/aspect))
}

// SetCropWindowHeight derives the crop window from its top-left corner and
// height, taking the width from the aspect ratio.
func (c *Controller) SetCropWindowHeight(topLeft geom.Point, height float64) error {
	aspect := c.Options().AspectRatio
	if aspect <= 0 {
		return fmt.Errorf("%w: aspect ratio %v", ErrInvalidCropWindow, aspect)
	}
	return c.SetCropWindow(geom.R(topLeft.X, topLeft.Y, topLeft.X+height*aspect, topLeft.Y+height))
}

// CropWindow returns the applied crop rectangle, empty if none is applied yet.
func (c *Controller) CropWindow() geom.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crop
}

func (c *Controller) laidOut() bool {
	return c.viewW > 0 && c.viewH > 0
}

func (c *Controller) applyCropWindow(r geom.Rect) {
	h := r.Height()
	c.crop = geom.R(r.Left, (c.viewH-h)/2, r.Right, (c.viewH+h)/2)
	if c.src != nil {
		c.fit(*c.src, false)
		logging.Logger().Debug("photo refitted to crop window",
			slog.String("crop", c.crop.String()),
			slog.Float64("min_scale", c.minScale))
	}
}

// LoadImage replaces the photo. The minimum scale becomes the one at which
// the photo just covers the crop window. With reset the photo starts at
// that scale centred on the view; otherwise the previous zoom relative to
// the floor and the previous offset from the view centre carry over.
func (c *Controller) LoadImage(src types.SourceImage, reset bool) error {
	if src.Empty() {
		return ErrEmptyImage
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crop.Empty() {
		return ErrInvalidCropWindow
	}
	c.fit(src, reset)

	logging.Logger().Info("image loaded",
		slog.Int("width", src.Width),
		slog.Int("height", src.Height),
		slog.Float64("min_scale", c.minScale),
		slog.Bool("reset", reset))
	return nil
}

// fit places src under the crop window. Without reset the zoom relative to
// the floor and the offset from the view centre of the committed transform
// carry over, then the photo is moved to cover the window. A running settle
// counts as finished.
func (c *Controller) fit(src types.SourceImage, reset bool) {
	if c.settle != nil {
		c.committed = c.settle.At(1)
		c.settle = nil
	}

	minScale := coverScale(src, c.crop)
	viewCenter := geom.Pt(c.viewW/2, c.viewH/2)
	w, h := float64(src.Width), float64(src.Height)

	scale := minScale
	offset := geom.Point{}
	if !reset && c.src != nil {
		scale = minScale * (c.committed.Scale / c.minScale)
		scale = clamp(scale, minScale, math.Max(c.opts.MaxScale, minScale))
		offset = c.imageRect(c.committed).Center().Sub(viewCenter)
	}
	center := viewCenter.Add(offset)
	t := geom.Transform{Scale: scale, TX: center.X - w*scale/2, TY: center.Y - h*scale/2}

	c.src = &src
	c.minScale = minScale
	if !reset {
		delta, _ := c.correction(t)
		t = t.Translate(delta)
	}
	c.live, c.committed = t, t
	c.pinchRatio = 1
}

// coverScale returns the smallest scale at which src covers crop: fit by
// height when the photo is relatively wider than the window, else by width.
func coverScale(src types.SourceImage, crop geom.Rect) float64 {
	if src.AspectRatio() > crop.AspectRatio() {
		return crop.Height() / float64(src.Height)
	}
	return crop.Width() / float64(src.Width)
}

// Source returns the loaded photo, if any.
func (c *Controller) Source() (types.SourceImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return types.SourceImage{}, false
	}
	return *c.src, true
}

// MinScale returns the current zoom-out floor.
func (c *Controller) MinScale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minScale
}

// MaxScale returns the current zoom-in ceiling. It never drops below MinScale.
func (c *Controller) MaxScale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxScale()
}

func (c *Controller) maxScale() float64 {
	return math.Max(c.opts.MaxScale, c.minScale)
}

// Transform returns the live transform for rendering.
func (c *Controller) Transform() geom.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Committed returns the last transform known to cover the crop window.
func (c *Controller) Committed() geom.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

// ImageRect returns the photo's bounds in view space under the live transform.
func (c *Controller) ImageRect() geom.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageRect(c.live)
}

func (c *Controller) imageRect(t geom.Transform) geom.Rect {
	if c.src == nil {
		return geom.Rect{}
	}
	return t.MapRect(geom.RectFromSize(float64(c.src.Width), float64(c.src.Height)))
}

// Covered reports whether the live photo covers the crop window.
func (c *Controller) Covered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	img := c.imageRect(c.live)
	return img.Left <= c.crop.Left+coverEpsilon && img.Right >= c.crop.Right-coverEpsilon &&
		img.Top <= c.crop.Top+coverEpsilon && img.Bottom >= c.crop.Bottom-coverEpsilon
}

// BeginGesture stops a running settle animation, adopting the transform it
// last applied, and makes the committed transform the starting point.
func (c *Controller) BeginGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settle != nil {
		c.committed = c.live
		c.settle = nil
	}
	c.live = c.committed
}

// BeginScale starts a pinch. Ratios passed to ApplyScale are measured from
// this point.
func (c *Controller) BeginScale() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinchRatio = 1
}

// ApplyPan translates the photo by delta. On each axis where the full delta
// would pull a photo edge inside the crop window, the delta is damped
// instead of blocked. Edges exactly on the window edge count as covering.
func (c *Controller) ApplyPan(delta geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return
	}
	img := c.imageRect(c.live)
	if img.Left+delta.X > c.crop.Left || img.Right+delta.X < c.crop.Right {
		delta.X *= c.opts.TranslateDamping
	}
	if img.Top+delta.Y > c.crop.Top || img.Bottom+delta.Y < c.crop.Bottom {
		delta.Y *= c.opts.TranslateDamping
	}
	c.live = c.live.Translate(delta)
}

// ApplyScale zooms around an image-local pivot. ratio is the pinch ratio
// since BeginScale; the live scale changes by the step from the previous
// ratio. A step that would leave [MinScale, MaxScale] lands exactly on the
// bound; any other step is raised to the ScaleDamping exponent first.
func (c *Controller) ApplyScale(ratio float64, pivot geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil || ratio <= 0 {
		return
	}
	step := ratio / c.pinchRatio
	c.pinchRatio = ratio

	from := c.live.Scale
	lo, hi := c.minScale, c.maxScale()

	var k float64
	switch to := from * step; {
	case to < lo:
		k = lo / from
	case to > hi:
		k = hi / from
	default:
		k = math.Pow(step, c.opts.ScaleDamping)
	}
	// Options swapped mid-session can leave the live scale itself out of range.
	k = clamp(from*k, lo, hi) / from

	c.live = c.live.ScaleAbout(k, pivot)
}

// EndGesture starts the correction that restores coverage of the crop
// window, either instantly or as a settle animation. Calling it again
// before another gesture does nothing.
func (c *Controller) EndGesture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil || c.settle != nil {
		return
	}

	delta, err := c.correction(c.live)
	if err != nil {
		logging.Logger().Error("boundary correction skipped",
			slog.Any("err", err),
			slog.String("image", c.imageRect(c.live).String()),
			slog.String("crop", c.crop.String()))
	}
	if delta.IsZero() {
		c.committed = c.live
		return
	}

	d := c.opts.settleDuration()
	if d <= 0 {
		c.live = c.live.Translate(delta)
		c.committed = c.live
		return
	}
	c.settle = &Settle{From: c.live, Delta: delta, Start: c.now(), Duration: d}
}

// correction measures, per axis, the translation that closes a gap between
// a photo edge and the crop window. An axis on which the photo is smaller
// than the window is reported as ErrBoundaryInconsistency and left alone.
func (c *Controller) correction(t geom.Transform) (geom.Point, error) {
	img := c.imageRect(t)
	dx, okX := axisCorrection(c.crop.Left, c.crop.Right, img.Left, img.Right)
	dy, okY := axisCorrection(c.crop.Top, c.crop.Bottom, img.Top, img.Bottom)

	var err error
	switch {
	case !okX && !okY:
		err = fmt.Errorf("%w on both axes", ErrBoundaryInconsistency)
	case !okX:
		err = fmt.Errorf("%w horizontally", ErrBoundaryInconsistency)
	case !okY:
		err = fmt.Errorf("%w vertically", ErrBoundaryInconsistency)
	}
	return geom.Pt(dx, dy), err
}

func axisCorrection(cropLo, cropHi, imgLo, imgHi float64) (float64, bool) {
	if imgHi-imgLo < cropHi-cropLo-coverEpsilon {
		return 0, false
	}
	dLo := cropLo - imgLo
	dHi := cropHi - imgHi
	switch {
	case dLo < -coverEpsilon:
		// Gap at the low edge.
		return dLo, true
	case dHi > coverEpsilon:
		return dHi, true
	default:
		return 0, true
	}
}

// Capture extracts the pixels under the crop window from what is on screen.
func (c *Controller) Capture(cr *cropper.Cropper) (*image.NRGBA, error) {
	frame, err := c.Frame()
	if err != nil {
		return nil, err
	}
	return cr.Capture(frame)
}

// Frame snapshots everything a renderer or cropper needs.
func (c *Controller) Frame() (cropper.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return cropper.Frame{}, ErrNoImage
	}
	return cropper.Frame{
		Source:     c.src.Image,
		Transform:  c.live,
		ViewWidth:  int(math.Round(c.viewW)),
		ViewHeight: int(math.Round(c.viewH)),
		Crop:       c.crop,
	}, nil
}
