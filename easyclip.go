// Package easyclip provides an interactive pan/zoom image clipper that can
// run headless.
//
// A photo sits beneath a fixed crop window. One-finger drags pan it and
// two-finger pinches zoom it; after every gesture the photo is moved back,
// optionally with a short settle animation, so that the crop window is
// always fully covered. On request the pixels under the crop window are
// extracted and written out.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/menta2k/easyclip"
//		"github.com/menta2k/easyclip/pkg/geom"
//		"github.com/menta2k/easyclip/pkg/gesture"
//	)
//
//	func main() {
//		clipper := easyclip.New(easyclip.DefaultOptions())
//		clipper.SetViewSize(1080, 1920)
//		if err := clipper.SetCropWindow(geom.R(60, 0, 1020, 960)); err != nil {
//			log.Fatal(err)
//		}
//
//		if err := clipper.Load(context.Background(), "photo.jpg", true); err != nil {
//			log.Fatal(err)
//		}
//
//		// Drag the photo 200px to the left.
//		clipper.HandleEvent(gesture.Event{Action: gesture.Down, Pointers: []geom.Point{{X: 600, Y: 900}}})
//		clipper.HandleEvent(gesture.Event{Action: gesture.Move, Pointers: []geom.Point{{X: 400, Y: 900}}})
//		clipper.HandleEvent(gesture.Event{Action: gesture.Up, Pointers: []geom.Point{{X: 400, Y: 900}}})
//		clipper.FinishSettle()
//
//		result, err := clipper.Clip()
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("wrote %s (%dx%d)", result.Path, result.Width, result.Height)
//	}
//
// The package wires together four components:
//
// 1. Gesture interpreter (pkg/gesture): turns touch events into pan and pinch requests
// 2. Controller (pkg/clip): owns the photo transform and keeps the crop window covered
// 3. Processor (pkg/processing): decodes, resolves, saves and previews images
// 4. Cropper (pkg/cropper): extracts the pixels under the crop window
package easyclip

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/menta2k/easyclip/internal/config"
	"github.com/menta2k/easyclip/internal/logging"
	"github.com/menta2k/easyclip/internal/utils"
	"github.com/menta2k/easyclip/pkg/clip"
	"github.com/menta2k/easyclip/pkg/cropper"
	"github.com/menta2k/easyclip/pkg/geom"
	"github.com/menta2k/easyclip/pkg/gesture"
	"github.com/menta2k/easyclip/pkg/processing"
	"github.com/menta2k/easyclip/pkg/types"
)

// Version of the easyclip library
const Version = "1.0.0"

// ErrSuperseded is returned by Load when a newer load started before this
// one finished decoding. The older result is discarded.
var ErrSuperseded = errors.New("load superseded by a newer request")

// SetLogger routes the library's structured logs to l. A nil logger
// silences them again, which is the default.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Options configures a Clipper
type Options struct {
	Clip                 clip.Options
	MinPointerSeparation float64
	// DecodeWidth and DecodeHeight bound the size photos are decoded at.
	DecodeWidth  int
	DecodeHeight int
	Crop         cropper.CropConfig
	OutputDir    string
	OutputPrefix string
	OutputFormat string
	Quality      int
}

// DefaultOptions returns the stock configuration
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig converts a loaded configuration file into Options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Clip:                 cfg.ClipOptions(),
		MinPointerSeparation: cfg.Gesture.MinPointerSeparation,
		DecodeWidth:          cfg.Decode.MaxWidth,
		DecodeHeight:         cfg.Decode.MaxHeight,
		Crop:                 cfg.CropConfig(),
		OutputDir:            cfg.Output.Dir,
		OutputPrefix:         cfg.Output.Prefix,
		OutputFormat:         cfg.Output.Format,
		Quality:              cfg.Output.Quality,
	}
}

// Clipper is the widget core: touch events in, transforms and clips out.
type Clipper struct {
	opts Options

	controller  *clip.Controller
	processor   *processing.Processor
	cropper     *cropper.Cropper
	interpreter *gesture.Interpreter
	// events serialises access to the interpreter.
	events sync.Mutex

	generation atomic.Uint64
	loadMu     sync.Mutex
}

// New creates a Clipper. Controller options such as clip.WithClock are
// passed through.
func New(opts Options, controllerOpts ...clip.Option) *Clipper {
	c := &Clipper{
		opts:       opts,
		controller: clip.NewController(opts.Clip, controllerOpts...),
		processor:  processing.NewProcessor(),
		cropper:    cropper.NewWithConfig(opts.Crop),
	}
	c.interpreter = gesture.NewInterpreter(c.controller, opts.MinPointerSeparation)
	return c
}

// Controller exposes the transform controller
func (c *Clipper) Controller() *clip.Controller {
	return c.controller
}

// Processor exposes the I/O collaborator, e.g. to register path resolvers
func (c *Clipper) Processor() *processing.Processor {
	return c.processor
}

// SetViewSize records the laid out size of the view
func (c *Clipper) SetViewSize(width, height float64) {
	c.controller.SetViewSize(width, height)
}

// SetCropWindow sets the crop rectangle in view coordinates
func (c *Clipper) SetCropWindow(r geom.Rect) error {
	return c.controller.SetCropWindow(r)
}

// HandleEvent feeds one touch event through the gesture interpreter
func (c *Clipper) HandleEvent(ev gesture.Event) {
	c.events.Lock()
	defer c.events.Unlock()
	c.interpreter.Handle(ev)
}

// Mode returns the interpreter's current state
func (c *Clipper) Mode() gesture.Mode {
	c.events.Lock()
	defer c.events.Unlock()
	return c.interpreter.Mode()
}

// Load resolves uri, decodes it within the configured bounds and hands it
// to the controller. If another Load starts before this one finishes
// decoding, this one returns ErrSuperseded without touching the photo.
func (c *Clipper) Load(ctx context.Context, uri string, reset bool) error {
	gen := c.generation.Add(1)

	path, err := c.processor.ResolvePath(uri)
	if err != nil {
		return err
	}
	src, err := c.processor.DecodeSampled(ctx, path, c.opts.DecodeWidth, c.opts.DecodeHeight)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", uri, err)
	}
	return c.apply(gen, src, reset)
}

// LoadImage hands an already decoded image to the controller. It
// supersedes any Load still in flight.
func (c *Clipper) LoadImage(img image.Image, reset bool) error {
	if img == nil {
		return clip.ErrEmptyImage
	}
	gen := c.generation.Add(1)
	return c.apply(gen, types.NewSourceImage(img), reset)
}

// LoadAsync runs Load in the background and delivers its result on the
// returned channel.
func (c *Clipper) LoadAsync(ctx context.Context, uri string, reset bool) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Load(ctx, uri, reset)
	}()
	return done
}

func (c *Clipper) apply(gen uint64, src types.SourceImage, reset bool) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.generation.Load() != gen {
		logging.Logger().Debug("discarding superseded load", "path", src.Path, "generation", gen)
		return ErrSuperseded
	}
	return c.controller.LoadImage(src, reset)
}

// Transform returns the live transform for rendering
func (c *Clipper) Transform() geom.Transform {
	return c.controller.Transform()
}

// Tick advances a running settle animation to now
func (c *Clipper) Tick(now time.Time) (geom.Transform, bool) {
	return c.controller.Tick(now)
}

// FinishSettle jumps a running settle animation to its end
func (c *Clipper) FinishSettle() geom.Transform {
	return c.controller.FinishSettle()
}

// Animate drives settle animations until ctx is cancelled
func (c *Clipper) Animate(ctx context.Context, interval time.Duration, onFrame func(geom.Transform)) error {
	return c.controller.Animate(ctx, interval, onFrame)
}

// Capture extracts the pixels under the crop window
func (c *Clipper) Capture() (*image.NRGBA, error) {
	return c.controller.Capture(c.cropper)
}

// Clip captures the crop window and writes it to the output directory
func (c *Clipper) Clip() (types.ClipResult, error) {
	img, err := c.Capture()
	if err != nil {
		return types.ClipResult{}, fmt.Errorf("capture failed: %w", err)
	}
	return c.processor.SaveClip(img, c.opts.OutputDir, c.opts.OutputPrefix, c.opts.OutputFormat, c.opts.Quality)
}

// Preview renders the view as the user sees it, mask and border included
func (c *Clipper) Preview() (*image.NRGBA, error) {
	frame, err := c.controller.Frame()
	if err != nil {
		return nil, err
	}
	return c.processor.RenderPreview(c.cropper, frame), nil
}

// SavePreview renders the preview and writes it to path, choosing the
// format from the file extension.
func (c *Clipper) SavePreview(path string) error {
	img, err := c.Preview()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}
	format := utils.NormalizeFormat(utils.GetFileExtension(path))
	return c.processor.SaveImage(img, path, format, c.opts.Quality, false)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
