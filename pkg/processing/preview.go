package processing

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/menta2k/easyclip/pkg/cropper"
)

var (
	// MaskColor dims everything outside the crop window (#a8000000).
	MaskColor = color.NRGBA{0, 0, 0, 0xa8}
	// BorderColor outlines the crop window.
	BorderColor = color.NRGBA{255, 255, 255, 255}
)

// BorderWidth is the stroke width of the crop window outline in view pixels.
const BorderWidth = 8

// RenderPreview draws the frame the way the widget shows it: the photo under
// its transform, a translucent mask outside the crop window and a white
// border centred on the window's edges.
func (p *Processor) RenderPreview(cr *cropper.Cropper, f cropper.Frame) *image.NRGBA {
	view := image.Pt(f.ViewWidth, f.ViewHeight)
	canvas := image.NewNRGBA(image.Rectangle{Max: view})
	if f.Source != nil {
		canvas = cr.Render(f.Source, f.Transform, view)
	}

	bounds := canvas.Bounds()
	win := f.Crop.Round()
	mask := image.NewUniform(MaskColor)
	for _, r := range []image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, win.Min.Y), // above
		image.Rect(bounds.Min.X, win.Max.Y, bounds.Max.X, bounds.Max.Y), // below
		image.Rect(bounds.Min.X, win.Min.Y, win.Min.X, win.Max.Y),       // left
		image.Rect(win.Max.X, win.Min.Y, bounds.Max.X, win.Max.Y),       // right
	} {
		r = r.Intersect(bounds)
		if !r.Empty() {
			draw.Draw(canvas, r, mask, image.Point{}, draw.Over)
		}
	}

	drawBorder(canvas, win, BorderColor, BorderWidth)
	return canvas
}

// drawBorder strokes r with lines of the given width centred on its edges.
func drawBorder(img *image.NRGBA, r image.Rectangle, c color.NRGBA, width int) {
	if r.Empty() || width <= 0 {
		return
	}
	half := int(math.Ceil(float64(width) / 2))
	for s := -half; s < width-half; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X-half, r.Max.X+half, c)
		drawHLine(img, r.Max.Y+s, r.Min.X-half, r.Max.X+half, c)
		drawVLine(img, r.Min.X+s, r.Min.Y-half, r.Max.Y+half, c)
		drawVLine(img, r.Max.X+s, r.Min.Y-half, r.Max.Y+half, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
