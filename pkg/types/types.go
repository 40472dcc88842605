package types

import "image"

// SourceImage is a decoded photo together with its intrinsic size. It is
// replaced wholesale on every load and never mutated.
type SourceImage struct {
	Image  image.Image
	Width  int
	Height int
	// Path is the file the image was decoded from, if any.
	Path string
	// SampleSize is the power-of-two-ish downsampling factor applied at decode.
	SampleSize int
}

// NewSourceImage wraps an already decoded image.
func NewSourceImage(img image.Image) SourceImage {
	b := img.Bounds()
	return SourceImage{Image: img, Width: b.Dx(), Height: b.Dy(), SampleSize: 1}
}

// Empty reports whether the image has no pixels.
func (s SourceImage) Empty() bool {
	return s.Image == nil || s.Width <= 0 || s.Height <= 0
}

// AspectRatio returns width/height, or 0 for an empty image.
func (s SourceImage) AspectRatio() float64 {
	if s.Empty() {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// GestureStep is one entry of a recorded touch script.
type GestureStep struct {
	Action   string       `json:"action,omitempty"`
	Pointers [][2]float64 `json:"pointers,omitempty"`
	// WaitMS advances the animation clock before the next step.
	WaitMS int `json:"wait_ms,omitempty"`
}

// GestureScript is a sequence of touch steps replayed against a clipper.
type GestureScript struct {
	Steps []GestureStep `json:"steps"`
}

// ClipResult describes a clip written by the persistence collaborator.
type ClipResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}
