package clip

import (
	"fmt"
	"time"
)

// Options tunes the controller. They are read at the start of each operation
// and may be replaced between gestures with SetOptions.
type Options struct {
	// AspectRatio is width/height, used when the crop window is derived
	// from only one of its sides.
	AspectRatio float64
	// MinScale is the zoom-out floor until an image is loaded; afterwards
	// the floor is the scale at which the image just covers the crop window.
	MinScale float64
	MaxScale float64
	// ScaleDamping is the exponent applied to pinch ratios. Values below 1
	// slow the perceived zoom: with 1/4, pinching 16x zooms 2x.
	ScaleDamping float64
	// TranslateDamping multiplies pan deltas that would uncover the crop window.
	TranslateDamping float64
	// SettleDuration is how long the correction animation runs after a gesture.
	SettleDuration time.Duration
	// SnapImmediately skips the correction animation.
	SnapImmediately bool
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		AspectRatio:      1,
		MinScale:         0.25,
		MaxScale:         3,
		ScaleDamping:     1.0 / 6.0,
		TranslateDamping: 0.5,
		SettleDuration:   200 * time.Millisecond,
	}
}

// Validate checks the options for values the controller cannot work with.
func (o Options) Validate() error {
	if o.AspectRatio <= 0 {
		return fmt.Errorf("aspect ratio must be positive, got %v", o.AspectRatio)
	}
	if o.MinScale <= 0 || o.MaxScale <= 0 {
		return fmt.Errorf("scale bounds must be positive, got [%v, %v]", o.MinScale, o.MaxScale)
	}
	if o.MinScale > o.MaxScale {
		return fmt.Errorf("min scale %v exceeds max scale %v", o.MinScale, o.MaxScale)
	}
	if o.ScaleDamping <= 0 || o.ScaleDamping > 1 {
		return fmt.Errorf("scale damping must be in (0, 1], got %v", o.ScaleDamping)
	}
	if o.TranslateDamping < 0 || o.TranslateDamping > 1 {
		return fmt.Errorf("translate damping must be in [0, 1], got %v", o.TranslateDamping)
	}
	if o.SettleDuration < 0 {
		return fmt.Errorf("settle duration must not be negative, got %v", o.SettleDuration)
	}
	return nil
}

func (o Options) settleDuration() time.Duration {
	if o.SnapImmediately {
		return 0
	}
	return o.SettleDuration
}
