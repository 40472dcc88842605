package geom

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// Transform maps image-local coordinates to view coordinates:
//
//	view = local*Scale + (TX, TY)
//
// Only uniform scale and translation are representable.
type Transform struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Translation returns the translation component as a Point.
func (t Transform) Translation() Point {
	return Point{X: t.TX, Y: t.TY}
}

// Apply maps an image-local point into view space.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.Scale + t.TX, Y: p.Y*t.Scale + t.TY}
}

// Invert maps a view-space point back into image-local space.
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.TX) / t.Scale, Y: (p.Y - t.TY) / t.Scale}
}

// Inverse returns the transform mapping view space back to image-local space.
func (t Transform) Inverse() Transform {
	return Transform{Scale: 1 / t.Scale, TX: -t.TX / t.Scale, TY: -t.TY / t.Scale}
}

// Then returns the transform that applies t first and u second.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		Scale: t.Scale * u.Scale,
		TX:    t.TX*u.Scale + u.TX,
		TY:    t.TY*u.Scale + u.TY,
	}
}

// Translate post-multiplies a view-space translation.
func (t Transform) Translate(d Point) Transform {
	return Transform{Scale: t.Scale, TX: t.TX + d.X, TY: t.TY + d.Y}
}

// PreTranslate pre-multiplies an image-local translation.
func (t Transform) PreTranslate(d Point) Transform {
	return Transform{Scale: t.Scale, TX: t.TX + d.X*t.Scale, TY: t.TY + d.Y*t.Scale}
}

// ScaleAbout pre-multiplies a scale by k around an image-local pivot.
// The view position of the pivot is unchanged.
func (t Transform) ScaleAbout(k float64, pivot Point) Transform {
	return Transform{
		Scale: t.Scale * k,
		TX:    t.TX + t.Scale*(1-k)*pivot.X,
		TY:    t.TY + t.Scale*(1-k)*pivot.Y,
	}
}

// PostScaleAbout post-multiplies a scale by k around a view-space pivot.
func (t Transform) PostScaleAbout(k float64, pivot Point) Transform {
	return Transform{
		Scale: t.Scale * k,
		TX:    (t.TX-pivot.X)*k + pivot.X,
		TY:    (t.TY-pivot.Y)*k + pivot.Y,
	}
}

// MapRect maps an image-local rectangle into view space.
func (t Transform) MapRect(r Rect) Rect {
	a := t.Apply(Point{X: r.Left, Y: r.Top})
	b := t.Apply(Point{X: r.Right, Y: r.Bottom})
	return Rect{Left: a.X, Top: a.Y, Right: b.X, Bottom: b.Y}
}

// Aff3 returns t in the row-major 2x3 layout used by golang.org/x/image/draw.
func (t Transform) Aff3() f64.Aff3 {
	return f64.Aff3{
		t.Scale, 0, t.TX,
		0, t.Scale, t.TY,
	}
}

func (t Transform) String() string {
	return fmt.Sprintf("scale=%.4f translate=(%.2f,%.2f)", t.Scale, t.TX, t.TY)
}
