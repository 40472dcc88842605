// Package geom provides the small set of 2D primitives the clipping core works in:
// points, axis-aligned rectangles and a uniform-scale-plus-translation transform.
//
// All values are plain structs with value semantics. Operations return new values
// and never mutate their receivers. Inputs are assumed finite.
package geom

import (
	"fmt"
	"image"
	"math"
)

// Point is a 2D coordinate or vector.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// IsZero reports whether both components are zero.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Rect is an axis-aligned box. Left <= Right and Top <= Bottom for any Rect
// handed out by this module.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// R builds a Rect from its four edges.
func R(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// RectFromSize builds a Rect anchored at the origin.
func RectFromSize(w, h float64) Rect {
	return Rect{Right: w, Bottom: h}
}

// Width returns Right-Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// AspectRatio returns Width/Height, or 0 for an empty rectangle.
func (r Rect) AspectRatio() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width() / r.Height()
}

// Center returns the centre point of r.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Offset returns r moved by d.
func (r Rect) Offset(d Point) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Right: r.Right + d.X, Bottom: r.Bottom + d.Y}
}

// Contains reports whether s lies entirely inside r. Shared edges count as inside.
func (r Rect) Contains(s Rect) bool {
	return s.Left >= r.Left && s.Right <= r.Right && s.Top >= r.Top && s.Bottom <= r.Bottom
}

// ContainsPoint reports whether p lies inside r, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		Left:   math.Min(r.Left, s.Left),
		Top:    math.Min(r.Top, s.Top),
		Right:  math.Max(r.Right, s.Right),
		Bottom: math.Max(r.Bottom, s.Bottom),
	}
}

// Round snaps r to integer pixel bounds. Unlike image.Rect it does not
// canonicalize, so an inverted r stays empty.
func (r Rect) Round() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(math.Round(r.Left)), int(math.Round(r.Top))),
		Max: image.Pt(int(math.Round(r.Right)), int(math.Round(r.Bottom))),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f,%.2f - %.2f,%.2f]", r.Left, r.Top, r.Right, r.Bottom)
}
