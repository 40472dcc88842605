package geom

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(Pt(0, 0), Pt(3, 4)), eps)
	assert.InDelta(t, 5.0, Distance(Pt(3, 4), Pt(0, 0)), eps)
	assert.InDelta(t, 0.0, Distance(Pt(7, 7), Pt(7, 7)), eps)
	// Equal legs must not cancel out.
	assert.InDelta(t, math.Sqrt2*10, Distance(Pt(0, 0), Pt(10, 10)), eps)
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, Pt(5, 10), Midpoint(Pt(0, 0), Pt(10, 20)))
}

func TestRectDerived(t *testing.T) {
	r := R(50, 300, 950, 1300)
	assert.Equal(t, 900.0, r.Width())
	assert.Equal(t, 1000.0, r.Height())
	assert.InDelta(t, 0.9, r.AspectRatio(), eps)
	assert.Equal(t, Pt(500, 800), r.Center())
	assert.False(t, r.Empty())
	assert.True(t, R(10, 10, 10, 20).Empty())
	assert.Equal(t, 0.0, Rect{}.AspectRatio())
}

func TestRectContains(t *testing.T) {
	outer := R(0, 0, 100, 100)

	assert.True(t, outer.Contains(R(10, 10, 90, 90)))
	assert.True(t, outer.Contains(outer), "shared edges count as contained")
	assert.False(t, outer.Contains(R(-1, 10, 90, 90)))
	assert.False(t, outer.Contains(R(10, 10, 90, 101)))

	assert.True(t, outer.ContainsPoint(Pt(100, 0)))
	assert.False(t, outer.ContainsPoint(Pt(100.5, 0)))
}

func TestRectUnion(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(5, -5, 20, 8))
	assert.Equal(t, R(0, -5, 20, 10), u)

	assert.Equal(t, R(1, 1, 2, 2), Rect{}.Union(R(1, 1, 2, 2)))
}

func TestRectRound(t *testing.T) {
	assert.Equal(t, image.Rect(50, 300, 950, 1300), R(49.6, 300.4, 950.2, 1299.5).Round())
}

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{Scale: 2, TX: 10, TY: -5}
	p := Pt(3, 4)

	v := tr.Apply(p)
	assert.Equal(t, Pt(16, 3), v)

	back := tr.Invert(v)
	assert.InDelta(t, p.X, back.X, eps)
	assert.InDelta(t, p.Y, back.Y, eps)

	viaInverse := tr.Inverse().Apply(v)
	assert.InDelta(t, p.X, viaInverse.X, eps)
	assert.InDelta(t, p.Y, viaInverse.Y, eps)
}

func TestTransformThen(t *testing.T) {
	a := Transform{Scale: 2, TX: 1, TY: 1}
	b := Transform{Scale: 3, TX: -4, TY: 2}
	p := Pt(5, 7)

	want := b.Apply(a.Apply(p))
	got := a.Then(b).Apply(p)
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)

	id := a.Then(a.Inverse())
	assert.InDelta(t, 1.0, id.Scale, eps)
	assert.InDelta(t, 0.0, id.TX, eps)
	assert.InDelta(t, 0.0, id.TY, eps)
}

func TestTransformScaleAboutKeepsPivotFixed(t *testing.T) {
	tr := Transform{Scale: 0.8, TX: 40, TY: 120}
	pivot := Pt(300, 500)
	before := tr.Apply(pivot)

	scaled := tr.ScaleAbout(1.5, pivot)
	after := scaled.Apply(pivot)

	assert.InDelta(t, 1.2, scaled.Scale, eps)
	assert.InDelta(t, before.X, after.X, 1e-6)
	assert.InDelta(t, before.Y, after.Y, 1e-6)
}

func TestTransformPostScaleAbout(t *testing.T) {
	tr := Transform{Scale: 1, TX: 10, TY: 10}
	pivot := Pt(100, 100)

	scaled := tr.PostScaleAbout(2, pivot)
	assert.Equal(t, Transform{Scale: 2, TX: -80, TY: -80}, scaled)
	// The view point that sat on the pivot stays there.
	local := tr.Invert(pivot)
	assert.Equal(t, pivot, scaled.Apply(local))
}

func TestTransformTranslate(t *testing.T) {
	tr := Identity().Translate(Pt(3, 4)).PreTranslate(Pt(1, 1))
	assert.Equal(t, Transform{Scale: 1, TX: 4, TY: 5}, tr)

	scaled := Transform{Scale: 2}.PreTranslate(Pt(1, 1))
	assert.Equal(t, Transform{Scale: 2, TX: 2, TY: 2}, scaled)
}

func TestTransformMapRect(t *testing.T) {
	tr := Transform{Scale: 900.0 / 1080.0, TX: 50, TY: -0}
	r := tr.MapRect(RectFromSize(1080, 1920))

	assert.InDelta(t, 50, r.Left, eps)
	assert.InDelta(t, 950, r.Right, eps)
	assert.InDelta(t, 1600, r.Bottom, 1e-6)
}

func TestTransformAff3(t *testing.T) {
	aff := Transform{Scale: 2, TX: 7, TY: 9}.Aff3()
	assert.Equal(t, 2.0, aff[0])
	assert.Equal(t, 0.0, aff[1])
	assert.Equal(t, 7.0, aff[2])
	assert.Equal(t, 0.0, aff[3])
	assert.Equal(t, 2.0, aff[4])
	assert.Equal(t, 9.0, aff[5])
}
