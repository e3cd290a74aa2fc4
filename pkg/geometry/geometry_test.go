package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineTransform_ApplyAndCompose(t *testing.T) {
	translate := Translation(10, 20)
	scale := Scale(2, 3)

	p := NewPoint2D(5, 5)
	assert.Equal(t, NewPoint2D(15, 25), translate.Apply(p))
	assert.Equal(t, NewPoint2D(10, 15), scale.Apply(p))

	// Translation composed with scale: scale first, then translate.
	combined := translate.Compose(scale)
	assert.Equal(t, NewPoint2D(20, 35), combined.Apply(p))
}

func TestAffineTransform_InverseRoundTrip(t *testing.T) {
	transform := Translation(12.5, -7).Compose(Scale(1.75, 1.75))
	inv, ok := transform.Inverse()
	require.True(t, ok)

	points := []Point2D{
		NewPoint2D(0, 0),
		NewPoint2D(100, 50),
		NewPoint2D(-3.25, 88),
	}
	for _, p := range points {
		back := inv.Apply(transform.Apply(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestAffineTransform_SingularHasNoInverse(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestFitRect_Letterboxes(t *testing.T) {
	// A wide image in a square viewport scales to the viewport width and
	// centers vertically.
	view := FitRect(NewSize(200, 100), NewSize(400, 400))
	assert.InDelta(t, 2.0, view.A, 1e-9)
	assert.InDelta(t, 2.0, view.D, 1e-9)

	topLeft := view.Apply(NewPoint2D(0, 0))
	assert.InDelta(t, 0, topLeft.X, 1e-9)
	assert.InDelta(t, 100, topLeft.Y, 1e-9)

	bottomRight := view.Apply(NewPoint2D(200, 100))
	assert.InDelta(t, 400, bottomRight.X, 1e-9)
	assert.InDelta(t, 300, bottomRight.Y, 1e-9)
}

func TestFitRect_DegenerateSizesFallBackToIdentity(t *testing.T) {
	assert.Equal(t, Identity(), FitRect(NewSize(0, 100), NewSize(400, 400)))
	assert.Equal(t, Identity(), FitRect(NewSize(100, 100), NewSize(0, 400)))
}

func TestFitAffine_RecoversKnownTransform(t *testing.T) {
	want := AffineTransform{A: 1.5, B: 0.25, TX: 40, C: -0.1, D: 2, TY: -7}

	src := []Point2D{
		NewPoint2D(0, 0),
		NewPoint2D(100, 0),
		NewPoint2D(0, 100),
		NewPoint2D(57, 91),
	}
	dst := make([]Point2D, len(src))
	for i, p := range src {
		dst[i] = want.Apply(p)
	}

	got, err := FitAffine(src, dst)
	require.NoError(t, err)
	assert.InDelta(t, want.A, got.A, 1e-6)
	assert.InDelta(t, want.B, got.B, 1e-6)
	assert.InDelta(t, want.TX, got.TX, 1e-6)
	assert.InDelta(t, want.C, got.C, 1e-6)
	assert.InDelta(t, want.D, got.D, 1e-6)
	assert.InDelta(t, want.TY, got.TY, 1e-6)
}

func TestFitAffine_RejectsBadInput(t *testing.T) {
	_, err := FitAffine(
		[]Point2D{NewPoint2D(0, 0), NewPoint2D(1, 1)},
		[]Point2D{NewPoint2D(0, 0), NewPoint2D(1, 1)},
	)
	assert.Error(t, err)

	_, err = FitAffine(
		[]Point2D{NewPoint2D(0, 0), NewPoint2D(1, 1), NewPoint2D(2, 2)},
		[]Point2D{NewPoint2D(0, 0)},
	)
	assert.Error(t, err)
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{
		NewPoint2D(0, 0), NewPoint2D(10, 0), NewPoint2D(10, 10), NewPoint2D(0, 10),
	}

	assert.True(t, PointInPolygon(NewPoint2D(5, 5), square))
	assert.False(t, PointInPolygon(NewPoint2D(15, 5), square))
	assert.False(t, PointInPolygon(NewPoint2D(5, -1), square))
	assert.False(t, PointInPolygon(NewPoint2D(5, 5), square[:2]))
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point2D{
		NewPoint2D(3, 7), NewPoint2D(-1, 2), NewPoint2D(5, 4),
	})
	assert.Equal(t, NewRect(-1, 2, 6, 5), box)
	assert.Equal(t, Rect{}, BoundingBox(nil))
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point2D{
		NewPoint2D(0, 0), NewPoint2D(10, 0), NewPoint2D(10, 10), NewPoint2D(0, 10),
	})
	assert.Equal(t, NewPoint2D(5, 5), c)
	assert.Equal(t, Point2D{}, Centroid(nil))
}
