//go:build !gocv
// +build !gocv

package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickertag/internal/session"
	"flickertag/pkg/geometry"
)

func testClasses(t *testing.T) *session.ClassSet {
	t.Helper()
	classes, err := session.NewClassSet([]session.ChangeClass{
		{Name: "demolished", Color: color.RGBA{R: 255, A: 255}},
	})
	require.NoError(t, err)
	return classes
}

func TestChangeMap_FillsPolygonInterior(t *testing.T) {
	result := session.Result{
		Annotations: []session.Annotation{
			{
				Polygon: []geometry.Point2D{
					{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30},
				},
				Label: "demolished",
			},
		},
	}

	img, err := ChangeMap(result, testClasses(t), 50, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	r, g, b, _ := img.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)

	// Outside the polygon the frame stays black.
	r, g, b, _ = img.At(40, 40).RGBA()
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestChangeMap_EmptyResultIsBlackFrame(t *testing.T) {
	img, err := ChangeMap(session.Result{}, testClasses(t), 8, 8)
	require.NoError(t, err)

	r, g, b, a := img.At(4, 4).RGBA()
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestChangeMap_Failures(t *testing.T) {
	classes := testClasses(t)

	_, err := ChangeMap(session.Result{}, classes, 0, 10)
	assert.Error(t, err)

	_, err = ChangeMap(session.Result{Skipped: true}, classes, 10, 10)
	assert.Error(t, err)

	unknown := session.Result{
		Annotations: []session.Annotation{
			{
				Polygon: []geometry.Point2D{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}},
				Label:   "flooded",
			},
		},
	}
	_, err = ChangeMap(unknown, classes, 10, 10)
	assert.Error(t, err)
}
