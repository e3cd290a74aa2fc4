//go:build gocv
// +build gocv

// Package render rasterizes saved annotations into a change-map preview shown
// after each pair is persisted.
package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"flickertag/internal/session"
)

// ChangeMap renders the result's polygons filled with their class colors over
// a black frame of the reference image's dimensions.
func ChangeMap(result session.Result, classes *session.ClassSet, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid change map size %dx%d", width, height)
	}
	if result.Skipped {
		return nil, fmt.Errorf("skipped result has no change map")
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer mat.Close()

	for _, a := range result.Annotations {
		col, ok := classes.Color(a.Label)
		if !ok {
			return nil, fmt.Errorf("result references undefined class %q", a.Label)
		}

		pts := make([]image.Point, len(a.Polygon))
		for i, p := range a.Polygon {
			pts[i] = image.Pt(int(p.X), int(p.Y))
		}

		pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
		gocv.FillPoly(&mat, pv, col)
		pv.Close()
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert change map: %w", err)
	}
	return img, nil
}
