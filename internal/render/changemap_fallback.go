//go:build !gocv
// +build !gocv

// Package render rasterizes saved annotations into a change-map preview shown
// after each pair is persisted. This pure Go implementation is used when the
// binary is built without OpenCV support.
package render

import (
	"fmt"
	"image"

	"flickertag/internal/session"
	"flickertag/pkg/geometry"
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

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}

	for _, a := range result.Annotations {
		col, ok := classes.Color(a.Label)
		if !ok {
			return nil, fmt.Errorf("result references undefined class %q", a.Label)
		}

		// Restrict the point-in-polygon scan to the polygon's bounds.
		box := geometry.BoundingBox(a.Polygon)
		minX := clamp(int(box.X), 0, width-1)
		maxX := clamp(int(box.X+box.Width)+1, 0, width-1)
		minY := clamp(int(box.Y), 0, height-1)
		maxY := clamp(int(box.Y+box.Height)+1, 0, height-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				p := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
				if geometry.PointInPolygon(p, a.Polygon) {
					out.SetRGBA(x, y, col)
				}
			}
		}
	}

	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
