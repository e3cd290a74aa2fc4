package canvas

import (
	"image"
	"image/color"

	flkimage "flickertag/internal/image"
	"flickertag/pkg/geometry"
)

const (
	outlineThickness = 2
	vertexMarkerSize = 3
)

// draw is the raster drawing function.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	ac.mu.Lock()
	reference := ac.reference
	target := ac.target
	preview := ac.preview
	showTarget := ac.showTarget
	view := ac.view
	hasView := ac.hasView
	polygons := ac.polygons
	pending := ac.pending
	pendingCol := ac.pendingCol
	fillAlpha := ac.fillAlpha
	ac.mu.Unlock()

	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Opaque black background
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	if !hasView {
		return output
	}

	layer := reference
	if showTarget && target != nil {
		layer = target
	}

	if preview != nil {
		drawImage(output, preview, view, w, h)
	} else if layer != nil {
		drawLayer(output, layer, view, w, h)
	}

	for _, poly := range polygons {
		drawPolygon(output, poly, view, fillAlpha)
	}

	for _, p := range pending {
		drawVertexMarker(output, p, pendingCol)
	}

	return output
}

// drawLayer paints a layer through the view transform using nearest-neighbor
// sampling. Both pair halves are co-registered, so the reference view
// transform applies to the target as well.
func drawLayer(output *image.RGBA, layer *flkimage.Layer, view geometry.AffineTransform, w, h int) {
	if layer.Image == nil {
		return
	}
	drawImage(output, layer.Image, view, w, h)
}

func drawImage(output *image.RGBA, src image.Image, view geometry.AffineTransform, w, h int) {
	inv, ok := view.Inverse()
	if !ok {
		return
	}

	bounds := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := inv.Apply(geometry.NewPoint2D(float64(x)+0.5, float64(y)+0.5))
			sx := bounds.Min.X + int(p.X)
			sy := bounds.Min.Y + int(p.Y)
			if sx < bounds.Min.X || sx >= bounds.Max.X || sy < bounds.Min.Y || sy >= bounds.Max.Y {
				continue
			}
			output.Set(x, y, src.At(sx, sy))
		}
	}
}

// drawPolygon draws one finalized polygon: translucent scanline fill plus a
// solid outline. Points are reference-image coordinates and are mapped
// through the view transform.
func drawPolygon(output *image.RGBA, poly DisplayPolygon, view geometry.AffineTransform, fillAlpha uint8) {
	if len(poly.Points) < 3 {
		return
	}

	bounds := output.Bounds()

	mapped := make([]geometry.Point2D, len(poly.Points))
	minY, maxY := 1e18, -1e18
	for i, p := range poly.Points {
		mapped[i] = view.Apply(p)
		if mapped[i].Y < minY {
			minY = mapped[i].Y
		}
		if mapped[i].Y > maxY {
			maxY = mapped[i].Y
		}
	}

	if poly.Filled {
		fill := poly.Color
		fill.A = fillAlpha
		for y := int(minY); y <= int(maxY); y++ {
			if y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}

			// x intersections of polygon edges with this scanline
			var xs []float64
			n := len(mapped)
			for i := 0; i < n; i++ {
				p1 := mapped[i]
				p2 := mapped[(i+1)%n]
				if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
					(p2.Y <= float64(y) && p1.Y > float64(y)) {
					t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
					xs = append(xs, p1.X+t*(p2.X-p1.X))
				}
			}

			for i := 0; i < len(xs)-1; i++ {
				for j := i + 1; j < len(xs); j++ {
					if xs[j] < xs[i] {
						xs[i], xs[j] = xs[j], xs[i]
					}
				}
			}

			for i := 0; i+1 < len(xs); i += 2 {
				x1, x2 := int(xs[i]), int(xs[i+1])
				for x := x1; x <= x2; x++ {
					if x >= bounds.Min.X && x < bounds.Max.X {
						blendPixel(output, x, y, fill)
					}
				}
			}
		}
	}

	n := len(mapped)
	for i := 0; i < n; i++ {
		p1 := mapped[i]
		p2 := mapped[(i+1)%n]
		drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), poly.Color, outlineThickness)
	}
}

// drawVertexMarker draws a small solid square at a canvas position.
func drawVertexMarker(output *image.RGBA, p geometry.Point2D, col color.RGBA) {
	bounds := output.Bounds()
	cx, cy := int(p.X), int(p.Y)
	for dy := -vertexMarkerSize; dy <= vertexMarkerSize; dy++ {
		for dx := -vertexMarkerSize; dx <= vertexMarkerSize; dx++ {
			x, y := cx+dx, cy+dy
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				output.SetRGBA(x, y, col)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	errAcc := dx - dy

	x, y := x1, y1
	for {
		for ty := -thickness / 2; ty <= thickness/2; ty++ {
			for tx := -thickness / 2; tx <= thickness/2; tx++ {
				px, py := x+tx, y+ty
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.SetRGBA(px, py, col)
				}
			}
		}

		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * errAcc
		if e2 > -dy {
			errAcc -= dy
			x += sx
		}
		if e2 < dx {
			errAcc += dx
			y += sy
		}
	}
}

// blendPixel alpha-blends col over the existing pixel.
func blendPixel(output *image.RGBA, x, y int, col color.RGBA) {
	dst := output.RGBAAt(x, y)
	a := uint32(col.A)
	ia := 255 - a
	output.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(col.R)*a + uint32(dst.R)*ia) / 255),
		G: uint8((uint32(col.G)*a + uint32(dst.G)*ia) / 255),
		B: uint8((uint32(col.B)*a + uint32(dst.B)*ia) / 255),
		A: 255,
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
