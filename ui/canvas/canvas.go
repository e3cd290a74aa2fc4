// Package canvas provides the annotation viewport: flickering reference and
// target display with polygon capture.
package canvas

import (
	"image"
	"image/color"
	"sync"
	"time"

	flkimage "flickertag/internal/image"
	"flickertag/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// DefaultFlickerInterval is the cadence of the timed reference/target toggle.
const DefaultFlickerInterval = 800 * time.Millisecond

// DisplayPolygon is a finalized polygon to draw, in reference-image pixel
// coordinates.
type DisplayPolygon struct {
	Points []geometry.Point2D
	Color  color.RGBA
	Filled bool
}

// AnnotationCanvas displays one half of the current pair at a time and
// captures polygon vertices. The view transform (reference pixels to canvas
// coordinates) is computed when a pair is set and stays fixed until the next
// pair, so every captured vertex maps back consistently.
type AnnotationCanvas struct {
	widget.BaseWidget

	mu sync.Mutex

	reference *flkimage.Layer
	target    *flkimage.Layer
	preview   image.Image // change-map preview shown after save

	showTarget bool
	view       geometry.AffineTransform
	hasView    bool

	polygons    []DisplayPolygon
	pending     []geometry.Point2D // canvas coordinates
	pendingCol  color.RGBA
	fillAlpha   uint8
	raster      *fynecanvas.Raster
	flickerStop chan struct{}

	onVertex func(p geometry.Point2D) // canvas coordinates
	onClose  func()                   // right click: close current polygon
}

var _ fyne.Tappable = (*AnnotationCanvas)(nil)
var _ fyne.SecondaryTappable = (*AnnotationCanvas)(nil)

// NewAnnotationCanvas creates an empty annotation canvas.
func NewAnnotationCanvas() *AnnotationCanvas {
	ac := &AnnotationCanvas{
		pendingCol: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		fillAlpha:  40,
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.SetMinSize(fyne.NewSize(400, 300))
	ac.ExtendBaseWidget(ac)
	return ac
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.raster)
}

// OnVertex sets the callback for vertex placement. Coordinates are canvas
// coordinates; the session maps them into the reference frame.
func (ac *AnnotationCanvas) OnVertex(callback func(p geometry.Point2D)) {
	ac.onVertex = callback
}

// OnClosePolygon sets the callback for the close-polygon gesture
// (secondary click).
func (ac *AnnotationCanvas) OnClosePolygon(callback func()) {
	ac.onClose = callback
}

// SetPair installs a new image pair and freezes the view transform for its
// duration. Any overlay state from the previous pair is discarded.
func (ac *AnnotationCanvas) SetPair(reference, target *flkimage.Layer) {
	ac.mu.Lock()
	ac.reference = reference
	ac.target = target
	ac.preview = nil
	ac.showTarget = false
	ac.polygons = nil
	ac.pending = nil
	ac.view, ac.hasView = ac.computeView(reference)
	ac.mu.Unlock()
	ac.Refresh()
}

// Clear removes the current pair and all overlay state.
func (ac *AnnotationCanvas) Clear() {
	ac.StopFlicker()
	ac.mu.Lock()
	ac.reference = nil
	ac.target = nil
	ac.preview = nil
	ac.showTarget = false
	ac.polygons = nil
	ac.pending = nil
	ac.hasView = false
	ac.mu.Unlock()
	ac.Refresh()
}

// ViewTransform returns the fixed reference-pixels-to-canvas transform for
// the current pair. ok is false if no pair is loaded.
func (ac *AnnotationCanvas) ViewTransform() (geometry.AffineTransform, bool) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.view, ac.hasView
}

// computeView letterboxes the reference image into the current viewport.
// The transform comes from a least-squares fit of the corner
// correspondences, which is exact for four corners.
func (ac *AnnotationCanvas) computeView(reference *flkimage.Layer) (geometry.AffineTransform, bool) {
	if reference == nil || reference.Width() == 0 || reference.Height() == 0 {
		return geometry.Identity(), false
	}

	vp := ac.viewportSize()
	imgRect := geometry.NewRect(0, 0, reference.Size().Width, reference.Size().Height)
	fit := geometry.FitRect(reference.Size(), vp)

	dst := make([]geometry.Point2D, 4)
	for i, c := range imgRect.Corners() {
		dst[i] = fit.Apply(c)
	}

	view, err := geometry.FitAffine(imgRect.Corners(), dst)
	if err != nil {
		return fit, true
	}
	return view, true
}

// viewportSize returns the drawable size, with a sane default before the
// first layout pass.
func (ac *AnnotationCanvas) viewportSize() geometry.Size {
	size := ac.Size()
	if size.Width <= 0 || size.Height <= 0 {
		size = ac.raster.MinSize()
	}
	return geometry.NewSize(float64(size.Width), float64(size.Height))
}

// SetPolygons replaces the finalized polygons drawn over the imagery.
func (ac *AnnotationCanvas) SetPolygons(polygons []DisplayPolygon) {
	ac.mu.Lock()
	ac.polygons = polygons
	ac.mu.Unlock()
	ac.Refresh()
}

// SetPending replaces the in-progress vertex markers (canvas coordinates).
func (ac *AnnotationCanvas) SetPending(points []geometry.Point2D, col color.RGBA) {
	ac.mu.Lock()
	ac.pending = points
	ac.pendingCol = col
	ac.mu.Unlock()
	ac.Refresh()
}

// ShowPreview displays a rendered change map instead of the pair imagery
// until the next SetPair or Clear.
func (ac *AnnotationCanvas) ShowPreview(img image.Image) {
	ac.StopFlicker()
	ac.mu.Lock()
	ac.preview = img
	ac.mu.Unlock()
	ac.Refresh()
}

// Toggle switches the viewport between the reference and target image.
func (ac *AnnotationCanvas) Toggle() {
	ac.mu.Lock()
	if ac.target != nil {
		ac.showTarget = !ac.showTarget
	}
	ac.mu.Unlock()
	ac.Refresh()
}

// ShowingTarget reports whether the target image is currently displayed.
func (ac *AnnotationCanvas) ShowingTarget() bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.showTarget
}

// StartFlicker begins the timed reference/target alternation. Presentation
// only: capture coordinates always resolve against the reference frame.
func (ac *AnnotationCanvas) StartFlicker(interval time.Duration) {
	ac.StopFlicker()
	if interval <= 0 {
		interval = DefaultFlickerInterval
	}

	stop := make(chan struct{})
	ac.mu.Lock()
	ac.flickerStop = stop
	ac.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ac.Toggle()
			}
		}
	}()
}

// StopFlicker stops the timed alternation, leaving the current image shown.
func (ac *AnnotationCanvas) StopFlicker() {
	ac.mu.Lock()
	if ac.flickerStop != nil {
		close(ac.flickerStop)
		ac.flickerStop = nil
	}
	ac.mu.Unlock()
}

// Flickering reports whether the timed alternation is running.
func (ac *AnnotationCanvas) Flickering() bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.flickerStop != nil
}

// Tapped places a vertex at the tap position.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	ac.mu.Lock()
	armed := ac.hasView && ac.preview == nil
	ac.mu.Unlock()
	if !armed || ac.onVertex == nil {
		return
	}
	ac.onVertex(geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y)))
}

// TappedSecondary closes the in-progress polygon.
func (ac *AnnotationCanvas) TappedSecondary(_ *fyne.PointEvent) {
	if ac.onClose != nil {
		ac.onClose()
	}
}

// Refresh redraws the canvas.
func (ac *AnnotationCanvas) Refresh() {
	ac.raster.Refresh()
	ac.BaseWidget.Refresh()
}
