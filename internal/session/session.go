// Package session implements the per-pair annotation state machine: polygon
// capture in canvas coordinates, mapping back to reference-image pixels, and
// the terminal skip/finish result. It has no GUI dependencies so the capture
// logic is unit-testable headlessly.
package session

import (
	"fmt"

	"flickertag/internal/pairing"
	"flickertag/pkg/geometry"
)

// Annotation pairs one finalized polygon, in reference-image pixel
// coordinates, with its change-class label.
type Annotation struct {
	Polygon []geometry.Point2D
	Label   string
}

// Session drives one operator interaction cycle for one image pair.
//
// Vertices arrive in canvas coordinates; the view transform captured at
// construction is fixed for the life of the session and its inverse maps
// every vertex into the reference image's pixel frame.
type Session struct {
	pair    pairing.Pair
	classes *ClassSet

	view    geometry.AffineTransform // image -> canvas
	toImage geometry.AffineTransform // canvas -> image

	pending     []geometry.Point2D // in-progress polygon, canvas coords
	annotations []Annotation

	done    bool
	skipped bool
}

// New creates a session for the given pair. view maps reference-image pixel
// coordinates to canvas coordinates and must be invertible.
func New(pair pairing.Pair, classes *ClassSet, view geometry.AffineTransform) (*Session, error) {
	if classes == nil || classes.Len() == 0 {
		return nil, fmt.Errorf("no change classes defined")
	}
	inv, ok := view.Inverse()
	if !ok {
		return nil, fmt.Errorf("view transform is not invertible")
	}
	return &Session{
		pair:    pair,
		classes: classes,
		view:    view,
		toImage: inv,
	}, nil
}

// Pair returns the image pair under annotation.
func (s *Session) Pair() pairing.Pair {
	return s.pair
}

// Classes returns the active change-class set.
func (s *Session) Classes() *ClassSet {
	return s.classes
}

// ViewTransform returns the fixed image-to-canvas transform.
func (s *Session) ViewTransform() geometry.AffineTransform {
	return s.view
}

// AddVertex appends a canvas-space point to the in-progress polygon, opening
// one if none is open yet.
func (s *Session) AddVertex(p geometry.Point2D) error {
	if s.done {
		return ErrSessionClosed
	}
	s.pending = append(s.pending, p)
	return nil
}

// PendingVertices returns the in-progress polygon's points in canvas space.
func (s *Session) PendingVertices() []geometry.Point2D {
	out := make([]geometry.Point2D, len(s.pending))
	copy(out, s.pending)
	return out
}

// ClosePolygon finalizes the in-progress polygon under the given label.
// The annotation list is left untouched on error so the operator can retry.
func (s *Session) ClosePolygon(label string) error {
	if s.done {
		return ErrSessionClosed
	}
	if len(s.pending) < 3 {
		return fmt.Errorf("%w: got %d", ErrTooFewVertices, len(s.pending))
	}
	if !s.classes.Contains(label) {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}

	polygon := make([]geometry.Point2D, len(s.pending))
	for i, p := range s.pending {
		polygon[i] = s.toImage.Apply(p)
	}

	s.annotations = append(s.annotations, Annotation{Polygon: polygon, Label: label})
	s.pending = nil
	return nil
}

// DiscardPolygon drops the in-progress polygon, if any.
func (s *Session) DiscardPolygon() {
	s.pending = nil
}

// Undo drops the in-progress polygon if one is open, otherwise the most
// recently finalized annotation.
func (s *Session) Undo() {
	if s.done {
		return
	}
	if len(s.pending) > 0 {
		s.pending = nil
		return
	}
	if len(s.annotations) > 0 {
		s.annotations = s.annotations[:len(s.annotations)-1]
	}
}

// Annotations returns the finalized annotations so far.
func (s *Session) Annotations() []Annotation {
	out := make([]Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// Skip marks this pair's result as skipped, discarding any in-progress
// polygon and all finalized annotations. Terminal.
func (s *Session) Skip() error {
	if s.done {
		return ErrSessionClosed
	}
	s.pending = nil
	s.done = true
	s.skipped = true
	return nil
}

// Finish finalizes the annotation sequence (possibly empty) as the session
// result. Terminal.
func (s *Session) Finish() error {
	if s.done {
		return ErrSessionClosed
	}
	s.pending = nil
	s.done = true
	return nil
}

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool {
	return s.done
}

// Result returns the session result once the session is terminal.
func (s *Session) Result() (Result, error) {
	if !s.done {
		return Result{}, ErrSessionOpen
	}
	if s.skipped {
		return Result{Skipped: true}, nil
	}
	return Result{Annotations: s.Annotations()}, nil
}
