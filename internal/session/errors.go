package session

import "errors"

var (
	// ErrTooFewVertices is returned when a polygon is closed with fewer
	// than three vertices.
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")

	// ErrUnknownLabel is returned when a polygon is closed with a label
	// outside the active change-class set.
	ErrUnknownLabel = errors.New("label is not a defined change class")

	// ErrSessionClosed is returned by any mutation after Skip or Finish.
	ErrSessionClosed = errors.New("session already finished")

	// ErrSessionOpen is returned when the result is requested before the
	// session reached a terminal state.
	ErrSessionOpen = errors.New("session still in progress")
)
