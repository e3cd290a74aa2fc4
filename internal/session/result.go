package session

import (
	"encoding/json"
	"fmt"

	"flickertag/pkg/geometry"
)

// SkipSentinel is the literal value persisted when the operator declines to
// annotate a pair.
const SkipSentinel = "skipped by annotator"

// Result is the outcome of one session: either the skip sentinel or the
// ordered annotation sequence.
type Result struct {
	Skipped     bool
	Annotations []Annotation
}

// annotationJSON is the on-disk form of one annotation: the polygon as an
// ordered list of [x, y] pairs in reference-image pixel space, plus the label.
type annotationJSON struct {
	Polygon [][2]float64 `json:"polygon"`
	Label   string       `json:"label"`
}

// MarshalJSON encodes a skipped result as the sentinel string and a finished
// result as the annotation array.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Skipped {
		return json.Marshal(SkipSentinel)
	}

	out := make([]annotationJSON, len(r.Annotations))
	for i, a := range r.Annotations {
		points := make([][2]float64, len(a.Polygon))
		for j, p := range a.Polygon {
			points[j] = [2]float64{p.X, p.Y}
		}
		out[i] = annotationJSON{Polygon: points, Label: a.Label}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes either form.
func (r *Result) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		if sentinel != SkipSentinel {
			return fmt.Errorf("unexpected result sentinel %q", sentinel)
		}
		*r = Result{Skipped: true}
		return nil
	}

	var raw []annotationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed result document: %w", err)
	}

	annotations := make([]Annotation, len(raw))
	for i, a := range raw {
		points := make([]geometry.Point2D, len(a.Polygon))
		for j, p := range a.Polygon {
			points[j] = geometry.Point2D{X: p[0], Y: p[1]}
		}
		annotations[i] = Annotation{Polygon: points, Label: a.Label}
	}
	*r = Result{Annotations: annotations}
	return nil
}
