package session

import (
	"fmt"
	"image/color"
	"strings"
)

// ChangeClass is an operator-defined polygon label with a display color.
type ChangeClass struct {
	Name  string
	Color color.RGBA
}

// ClassSet is the immutable set of change classes active for a run.
type ClassSet struct {
	classes []ChangeClass
	byName  map[string]ChangeClass
}

// NewClassSet validates and freezes a set of change classes.
// Names must be non-blank and unique.
func NewClassSet(classes []ChangeClass) (*ClassSet, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("at least one change class must be defined")
	}

	byName := make(map[string]ChangeClass, len(classes))
	frozen := make([]ChangeClass, 0, len(classes))
	for _, c := range classes {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("change class name must not be blank")
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("duplicate change class %q", name)
		}
		c.Name = name
		byName[name] = c
		frozen = append(frozen, c)
	}

	return &ClassSet{classes: frozen, byName: byName}, nil
}

// Contains reports whether name is a defined change class.
func (s *ClassSet) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Color returns the display color for a class name.
func (s *ClassSet) Color(name string) (color.RGBA, bool) {
	c, ok := s.byName[name]
	return c.Color, ok
}

// Classes returns the classes in definition order.
func (s *ClassSet) Classes() []ChangeClass {
	out := make([]ChangeClass, len(s.classes))
	copy(out, s.classes)
	return out
}

// Len returns the number of defined classes.
func (s *ClassSet) Len() int {
	return len(s.classes)
}
