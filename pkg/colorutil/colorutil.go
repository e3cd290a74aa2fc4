// Package colorutil provides the named color palette used for change classes
// and overlay drawing.
package colorutil

import "image/color"

// Common overlay colors.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Orange  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	Purple  = color.RGBA{R: 128, G: 0, B: 128, A: 255}
)

// palette maps the class-color names offered in the UI to RGBA values.
var palette = map[string]color.RGBA{
	"red":     Red,
	"green":   Green,
	"yellow":  Yellow,
	"blue":    Blue,
	"magenta": Magenta,
	"cyan":    Cyan,
	"orange":  Orange,
	"purple":  Purple,
	"white":   White,
}

// paletteOrder fixes the order colors are offered in pickers.
var paletteOrder = []string{
	"red", "green", "yellow", "blue", "magenta", "cyan", "orange", "purple", "white",
}

// Lookup returns the RGBA value for a named palette color.
func Lookup(name string) (color.RGBA, bool) {
	c, ok := palette[name]
	return c, ok
}

// Names returns the palette color names in picker order.
func Names() []string {
	names := make([]string, len(paletteOrder))
	copy(names, paletteOrder)
	return names
}

// WithAlpha returns the color with its alpha channel replaced.
func WithAlpha(c color.RGBA, alpha uint8) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}
