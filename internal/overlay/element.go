// Package overlay holds the text-overlay data model and the store boundary
// the interactive components write through.
package overlay

import (
	"errors"

	"github.com/ivlev/overlaykit/internal/geometry"
)

// ErrInvalidAttribute is returned when an externally supplied attribute set
// does not have the shape of an overlay attribute.
var ErrInvalidAttribute = errors.New("invalid overlay attribute")

// CanvasSize is the logical canvas the overlay is positioned on.
type CanvasSize = geometry.Size

// Style is the visual styling of an overlay's text.
type Style struct {
	FontSize       float64 `yaml:"font_size,omitempty"`
	FontFamily     string  `yaml:"font_family,omitempty"`
	Color          string  `yaml:"color,omitempty"`
	Background     string  `yaml:"background,omitempty"`
	FontWeight     string  `yaml:"font_weight,omitempty"`
	FontStyle      string  `yaml:"font_style,omitempty"`
	TextDecoration string  `yaml:"text_decoration,omitempty"`
	TextAlign      string  `yaml:"text_align,omitempty"`
}

// DefaultStyle is applied to elements that do not specify one.
func DefaultStyle() Style {
	return Style{
		FontSize:   48,
		FontFamily: "sans-serif",
		Color:      "#ffffff",
		FontWeight: "normal",
		FontStyle:  "normal",
		TextAlign:  "center",
	}
}

// Element is a positioned, styled text object drawn above the preview.
// X and Y are logical canvas units with the origin at the canvas centre.
type Element struct {
	ID        string  `yaml:"id"`
	TrackID   string  `yaml:"track"`
	Content   string  `yaml:"content"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Rotation  float64 `yaml:"rotation,omitempty"`
	Opacity   float64 `yaml:"opacity"`
	Style     Style   `yaml:"style,omitempty"`
	Animation string  `yaml:"animation,omitempty"`
}

// NewElement returns a fully opaque element at the canvas centre.
func NewElement(trackID, id, content string) Element {
	return Element{
		ID:      id,
		TrackID: trackID,
		Content: content,
		Opacity: 1,
		Style:   DefaultStyle(),
	}
}

// Position returns the element's logical position.
func (e Element) Position() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}
