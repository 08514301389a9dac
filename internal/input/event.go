// Package input defines the pointer and keyboard signals an overlay reacts to
// and the window-wide observation scope drag gestures subscribe to.
package input

import "github.com/ivlev/overlaykit/internal/geometry"

// MouseButton identifies which pointer button was pressed.
type MouseButton uint8

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper // Cmd on Mac, Win on Windows
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Super() bool { return m&ModSuper != 0 }

// PointerEvent is a pointer signal in screen pixels.
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers Modifiers
}

// Point returns the event position.
func (e PointerEvent) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// Logical key names.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
)

// KeyEvent is a keyboard signal. Rune is set for printable input.
type KeyEvent struct {
	Key       string
	Rune      rune
	Modifiers Modifiers
}
