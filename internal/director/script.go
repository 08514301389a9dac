package director

import (
	"errors"

	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

// ErrUnknownEvent is returned for a script event whose kind the director
// does not know.
var ErrUnknownEvent = errors.New("unknown script event")

// Script is a recorded interaction session: the overlays on the canvas and
// the input that arrives over time.
type Script struct {
	Version  string            `yaml:"version"`
	Canvas   geometry.Size     `yaml:"canvas"`
	Surface  geometry.Rect     `yaml:"surface"`            // preview surface on screen, pixels
	Duration float64           `yaml:"duration,omitempty"` // seconds; 0 = last event plus Settle
	Elements []overlay.Element `yaml:"elements"`
	Events   []Event           `yaml:"events"`
}

// Event kinds.
const (
	PointerDown = "pointer_down"
	PointerMove = "pointer_move"
	PointerUp   = "pointer_up"
	DoubleClick = "double_click"
	Key         = "key"
	Input       = "input"
	Blur        = "blur"
	Trigger     = "trigger"
	Animation   = "animation"
	Style       = "style"
	Teardown    = "teardown"
)

// Event is one input signal at a time offset.
type Event struct {
	Time    float64 `yaml:"time"` // seconds from script start
	Kind    string  `yaml:"kind"`
	Element string  `yaml:"element,omitempty"`

	// Pointer position in screen pixels.
	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`
	// Button is left (default), right or middle.
	Button    string   `yaml:"button,omitempty"`
	Modifiers []string `yaml:"modifiers,omitempty"`

	// Key is a logical key name; Text is typed one character per key
	// event, or is the new input value for Input events.
	Key  string `yaml:"key,omitempty"`
	Text string `yaml:"text,omitempty"`

	Preset string         `yaml:"preset,omitempty"`
	Style  map[string]any `yaml:"style,omitempty"`
}
