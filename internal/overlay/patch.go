package overlay

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ivlev/overlaykit/internal/effects"
)

// Patch is a partial attribute update. Nil fields are left untouched.
type Patch struct {
	Content        *string
	X              *float64
	Y              *float64
	Rotation       *float64
	Opacity        *float64
	FontSize       *float64
	FontFamily     *string
	Color          *string
	Background     *string
	FontWeight     *string
	FontStyle      *string
	TextDecoration *string
	TextAlign      *string
	Animation      *string
}

// PositionPatch updates only the position.
func PositionPatch(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// ContentPatch updates only the text content.
func ContentPatch(content string) Patch {
	return Patch{Content: &content}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply returns e with the patch applied.
func (p Patch) Apply(e Element) Element {
	setString(&e.Content, p.Content)
	setFloat(&e.X, p.X)
	setFloat(&e.Y, p.Y)
	setFloat(&e.Rotation, p.Rotation)
	setFloat(&e.Opacity, p.Opacity)
	setFloat(&e.Style.FontSize, p.FontSize)
	setString(&e.Style.FontFamily, p.FontFamily)
	setString(&e.Style.Color, p.Color)
	setString(&e.Style.Background, p.Background)
	setString(&e.Style.FontWeight, p.FontWeight)
	setString(&e.Style.FontStyle, p.FontStyle)
	setString(&e.Style.TextDecoration, p.TextDecoration)
	setString(&e.Style.TextAlign, p.TextAlign)
	setString(&e.Animation, p.Animation)
	return e
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// StylePatch converts an externally produced style object into a Patch.
//
// Only the shape is checked: keys must be known attributes and values must
// be of the right kind. Values are not range-checked. A font size given as a
// string is parsed; an unparseable one is forwarded as NaN and left for the
// store boundary to reject.
func StylePatch(style map[string]any) (Patch, error) {
	var p Patch
	for key, raw := range style {
		var err error
		switch key {
		case "fontSize":
			p.FontSize, err = fontSize(raw)
		case "fontFamily":
			p.FontFamily, err = str(key, raw)
		case "color":
			p.Color, err = str(key, raw)
		case "backgroundColor", "background":
			p.Background, err = str(key, raw)
		case "fontWeight":
			p.FontWeight, err = strOrNumber(key, raw)
		case "fontStyle":
			p.FontStyle, err = str(key, raw)
		case "textDecoration":
			p.TextDecoration, err = str(key, raw)
		case "textAlign":
			p.TextAlign, err = str(key, raw)
		case "rotation":
			p.Rotation, err = number(key, raw)
		case "opacity":
			p.Opacity, err = number(key, raw)
		case "x":
			p.X, err = number(key, raw)
		case "y":
			p.Y, err = number(key, raw)
		case "animation":
			var name *string
			if name, err = str(key, raw); err == nil {
				var ap Patch
				if ap, err = AnimationPatch(*name); err == nil {
					p.Animation = ap.Animation
				}
			}
		default:
			err = fmt.Errorf("%w: unknown key %q", ErrInvalidAttribute, key)
		}
		if err != nil {
			return Patch{}, err
		}
	}
	return p, nil
}

// AnimationPatch records name as the element's entrance animation. The name
// must belong to the preset set.
func AnimationPatch(name string) (Patch, error) {
	if !effects.Known(name) {
		return Patch{}, fmt.Errorf("%w: %q", effects.ErrUnknownPreset, name)
	}
	return Patch{Animation: &name}, nil
}

func str(key string, v any) (*string, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidAttribute, key, v)
	}
	return &s, nil
}

func number(key string, v any) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return nil, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidAttribute, key, v)
	}
	return &f, nil
}

func strOrNumber(key string, v any) (*string, error) {
	if n, err := number(key, v); err == nil {
		s := strconv.FormatFloat(*n, 'f', -1, 64)
		return &s, nil
	}
	return str(key, v)
}

func fontSize(v any) (*float64, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			f = math.NaN()
		}
		return &f, nil
	}
	return number("fontSize", v)
}
