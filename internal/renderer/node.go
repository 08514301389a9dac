// Package renderer projects an overlay element and its interaction state
// into a positioned visual node, and draws nodes onto preview frames.
package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/overlaykit/internal/engine"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

// State is the ephemeral interaction state of an element at render time.
type State struct {
	Dragging bool
	Editing  bool
	Draft    string
	Frame    engine.Frame
}

// RestState is the state of an element nobody is interacting with.
func RestState() State {
	return State{Frame: engine.Rest()}
}

// Node is the visual projection of one element.
type Node struct {
	ElementID string
	Text      string
	// Units, when set, replace Text for the duration of a reveal.
	Units     []engine.UnitState
	Placement geometry.Placement
	Opacity   float64
	Glow      float64
	Style     overlay.Style
	Editing   bool
	Cursor    string
}

// Project builds the node for e on a canvas drawn at scaleRatio.
//
// With no animation running, the node's placement is exactly
// geometry.NewPlacement(e.Position(), canvas, scaleRatio, e.Rotation).
func Project(e overlay.Element, canvas overlay.CanvasSize, scaleRatio float64, st State) Node {
	f := st.Frame
	if !f.Animating() {
		f = engine.Rest()
	}

	pos := e.Position()
	if f.OffsetX != 0 || f.OffsetY != 0 {
		pos = geometry.Point{X: pos.X + f.OffsetX, Y: pos.Y + f.OffsetY}
	}
	scale := scaleRatio
	if f.Scale != 1 {
		scale *= f.Scale
	}

	n := Node{
		ElementID: e.ID,
		Text:      e.Content,
		Placement: geometry.NewPlacement(pos, canvas, scale, e.Rotation),
		Opacity:   e.Opacity * f.Opacity,
		Glow:      f.Glow,
		Style:     e.Style,
		Cursor:    "grab",
	}
	switch {
	case st.Editing:
		n.Text = st.Draft
		n.Editing = true
		n.Cursor = "text"
	case st.Dragging:
		n.Cursor = "grabbing"
	}
	if len(f.Units) > 0 && !st.Editing {
		n.Units = f.Units
	}
	return n
}

// TextShadow returns the CSS text-shadow for a glow strength in [0,1]: none
// at 0, a triple white glow at 1.
func TextShadow(glow float64) string {
	if glow <= 0 {
		return "none"
	}
	if glow > 1 {
		glow = 1
	}
	a := strconv.FormatFloat(glow, 'f', 3, 64)
	return fmt.Sprintf("0 0 10px rgba(255,255,255,%s), 0 0 20px rgba(255,255,255,%s), 0 0 30px rgba(255,255,255,%s)", a, a, a)
}

// CSS renders the node's positioning and style as an inline style string.
// Numbers are printed with full precision so layouts can be compared
// exactly.
func (n Node) CSS() string {
	num := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

	var b strings.Builder
	fmt.Fprintf(&b, "position:absolute;left:%s%%;top:%s%%;", num(n.Placement.LeftPct), num(n.Placement.TopPct))
	fmt.Fprintf(&b, "transform:translate(-50%%,-50%%) scale(%s) rotate(%sdeg);", num(n.Placement.Scale), num(n.Placement.Rotation))
	fmt.Fprintf(&b, "opacity:%s;", num(n.Opacity))
	if n.Style.FontSize > 0 {
		fmt.Fprintf(&b, "font-size:%spx;", num(n.Style.FontSize))
	}
	for _, kv := range [][2]string{
		{"font-family", n.Style.FontFamily},
		{"color", n.Style.Color},
		{"background-color", n.Style.Background},
		{"font-weight", n.Style.FontWeight},
		{"font-style", n.Style.FontStyle},
		{"text-decoration", n.Style.TextDecoration},
		{"text-align", n.Style.TextAlign},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "%s:%s;", kv[0], kv[1])
		}
	}
	fmt.Fprintf(&b, "text-shadow:%s;cursor:%s;white-space:pre-wrap;", TextShadow(n.Glow), n.Cursor)
	return b.String()
}

// VisibleText returns the characters the node currently shows.
func (n Node) VisibleText() string {
	if len(n.Units) == 0 {
		return n.Text
	}
	var b strings.Builder
	for _, u := range n.Units {
		b.WriteString(u.Text)
	}
	return b.String()
}
