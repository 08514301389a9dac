// Package drag implements the pointer-drag gesture that repositions an
// overlay on its canvas.
package drag

import (
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/input"
)

// PositionFunc receives clamped logical coordinates on every accepted move.
type PositionFunc func(x, y float64)

// SurfaceFunc returns the preview surface's on-screen rectangle, or
// ok=false while the surface is not mounted.
type SurfaceFunc func() (rect geometry.Rect, ok bool)

// Session is one drag gesture. It exists from pointer-down until release or
// teardown.
type Session struct {
	Grab   geometry.Point
	active bool
	sub    *input.Subscription
}

// Active reports whether the gesture is still in progress.
func (s *Session) Active() bool { return s != nil && s.active }

// Controller owns the drag gesture of a single element. It is not safe for
// concurrent use; drive it from the element's event loop.
type Controller struct {
	scope      *input.Scope
	surface    SurfaceFunc
	onPosition PositionFunc
	canvas     geometry.Size

	session *Session
	closed  bool
}

// New returns a controller that observes scope during a gesture and reports
// positions to onPosition.
func New(scope *input.Scope, surface SurfaceFunc, onPosition PositionFunc) *Controller {
	return &Controller{
		scope:      scope,
		surface:    surface,
		onPosition: onPosition,
	}
}

// SetCanvas updates the logical canvas used for the clamp bounds. The host
// calls it on every render.
func (c *Controller) SetCanvas(size geometry.Size) {
	c.canvas = size
}

// BeginDrag starts a gesture at ev over an element currently drawn at
// visual. The caller must not start a drag while the element is being
// edited.
//
// Move and release observers are installed on the window-wide scope so the
// drag continues when the pointer leaves the element.
func (c *Controller) BeginDrag(ev input.PointerEvent, visual geometry.Rect) {
	if c.closed || c.session.Active() {
		return
	}
	s := &Session{
		Grab:   geometry.GrabOffset(ev.Point(), visual),
		active: true,
	}
	s.sub = c.scope.Observe(
		func(e input.PointerEvent) { c.move(s, e) },
		func(input.PointerEvent) { c.end(s) },
	)
	c.session = s
}

// move runs for every pointer-move signal and must not block.
func (c *Controller) move(s *Session, e input.PointerEvent) {
	if !s.active {
		return
	}
	rect, ok := c.surface()
	if !ok {
		return
	}
	p, ok := geometry.ToLogical(e.Point(), &rect, s.Grab, c.canvas)
	if !ok {
		return
	}
	c.onPosition(p.X, p.Y)
}

func (c *Controller) end(s *Session) {
	s.active = false
	s.sub.Close()
	if c.session == s {
		c.session = nil
	}
}

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool {
	return c.session.Active()
}

// Session returns the current gesture, or nil.
func (c *Controller) Session() *Session {
	return c.session
}

// Cancel ends the current gesture without a release signal. No further
// position updates are made for it.
func (c *Controller) Cancel() {
	if c.session != nil {
		c.end(c.session)
	}
}

// Close tears the controller down. Any gesture in progress is ended and its
// observers detached; later BeginDrag calls are ignored.
func (c *Controller) Close() {
	c.Cancel()
	c.closed = true
}
