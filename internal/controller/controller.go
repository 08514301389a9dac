// Package controller wires one overlay element's interactive components
// together: the drag gesture, the edit session and the animation engine,
// all writing through the shared store.
package controller

import (
	"github.com/ivlev/overlaykit/internal/drag"
	"github.com/ivlev/overlaykit/internal/edit"
	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/engine"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/input"
	"github.com/ivlev/overlaykit/internal/log"
	"github.com/ivlev/overlaykit/internal/loop"
	"github.com/ivlev/overlaykit/internal/overlay"
	"github.com/ivlev/overlaykit/internal/renderer"
)

// Config describes the element a Controller drives and its environment.
type Config struct {
	TrackID   string
	ElementID string

	Model     overlay.Model
	Scope     *input.Scope
	Scheduler loop.Scheduler
	Surface   drag.SurfaceFunc

	// Catalog defaults to the built-in presets.
	Catalog *effects.Catalog
	Split   effects.SplitMode
}

// Controller is the per-element interaction core. Every method must be
// called from the element's event loop.
type Controller struct {
	cfg    Config
	drag   *drag.Controller
	edit   *edit.Session
	engine *engine.Engine
	canvas overlay.CanvasSize
	closed bool
}

// New builds the controller for one element.
func New(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	c.drag = drag.New(cfg.Scope, cfg.Surface, c.onPosition)
	c.edit = edit.New(c.onCommit)
	c.engine = engine.New(cfg.Scheduler, cfg.Catalog,
		engine.WithSplitMode(cfg.Split),
		engine.OnStart(func(pb *engine.Playback) {
			log.Debug("animation started", "element", cfg.ElementID, "preset", pb.Sequence.Preset)
		}),
		engine.OnComplete(func(preset string) {
			log.Debug("animation finished", "element", cfg.ElementID, "preset", preset)
		}),
	)
	return c
}

// ID returns the element id.
func (c *Controller) ID() string { return c.cfg.ElementID }

// TrackID returns the track the element belongs to.
func (c *Controller) TrackID() string { return c.cfg.TrackID }

// SetCanvas records the logical canvas the host is rendering at.
func (c *Controller) SetCanvas(canvas overlay.CanvasSize) {
	c.canvas = canvas
	c.drag.SetCanvas(canvas)
}

// AttachInput sets the text input focused while editing.
func (c *Controller) AttachInput(s edit.Surface) {
	c.edit.Attach(s)
}

// Element returns the element's stored state.
func (c *Controller) Element() (overlay.Element, bool) {
	return c.cfg.Model.Get(c.cfg.TrackID, c.cfg.ElementID)
}

func (c *Controller) content() string {
	e, _ := c.Element()
	return e.Content
}

func (c *Controller) onPosition(x, y float64) {
	c.cfg.Model.UpdateElement(c.cfg.TrackID, c.cfg.ElementID, overlay.PositionPatch(x, y))
}

func (c *Controller) onCommit(content string) {
	c.cfg.Model.UpdateElement(c.cfg.TrackID, c.cfg.ElementID, overlay.ContentPatch(content))
}

// PointerDown starts a drag gesture for a primary-button press on the
// element, drawn at visual. It is ignored while editing and reports whether
// a gesture started.
func (c *Controller) PointerDown(ev input.PointerEvent, visual geometry.Rect) bool {
	if c.closed || c.edit.Editing() {
		return false
	}
	if ev.Button != input.ButtonLeft && ev.Button != input.ButtonNone {
		return false
	}
	c.drag.BeginDrag(ev, visual)
	return c.drag.Active()
}

// DoubleClick enters edit mode seeded with the stored content. A gesture in
// progress is ended first.
func (c *Controller) DoubleClick() bool {
	if c.closed {
		return false
	}
	c.drag.Cancel()
	return c.edit.Enter(c.content())
}

// Key forwards a key press to the edit session.
func (c *Controller) Key(ev input.KeyEvent) bool {
	if c.closed {
		return false
	}
	return c.edit.HandleKey(ev)
}

// Input replaces the draft with the input surface's value.
func (c *Controller) Input(text string) {
	c.edit.SetDraft(text)
}

// Blur commits the draft.
func (c *Controller) Blur() {
	c.edit.Blur()
}

// Trigger plays the named preset over the stored content. It reports
// whether playback started; a running playback makes it a no-op.
func (c *Controller) Trigger(name string) bool {
	if c.closed {
		return false
	}
	return c.engine.Trigger(name, c.content())
}

// ApplyStyle writes an externally supplied attribute set, such as a
// suggested style, through the store. A position is clamped to the canvas
// first, and dropped when no canvas is set.
func (c *Controller) ApplyStyle(attrs map[string]any) error {
	p, err := overlay.StylePatch(attrs)
	if err != nil {
		return err
	}
	c.clampPosition(&p)
	if !p.Empty() {
		c.cfg.Model.UpdateElement(c.cfg.TrackID, c.cfg.ElementID, p)
	}
	return nil
}

func (c *Controller) clampPosition(p *overlay.Patch) {
	if p.X == nil && p.Y == nil {
		return
	}
	if !c.canvas.Valid() {
		p.X, p.Y = nil, nil
		return
	}
	if p.X != nil {
		x := geometry.Clamp(*p.X, -c.canvas.Width/2, c.canvas.Width/2)
		p.X = &x
	}
	if p.Y != nil {
		y := geometry.Clamp(*p.Y, -c.canvas.Height/2, c.canvas.Height/2)
		p.Y = &y
	}
}

// ApplyAnimation plays name and, if it started, records it as the
// element's animation. While another playback runs nothing is written.
func (c *Controller) ApplyAnimation(name string) (bool, error) {
	p, err := overlay.AnimationPatch(name)
	if err != nil {
		return false, err
	}
	if !c.Trigger(name) {
		return false, nil
	}
	c.cfg.Model.UpdateElement(c.cfg.TrackID, c.cfg.ElementID, p)
	return true, nil
}

// Dragging reports whether a drag gesture is in progress.
func (c *Controller) Dragging() bool { return c.drag.Active() }

// Editing reports whether the element is in edit mode.
func (c *Controller) Editing() bool { return c.edit.Editing() }

// Mode returns the edit mode.
func (c *Controller) Mode() edit.Mode { return c.edit.Mode() }

// Draft returns the uncommitted text.
func (c *Controller) Draft() string { return c.edit.Draft() }

// Animating reports whether a playback is running.
func (c *Controller) Animating() bool { return c.engine.Running() }

// Playback returns the running playback, or nil.
func (c *Controller) Playback() *engine.Playback { return c.engine.Playback() }

// Pending returns the number of animation sub-steps still outstanding.
func (c *Controller) Pending() int { return c.engine.Pending() }

// State returns the interaction state to render with.
func (c *Controller) State() renderer.State {
	return renderer.State{
		Dragging: c.drag.Active(),
		Editing:  c.edit.Editing(),
		Draft:    c.edit.Draft(),
		Frame:    c.engine.Sample(),
	}
}

// Node projects the element at scaleRatio. ok is false when the element is
// not in the store.
func (c *Controller) Node(scaleRatio float64) (renderer.Node, bool) {
	e, ok := c.Element()
	if !ok {
		return renderer.Node{}, false
	}
	return renderer.Project(e, c.canvas, scaleRatio, c.State()), true
}

// Close tears the element down: any drag observers are detached, an open
// edit is discarded and pending animation timers are released.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.drag.Close()
	c.edit.Cancel()
	c.engine.Close()
}
