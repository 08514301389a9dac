// Package director replays a recorded interaction script against the
// overlay controllers on a virtual clock and collects what the preview
// shows at every frame.
package director

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ivlev/overlaykit/internal/controller"
	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/input"
	"github.com/ivlev/overlaykit/internal/log"
	"github.com/ivlev/overlaykit/internal/loop"
	"github.com/ivlev/overlaykit/internal/overlay"
	"github.com/ivlev/overlaykit/internal/renderer"
)

// DefaultTrack is assigned to script elements without a track.
const DefaultTrack = "main"

// Director replays scripts.
type Director struct {
	FPS int
	// Settle is how long, in seconds, the replay runs past the last event
	// when the script sets no duration.
	Settle float64
	// MaxSettle bounds how long the replay waits for running animations.
	MaxSettle float64

	Catalog *effects.Catalog
	Split   effects.SplitMode
	Faces   *renderer.Faces
}

// NewDirector creates a new Director with default settings
func NewDirector(fps int) *Director {
	return &Director{
		FPS:       fps,
		Settle:    1.0,
		MaxSettle: 30.0,
		Faces:     renderer.NewFaces(),
	}
}

// Item is one element as it stood at a snapshot.
type Item struct {
	Element overlay.Element
	State   renderer.State
}

// Snapshot is what the preview showed at one frame time.
type Snapshot struct {
	Time  time.Duration
	Items []Item
}

// Nodes projects the snapshot for a canvas drawn at scaleRatio.
func (s Snapshot) Nodes(canvas overlay.CanvasSize, scaleRatio float64) []renderer.Node {
	nodes := make([]renderer.Node, len(s.Items))
	for i, it := range s.Items {
		nodes[i] = renderer.Project(it.Element, canvas, scaleRatio, it.State)
	}
	return nodes
}

// PlaybackRecord is an animation that started during the replay.
type PlaybackRecord struct {
	TrackID   string
	ElementID string
	Start     time.Duration
	Sequence  effects.Sequence
}

// Result is the outcome of a replay.
type Result struct {
	Canvas    overlay.CanvasSize
	Store     *overlay.MemoryStore
	Snapshots []Snapshot
	Playbacks []PlaybackRecord

	// Rejected counts triggers dropped by the busy guard.
	Rejected int
	// Observers and Timers still registered after every element was torn
	// down. Both must be zero.
	Observers int
	Timers    int
}

// Validate checks the script can be replayed.
func (s *Script) Validate() error {
	if !s.Canvas.Valid() {
		return fmt.Errorf("canvas %vx%v must be positive", s.Canvas.Width, s.Canvas.Height)
	}
	if s.Surface.Empty() {
		return fmt.Errorf("surface %vx%v must be positive", s.Surface.Width, s.Surface.Height)
	}
	seen := make(map[string]bool)
	for i, e := range s.Elements {
		if e.ID == "" {
			return fmt.Errorf("element %d has no id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate element id %q", e.ID)
		}
		seen[e.ID] = true
	}
	for i, ev := range s.Events {
		if ev.Time < 0 || math.IsNaN(ev.Time) {
			return fmt.Errorf("event %d: bad time %v", i, ev.Time)
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

type replay struct {
	d      *Director
	script *Script
	sched  *loop.ManualScheduler
	scope  *input.Scope
	res    *Result
	ctrls  map[string]*controller.Controller
	order  []string
	scale  float64
}

// Run replays script and returns the final store and the per-frame
// snapshots. Events are applied in time order; events with equal times keep
// their script order.
func (d *Director) Run(script *Script) (*Result, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if d.FPS <= 0 {
		return nil, fmt.Errorf("fps %d must be positive", d.FPS)
	}
	if d.Faces == nil {
		d.Faces = renderer.NewFaces()
	}

	r := &replay{
		d:      d,
		script: script,
		sched:  loop.NewManualScheduler(),
		scope:  input.NewScope(),
		res:    &Result{Canvas: script.Canvas, Store: overlay.NewMemoryStore()},
		ctrls:  make(map[string]*controller.Controller),
		scale:  script.Surface.Width / script.Canvas.Width,
	}
	r.mount()

	events := append([]Event(nil), script.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })

	end := seconds(script.Duration)
	if script.Duration == 0 {
		end = seconds(d.Settle)
		if len(events) > 0 {
			end += seconds(events[len(events)-1].Time)
		}
	}
	limit := end + seconds(d.MaxSettle)

	step := time.Second / time.Duration(d.FPS)
	next := 0
	for frame := 0; ; frame++ {
		t := time.Duration(frame) * step
		if t > end && (script.Duration != 0 || !r.animating() || t > limit) {
			break
		}
		for next < len(events) && seconds(events[next].Time) <= t {
			ev := events[next]
			r.sched.AdvanceTo(seconds(ev.Time))
			if err := r.dispatch(ev); err != nil {
				r.teardown()
				return nil, fmt.Errorf("event %d (%s at %.3fs): %w", next, ev.Kind, ev.Time, err)
			}
			next++
		}
		r.sched.AdvanceTo(t)
		r.res.Snapshots = append(r.res.Snapshots, r.snapshot(t))
	}
	if next < len(events) {
		log.Warn("events past the script duration were not replayed", "count", len(events)-next)
	}

	r.teardown()
	return r.res, nil
}

func (r *replay) mount() {
	for _, e := range r.script.Elements {
		if e.TrackID == "" {
			e.TrackID = DefaultTrack
		}
		if e.Style == (overlay.Style{}) {
			e.Style = overlay.DefaultStyle()
		}
		r.res.Store.Put(e)

		surface := r.script.Surface
		c := controller.New(controller.Config{
			TrackID:   e.TrackID,
			ElementID: e.ID,
			Model:     r.res.Store,
			Scope:     r.scope,
			Scheduler: r.sched,
			Surface:   func() (geometry.Rect, bool) { return surface, !surface.Empty() },
			Catalog:   r.d.Catalog,
			Split:     r.d.Split,
		})
		c.SetCanvas(r.script.Canvas)
		r.ctrls[e.ID] = c
		r.order = append(r.order, e.ID)
	}
}

func (r *replay) teardown() {
	for _, id := range r.order {
		if c, ok := r.ctrls[id]; ok {
			c.Close()
			delete(r.ctrls, id)
		}
	}
	r.res.Observers = r.scope.Observers()
	r.res.Timers = r.sched.Pending()
}

func (r *replay) animating() bool {
	for _, c := range r.ctrls {
		if c.Animating() {
			return true
		}
	}
	return false
}

func (r *replay) snapshot(t time.Duration) Snapshot {
	s := Snapshot{Time: t}
	for _, id := range r.order {
		c, ok := r.ctrls[id]
		if !ok {
			continue
		}
		e, ok := c.Element()
		if !ok {
			continue
		}
		s.Items = append(s.Items, Item{Element: e, State: c.State()})
	}
	return s
}

func (r *replay) dispatch(ev Event) error {
	pe, err := pointerEvent(ev)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case PointerMove:
		r.scope.DispatchMove(pe)
		return nil
	case PointerUp:
		r.scope.DispatchRelease(pe)
		return nil
	case PointerDown, DoubleClick, Key, Input, Blur, Trigger, Animation, Style, Teardown:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	c, ok := r.ctrls[ev.Element]
	if !ok {
		if r.known(ev.Element) {
			log.Debug("event for torn-down element ignored", "element", ev.Element, "kind", ev.Kind)
			return nil
		}
		return fmt.Errorf("unknown element %q", ev.Element)
	}

	switch ev.Kind {
	case PointerDown:
		node, ok := c.Node(r.scale)
		if !ok {
			return nil
		}
		visual, err := r.d.Faces.VisualRect(node, r.script.Surface)
		if err != nil {
			return err
		}
		c.PointerDown(pe, visual)
	case DoubleClick:
		c.DoubleClick()
	case Key:
		if ev.Key != "" {
			c.Key(input.KeyEvent{Key: ev.Key, Modifiers: pe.Modifiers})
		}
		for _, ch := range ev.Text {
			c.Key(input.KeyEvent{Rune: ch, Modifiers: pe.Modifiers})
		}
	case Input:
		c.Input(ev.Text)
	case Blur:
		c.Blur()
	case Trigger:
		r.started(c, c.Trigger(ev.Preset))
	case Animation:
		ok, err := c.ApplyAnimation(ev.Preset)
		if err != nil {
			log.Warn("animation rejected", "element", ev.Element, "err", err)
			return nil
		}
		r.started(c, ok)
	case Style:
		if err := c.ApplyStyle(ev.Style); err != nil {
			log.Warn("style rejected", "element", ev.Element, "err", err)
		}
	case Teardown:
		c.Close()
		delete(r.ctrls, ev.Element)
	}
	return nil
}

func (r *replay) started(c *controller.Controller, ok bool) {
	if !ok {
		r.res.Rejected++
		return
	}
	pb := c.Playback()
	if pb == nil {
		return
	}
	r.res.Playbacks = append(r.res.Playbacks, PlaybackRecord{
		TrackID:   c.TrackID(),
		ElementID: c.ID(),
		Start:     pb.Started,
		Sequence:  pb.Sequence,
	})
}

func (r *replay) known(id string) bool {
	for _, o := range r.order {
		if o == id {
			return true
		}
	}
	return false
}

func pointerEvent(ev Event) (input.PointerEvent, error) {
	pe := input.PointerEvent{X: ev.X, Y: ev.Y}
	switch strings.ToLower(ev.Button) {
	case "", "left":
		pe.Button = input.ButtonLeft
	case "right":
		pe.Button = input.ButtonRight
	case "middle":
		pe.Button = input.ButtonMiddle
	default:
		return pe, fmt.Errorf("unknown button %q", ev.Button)
	}
	for _, m := range ev.Modifiers {
		switch strings.ToLower(m) {
		case "shift":
			pe.Modifiers |= input.ModShift
		case "ctrl", "control":
			pe.Modifiers |= input.ModCtrl
		case "alt", "option":
			pe.Modifiers |= input.ModAlt
		case "super", "cmd", "meta":
			pe.Modifiers |= input.ModSuper
		default:
			return pe, fmt.Errorf("unknown modifier %q", m)
		}
	}
	return pe, nil
}
