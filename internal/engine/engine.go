// Package engine plays entrance-animation sequences for one overlay element,
// one playback at a time.
package engine

import (
	"time"

	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/log"
	"github.com/ivlev/overlaykit/internal/loop"
)

// Playback is a running sequence.
type Playback struct {
	Sequence effects.Sequence
	Started  time.Duration
}

// Elapsed returns the playback time at scheduler time now.
func (p *Playback) Elapsed(now time.Duration) time.Duration {
	return now - p.Started
}

// Engine sequences animation playback for a single element. The running
// playback doubles as the busy-guard: while it is set, Trigger is a no-op.
//
// Engine is not safe for concurrent use; drive it from the element's loop.
type Engine struct {
	sched   loop.Scheduler
	catalog *effects.Catalog
	split   effects.SplitMode

	playback  *Playback
	timers    []loop.Timer
	remaining int
	closed    bool

	onStart    func(*Playback)
	onComplete func(preset string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithSplitMode sets how reveal presets split content into units.
func WithSplitMode(m effects.SplitMode) Option {
	return func(e *Engine) { e.split = m }
}

// OnStart registers a callback run when a playback starts.
func OnStart(fn func(*Playback)) Option {
	return func(e *Engine) { e.onStart = fn }
}

// OnComplete registers a callback run when a playback finishes every step.
func OnComplete(fn func(preset string)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// New returns an engine using sched for timing and catalog for preset
// definitions. A nil catalog means the built-in presets.
func New(sched loop.Scheduler, catalog *effects.Catalog, opts ...Option) *Engine {
	if catalog == nil {
		catalog = effects.Default()
	}
	e := &Engine{sched: sched, catalog: catalog}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Trigger starts the named preset over content and reports whether it
// started. While another playback is running the call is silently ignored:
// it neither queues nor replaces the running one. Unknown presets are
// ignored too.
func (e *Engine) Trigger(name, content string) bool {
	if e.closed || e.playback != nil {
		return false
	}
	def, ok := e.catalog.Lookup(name)
	if !ok {
		log.Debug("ignoring unknown preset", "preset", name)
		return false
	}

	pb := &Playback{Sequence: def.Build(content, e.split), Started: e.sched.Now()}
	e.playback = pb
	e.schedule(pb)

	if e.onStart != nil {
		e.onStart(pb)
	}
	return true
}

// schedule arms one timer per step and per reveal unit. The guard clears
// only when the last of them has fired.
func (e *Engine) schedule(pb *Playback) {
	var ends []time.Duration
	for _, s := range pb.Sequence.Steps {
		ends = append(ends, s.End())
	}
	for _, u := range pb.Sequence.Units {
		ends = append(ends, u.End())
	}
	if len(ends) == 0 {
		// Nothing to animate (e.g. an empty reveal); finish on the next turn.
		ends = append(ends, 0)
	}

	e.remaining = len(ends)
	e.timers = e.timers[:0]
	for _, end := range ends {
		e.timers = append(e.timers, e.sched.AfterFunc(end, func() { e.stepDone(pb) }))
	}
}

func (e *Engine) stepDone(pb *Playback) {
	if e.playback != pb {
		return
	}
	e.remaining--
	if e.remaining > 0 {
		return
	}
	e.playback = nil
	e.timers = e.timers[:0]
	if e.onComplete != nil {
		e.onComplete(pb.Sequence.Preset)
	}
}

// Running reports whether a playback is in progress.
func (e *Engine) Running() bool {
	return e.playback != nil
}

// Playback returns the running playback, or nil.
func (e *Engine) Playback() *Playback {
	return e.playback
}

// Pending returns the number of sub-steps still to finish.
func (e *Engine) Pending() int {
	if e.playback == nil {
		return 0
	}
	return e.remaining
}

// Close releases every timer the engine holds and abandons the running
// playback without firing its completion. Later triggers are ignored.
func (e *Engine) Close() {
	for _, t := range e.timers {
		t.Stop()
	}
	e.timers = nil
	e.playback = nil
	e.remaining = 0
	e.closed = true
}
