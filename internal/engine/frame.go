package engine

import (
	"time"

	"github.com/ivlev/overlaykit/internal/effects"
)

// UnitState is a reveal unit as drawn at one instant.
type UnitState struct {
	Text    string
	Opacity float64
}

// Frame is the animated state of an element at one instant. The zero
// playback state is Rest().
type Frame struct {
	Preset  string
	Elapsed time.Duration
	Opacity float64 // multiplies the element's own opacity
	Scale   float64 // multiplies the render scale ratio
	OffsetX float64 // logical units added to the element position
	OffsetY float64
	Glow    float64 // 0..1 text-shadow strength

	// Units replace the element's text while a reveal preset plays.
	Units []UnitState
}

// Rest is the frame of an element that is not animating.
func Rest() Frame {
	return Frame{Opacity: 1, Scale: 1}
}

// Animating reports whether the frame comes from a playback.
func (f Frame) Animating() bool {
	return f.Preset != ""
}

// SampleAt evaluates a sequence at elapsed time t.
func SampleAt(seq effects.Sequence, t time.Duration) Frame {
	f := Frame{
		Preset:  seq.Preset,
		Elapsed: t,
		Opacity: seq.Value(effects.PropOpacity, t),
		Scale:   seq.Value(effects.PropScale, t),
		OffsetX: seq.Value(effects.PropX, t),
		OffsetY: seq.Value(effects.PropY, t),
		Glow:    seq.Value(effects.PropGlow, t),
	}
	if len(seq.Units) > 0 {
		f.Units = make([]UnitState, len(seq.Units))
		for i, u := range seq.Units {
			f.Units[i] = UnitState{Text: u.Text, Opacity: u.OpacityAt(t)}
		}
	}
	return f
}

// Sample returns the element's animated state at the scheduler's current
// time.
func (e *Engine) Sample() Frame {
	pb := e.playback
	if pb == nil {
		return Rest()
	}
	return SampleAt(pb.Sequence, pb.Elapsed(e.sched.Now()))
}
