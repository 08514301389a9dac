// Package effects defines the entrance-animation presets as declarative
// keyframe data and builds playable sequences from them.
package effects

import (
	"errors"
	"math"
	"time"
)

// ErrUnknownPreset is returned for a preset name outside the preset set.
var ErrUnknownPreset = errors.New("unknown animation preset")

// Preset names. The set is closed.
const (
	FadeIn     = "fadeIn"
	SlideIn    = "slideIn"
	Bounce     = "bounce"
	Typewriter = "typewriter"
	Glow       = "glow"
)

var presetNames = []string{FadeIn, SlideIn, Bounce, Typewriter, Glow}

// Names returns the preset names in display order.
func Names() []string {
	return append([]string(nil), presetNames...)
}

// Known reports whether name is a preset.
func Known(name string) bool {
	for _, n := range presetNames {
		if n == name {
			return true
		}
	}
	return false
}

// Property is an animatable attribute.
type Property string

const (
	PropOpacity Property = "opacity"
	PropScale   Property = "scale"
	PropX       Property = "x" // offset from the element's position, logical units
	PropY       Property = "y"
	PropGlow    Property = "glow" // 0 = no text shadow, 1 = full triple white glow
)

func knownProperty(p Property) bool {
	switch p {
	case PropOpacity, PropScale, PropX, PropY, PropGlow:
		return true
	}
	return false
}

// Step animates one property from From to To. Offset and Duration are in
// seconds. A yoyo step plays forward, then back, doubling its length.
type Step struct {
	Property Property `yaml:"property"`
	From     float64  `yaml:"from"`
	To       float64  `yaml:"to"`
	Offset   float64  `yaml:"offset,omitempty"`
	Duration float64  `yaml:"duration"`
	Easing   string   `yaml:"easing,omitempty"`
	Yoyo     bool     `yaml:"yoyo,omitempty"`
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Start returns when the step begins relative to the sequence start.
func (s Step) Start() time.Duration { return seconds(s.Offset) }

// Length returns the step's playing time, including the reverse half of a
// yoyo.
func (s Step) Length() time.Duration {
	d := seconds(s.Duration)
	if s.Yoyo {
		d *= 2
	}
	return d
}

// End returns when the step finishes relative to the sequence start.
func (s Step) End() time.Duration { return s.Start() + s.Length() }

// ValueAt returns the property value at time t from the sequence start.
func (s Step) ValueAt(t time.Duration) float64 {
	start, length := s.Start(), s.Length()
	if t <= start {
		return s.From
	}
	if t >= start+length || length == 0 {
		if s.Yoyo {
			return s.From
		}
		return s.To
	}

	p := float64(t-start) / float64(seconds(s.Duration))
	if s.Yoyo && p > 1 {
		p = 2 - p
	}
	ease := EasingByName(s.Easing)
	if ease == nil {
		ease = EaseLinear
	}
	return s.From + (s.To-s.From)*ease(p)
}

// Reveal describes a per-unit reveal: each unit fades in over Duration
// seconds, unit i starting at i*Stagger seconds.
type Reveal struct {
	Duration float64 `yaml:"duration"`
	Stagger  float64 `yaml:"stagger"`
	Easing   string  `yaml:"easing,omitempty"`
}

// Definition is one preset as data.
type Definition struct {
	Name   string  `yaml:"name"`
	Steps  []Step  `yaml:"steps,omitempty"`
	Reveal *Reveal `yaml:"reveal,omitempty"`
}

// Sequence is a ready-to-play preset: element-level steps plus, for reveal
// presets, the ordered reveal units.
type Sequence struct {
	Preset string
	Steps  []Step
	Units  []RevealUnit
}

// Build turns a definition into a sequence for the given content.
func (d Definition) Build(content string, split SplitMode) Sequence {
	seq := Sequence{Preset: d.Name, Steps: append([]Step(nil), d.Steps...)}
	if d.Reveal != nil {
		seq.Units = Decompose(content, *d.Reveal, split)
	}
	return seq
}

// Duration is the time from sequence start until its last step or unit
// finishes.
func (s Sequence) Duration() time.Duration {
	var end time.Duration
	for _, st := range s.Steps {
		if e := st.End(); e > end {
			end = e
		}
	}
	for _, u := range s.Units {
		if e := u.End(); e > end {
			end = e
		}
	}
	return end
}

// Value returns the value of prop at t. Properties without a step keep
// their resting value.
func (s Sequence) Value(prop Property, t time.Duration) float64 {
	v, found := restingValue(prop), false
	for _, st := range s.Steps {
		if st.Property != prop {
			continue
		}
		// Later steps on the same property win once they have started.
		if !found || t >= st.Start() {
			v, found = st.ValueAt(t), true
		}
	}
	return v
}

func restingValue(p Property) float64 {
	switch p {
	case PropOpacity, PropScale:
		return 1
	default:
		return 0
	}
}
