package effects

import (
	"fmt"
	"time"

	"github.com/rivo/uniseg"
)

// SplitMode selects what counts as one typewriter character.
type SplitMode int

const (
	// SplitRune yields one unit per Unicode code point.
	SplitRune SplitMode = iota
	// SplitGrapheme yields one unit per user-perceived character, so an
	// emoji with modifiers or a letter with combining marks reveals at once.
	SplitGrapheme
)

// ParseSplitMode maps "rune" or "grapheme" to a SplitMode. The empty string
// means SplitRune.
func ParseSplitMode(s string) (SplitMode, error) {
	switch s {
	case "", "rune":
		return SplitRune, nil
	case "grapheme":
		return SplitGrapheme, nil
	default:
		return SplitRune, fmt.Errorf("unknown split mode %q", s)
	}
}

func (m SplitMode) String() string {
	if m == SplitGrapheme {
		return "grapheme"
	}
	return "rune"
}

// RevealUnit is one character of a reveal sequence. Units are immutable;
// their opacity at any time is derived from Start and Duration.
type RevealUnit struct {
	Index    int
	Text     string
	Start    time.Duration
	Duration time.Duration
	Easing   string
}

// End returns when the unit is fully revealed.
func (u RevealUnit) End() time.Duration { return u.Start + u.Duration }

// OpacityAt returns the unit's opacity at t from the sequence start.
func (u RevealUnit) OpacityAt(t time.Duration) float64 {
	switch {
	case t <= u.Start:
		return 0
	case t >= u.End() || u.Duration == 0:
		return 1
	}
	ease := EasingByName(u.Easing)
	if ease == nil {
		ease = EaseLinear
	}
	return ease(float64(t-u.Start) / float64(u.Duration))
}

// Split partitions content into characters in left-to-right order.
// Whitespace and control characters are units like any other.
func Split(content string, mode SplitMode) []string {
	if mode == SplitGrapheme {
		var out []string
		g := uniseg.NewGraphemes(content)
		for g.Next() {
			out = append(out, g.Str())
		}
		return out
	}

	out := make([]string, 0, len(content))
	for _, r := range content {
		out = append(out, string(r))
	}
	return out
}

// Decompose builds one reveal unit per character of content. Unit i starts
// at i*Stagger.
func Decompose(content string, r Reveal, mode SplitMode) []RevealUnit {
	chars := Split(content, mode)
	stagger := seconds(r.Stagger)
	dur := seconds(r.Duration)

	units := make([]RevealUnit, len(chars))
	for i, c := range chars {
		units[i] = RevealUnit{
			Index:    i,
			Text:     c,
			Start:    time.Duration(i) * stagger,
			Duration: dur,
			Easing:   r.Easing,
		}
	}
	return units
}
