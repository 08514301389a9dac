package renderer

import (
	"sort"
	"time"

	"github.com/ivlev/overlaykit/internal/effects"
)

// Knot is one sampled value of an animated property.
type Knot struct {
	Time  float64 // seconds from playback start
	Value float64
}

// SampleTrack samples prop over the whole sequence at fps, plus every step
// boundary, so that linear interpolation between knots follows the eased
// curve closely.
func SampleTrack(seq effects.Sequence, prop effects.Property, fps int) []Knot {
	if fps <= 0 {
		fps = 30
	}
	end := seq.Duration()

	times := map[time.Duration]struct{}{0: {}, end: {}}
	for _, st := range seq.Steps {
		if st.Property != prop {
			continue
		}
		times[st.Start()] = struct{}{}
		times[st.End()] = struct{}{}
	}
	frame := time.Second / time.Duration(fps)
	for t := frame; t < end; t += frame {
		times[t] = struct{}{}
	}

	sorted := make([]time.Duration, 0, len(times))
	for t := range times {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	knots := make([]Knot, len(sorted))
	for i, t := range sorted {
		knots[i] = Knot{Time: t.Seconds(), Value: seq.Value(prop, t)}
	}
	return knots
}

// Interpolate returns the value at currentTime between knots.
func Interpolate(knots []Knot, currentTime float64) float64 {
	if len(knots) == 0 {
		return 0
	}

	// Before first knot, use first knot
	if currentTime <= knots[0].Time {
		return knots[0].Value
	}
	// After last knot, use last knot
	if currentTime >= knots[len(knots)-1].Time {
		return knots[len(knots)-1].Value
	}

	i := sort.Search(len(knots), func(i int) bool { return knots[i].Time > currentTime })
	prev, next := knots[i-1], knots[i]

	timeDelta := next.Time - prev.Time
	if timeDelta == 0 {
		return next.Value
	}
	return lerp(prev.Value, next.Value, (currentTime-prev.Time)/timeDelta)
}

// Constant reports whether every knot has the same value.
func Constant(knots []Knot) bool {
	if len(knots) == 0 {
		return true
	}
	for _, k := range knots[1:] {
		if k.Value != knots[0].Value {
			return false
		}
	}
	return true
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
