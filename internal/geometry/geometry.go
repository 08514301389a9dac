// Package geometry maps between the preview surface's on-screen pixel space
// and an overlay's logical canvas space.
//
// Logical canvas space is centred on (0,0) and spans
// [-W/2, W/2] x [-H/2, H/2] regardless of how large the preview is drawn.
package geometry

import "math"

// Point is a 2D position or vector.
type Point struct {
	X float64 `yaml:"x" toml:"x"`
	Y float64 `yaml:"y" toml:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair in logical units.
type Size struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect is an on-screen rectangle in pixels.
type Rect struct {
	Left   float64 `yaml:"left" toml:"left"`
	Top    float64 `yaml:"top" toml:"top"`
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Center returns the centre of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Empty reports whether the rectangle has no area. An unmounted surface
// reports a zero rectangle.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

// GrabOffset is the vector from an element's visual centre to the pointer.
// Subtracting it on every move keeps the element from jumping under the cursor.
func GrabOffset(pointer Point, visual Rect) Point {
	return pointer.Sub(visual.Center())
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampToCanvas restricts p to the canvas bounds.
func ClampToCanvas(p Point, canvas Size) Point {
	hw, hh := canvas.Width/2, canvas.Height/2
	return Point{
		X: Clamp(p.X, -hw, hw),
		Y: Clamp(p.Y, -hh, hh),
	}
}

// ToLogical converts a pointer position into clamped logical coordinates.
//
// It returns ok=false when the surface is unavailable (nil or zero-sized) or
// the canvas is degenerate; callers must skip the update in that case.
func ToLogical(pointer Point, surface *Rect, grab Point, canvas Size) (Point, bool) {
	if surface == nil || surface.Empty() || !canvas.Valid() {
		return Point{}, false
	}

	raw := Point{
		X: ((pointer.X-grab.X-surface.Left)/surface.Width - 0.5) * canvas.Width,
		Y: ((pointer.Y-grab.Y-surface.Top)/surface.Height - 0.5) * canvas.Height,
	}
	p := ClampToCanvas(raw, canvas)
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return Point{}, false
	}
	return p, true
}

// FromLogical maps a logical position back to the on-screen point it is
// drawn at. It is the inverse of ToLogical for unclamped positions and a
// zero grab offset.
func FromLogical(pos Point, surface Rect, canvas Size) Point {
	left, top := LayoutPercent(pos, canvas)
	return Point{
		X: surface.Left + left/100*surface.Width,
		Y: surface.Top + top/100*surface.Height,
	}
}

// LayoutPercent expresses a logical position as percentage offsets from the
// surface's top-left corner.
func LayoutPercent(pos Point, canvas Size) (left, top float64) {
	left = 50 + (pos.X/canvas.Width)*100
	top = 50 + (pos.Y/canvas.Height)*100
	return left, top
}

// Placement is the on-screen transform of an overlay: anchored by its centre
// at (LeftPct, TopPct) of the surface, then scaled and rotated about that
// centre.
type Placement struct {
	LeftPct  float64
	TopPct   float64
	Scale    float64
	Rotation float64 // degrees, clockwise
}

// NewPlacement builds the placement for a logical position.
func NewPlacement(pos Point, canvas Size, scaleRatio, rotation float64) Placement {
	left, top := LayoutPercent(pos, canvas)
	return Placement{LeftPct: left, TopPct: top, Scale: scaleRatio, Rotation: rotation}
}

// Anchor returns the on-screen centre of the placement within surface.
func (p Placement) Anchor(surface Rect) Point {
	return Point{
		X: surface.Left + p.LeftPct/100*surface.Width,
		Y: surface.Top + p.TopPct/100*surface.Height,
	}
}

// ScreenRect returns the unrotated on-screen rectangle of a node whose
// natural (unscaled) size is natural.
func (p Placement) ScreenRect(surface Rect, natural Size) Rect {
	c := p.Anchor(surface)
	w, h := natural.Width*p.Scale, natural.Height*p.Scale
	return Rect{Left: c.X - w/2, Top: c.Y - h/2, Width: w, Height: h}
}

// Bounds returns the axis-aligned bounding box of the rotated node.
func (p Placement) Bounds(surface Rect, natural Size) Rect {
	r := p.ScreenRect(surface, natural)
	if p.Rotation == 0 {
		return r
	}
	rad := p.Rotation * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	w := r.Width*cos + r.Height*sin
	h := r.Width*sin + r.Height*cos
	c := r.Center()
	return Rect{Left: c.X - w/2, Top: c.Y - h/2, Width: w, Height: h}
}
