package renderer

import (
	"image"
	"image/color"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

// Rasterize draws n onto dst. surface is the preview surface in dst pixel
// coordinates; the node is placed, scaled and rotated relative to it the
// same way the CSS projection places it.
func (f *Faces) Rasterize(dst *image.RGBA, surface geometry.Rect, n Node) error {
	if n.Opacity <= 0 || n.Placement.Scale <= 0 {
		return nil
	}
	face, err := f.Face(n.Style, n.Style.FontSize)
	if err != nil {
		return err
	}
	text := n.VisibleText()
	pad := padding(n.Style)
	size := Measure(face, text, pad)
	w, h := int(math.Ceil(size.Width)), int(math.Ceil(size.Height))
	if w == 0 || h == 0 {
		return nil
	}

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	if n.Style.Background != "" {
		if bg, err := ParseColor(n.Style.Background); err == nil {
			xdraw.Draw(src, src.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
		}
	}
	fg, err := ParseColor(n.Style.Color)
	if err != nil {
		fg, _ = ParseColor(overlay.DefaultStyle().Color)
	}

	if n.Glow > 0 {
		halo := withAlpha(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, math.Min(n.Glow, 1)*0.35)
		for _, d := range []image.Point{image.Pt(-2, 0), image.Pt(2, 0), image.Pt(0, -2), image.Pt(0, 2), image.Pt(-1, -1), image.Pt(1, 1), image.Pt(-1, 1), image.Pt(1, -1)} {
			drawLines(src, face, n, pad, float64(w), d, func(float64) color.NRGBA { return halo })
		}
	}
	drawLines(src, face, n, pad, float64(w), image.Point{}, func(a float64) color.NRGBA { return withAlpha(fg, a) })

	anchor := n.Placement.Anchor(surface)
	rad := n.Placement.Rotation * math.Pi / 180
	s := n.Placement.Scale
	a, b := s*math.Cos(rad), -s*math.Sin(rad)
	d, e := s*math.Sin(rad), s*math.Cos(rad)
	cw, ch := float64(w)/2, float64(h)/2
	m := f64.Aff3{
		a, b, anchor.X - a*cw - b*ch,
		d, e, anchor.Y - d*cw - e*ch,
	}

	var opts *xdraw.Options
	if n.Opacity < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(n.Opacity*255 + 0.5)})}
	}
	xdraw.BiLinear.Transform(dst, m, src, src.Bounds(), xdraw.Over, opts)
	return nil
}

// drawLines sets the node's text into dst, one line per "\n", aligned by the
// style's text-align. paint maps a character's own opacity to its colour.
func drawLines(dst *image.RGBA, face font.Face, n Node, pad, width float64, shift image.Point, paint func(float64) color.NRGBA) {
	type glyph struct {
		text  string
		alpha float64
	}
	var lines [][]glyph
	cur := []glyph{}
	emit := func(text string, alpha float64) {
		parts := strings.Split(text, "\n")
		for i, p := range parts {
			if i > 0 {
				lines = append(lines, cur)
				cur = []glyph{}
			}
			if p != "" {
				cur = append(cur, glyph{p, alpha})
			}
		}
	}
	if len(n.Units) > 0 {
		for _, u := range n.Units {
			emit(u.Text, u.Opacity)
		}
	} else {
		emit(n.Text, 1)
	}
	lines = append(lines, cur)

	metrics := face.Metrics()
	lh := lineHeight(face)
	underline := strings.Contains(n.Style.TextDecoration, "underline")

	for li, line := range lines {
		var lw fixed.Int26_6
		for _, g := range line {
			lw += font.MeasureString(face, g.text)
		}
		x := pad
		switch n.Style.TextAlign {
		case "left", "start":
		case "right", "end":
			x = width - pad - float64(lw)/64
		default:
			x = (width - float64(lw)/64) / 2
		}
		baseline := pad + float64(li)*lh + float64(metrics.Ascent)/64

		dr := font.Drawer{
			Dst:  dst,
			Face: face,
			Dot:  fixed.P(int(x)+shift.X, int(baseline)+shift.Y),
		}
		for _, g := range line {
			if g.alpha <= 0 {
				dr.Dot.X += font.MeasureString(face, g.text)
				continue
			}
			dr.Src = image.NewUniform(paint(g.alpha))
			dr.DrawString(g.text)
		}
		if underline && lw > 0 {
			y := int(baseline) + shift.Y + 2
			thick := max(1, int(lh/18))
			r := image.Rect(int(x)+shift.X, y, int(x)+shift.X+lw.Ceil(), y+thick)
			xdraw.Draw(dst, r, image.NewUniform(paint(1)), image.Point{}, xdraw.Over)
		}
	}
}
