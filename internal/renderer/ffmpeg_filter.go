package renderer

import (
	"fmt"
	"strings"

	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

// DrawTextOptions control GenerateDrawTextFilter.
type DrawTextOptions struct {
	Width, Height int     // output frame size in pixels
	Start         float64 // output time, in seconds, at which the playback starts
	FPS           int     // knot density of the piecewise expressions
	FontFile      string
	// TextWidth is the measured pixel width of the full content. When set,
	// reveal prefixes are drawn from a fixed left edge instead of being
	// re-centred as they grow.
	TextWidth float64
}

// GenerateDrawTextFilter creates an FFmpeg drawtext filter chain that plays
// seq for element e. Non-reveal presets become one drawtext with piecewise
// x, y and alpha expressions; reveal presets become one drawtext per prefix,
// each enabled until the next character starts.
func GenerateDrawTextFilter(e overlay.Element, seq effects.Sequence, canvas overlay.CanvasSize, opt DrawTextOptions) string {
	if !canvas.Valid() || opt.Width <= 0 || opt.Height <= 0 {
		return ""
	}
	sx := float64(opt.Width) / canvas.Width
	sy := float64(opt.Height) / canvas.Height
	left, top := geometry.LayoutPercent(e.Position(), canvas)
	anchorX := float64(opt.Width) * left / 100
	anchorY := float64(opt.Height) * top / 100

	xKnots := scaleKnots(SampleTrack(seq, effects.PropX, opt.FPS), sx)
	yKnots := scaleKnots(SampleTrack(seq, effects.PropY, opt.FPS), sy)
	aKnots := scaleKnots(SampleTrack(seq, effects.PropOpacity, opt.FPS), e.Opacity)

	xExpr := fmt.Sprintf("%.6f+(%s)-text_w/2", anchorX, buildPiecewiseExpression(xKnots, opt.Start))
	yExpr := fmt.Sprintf("%.6f+(%s)-text_h/2", anchorY, buildPiecewiseExpression(yKnots, opt.Start))
	alphaExpr := buildPiecewiseExpression(aKnots, opt.Start)

	if len(seq.Units) == 0 {
		return drawText(e, e.Content, xExpr, yExpr, alphaExpr, "", sy, opt)
	}

	if opt.TextWidth > 0 {
		xExpr = fmt.Sprintf("%.6f+(%s)", anchorX-opt.TextWidth/2, buildPiecewiseExpression(xKnots, opt.Start))
	}
	filters := make([]string, 0, len(seq.Units))
	var prefix strings.Builder
	for i, u := range seq.Units {
		prefix.WriteString(u.Text)
		from := opt.Start + u.Start.Seconds()
		enable := fmt.Sprintf("gte(t,%.6f)", from)
		if i+1 < len(seq.Units) {
			enable = fmt.Sprintf("between(t,%.6f,%.6f)", from, opt.Start+seq.Units[i+1].Start.Seconds())
		}
		filters = append(filters, drawText(e, prefix.String(), xExpr, yExpr, alphaExpr, enable, sy, opt))
	}
	return strings.Join(filters, ",")
}

func drawText(e overlay.Element, text, xExpr, yExpr, alphaExpr, enable string, sy float64, opt DrawTextOptions) string {
	fg, err := ParseColor(e.Style.Color)
	if err != nil {
		fg, _ = ParseColor(overlay.DefaultStyle().Color)
	}

	var b strings.Builder
	b.WriteString("drawtext=")
	if opt.FontFile != "" {
		fmt.Fprintf(&b, "fontfile='%s':", escapeDrawText(opt.FontFile))
	}
	fmt.Fprintf(&b, "text='%s':fontsize=%.2f:fontcolor=%s", escapeDrawText(text), e.Style.FontSize*sy, ffmpegColor(fg))
	if bg, err := ParseColor(e.Style.Background); err == nil && e.Style.Background != "" {
		fmt.Fprintf(&b, ":box=1:boxcolor=%s:boxborderw=%d", ffmpegColor(bg), int(e.Style.FontSize*sy*0.25))
	}
	fmt.Fprintf(&b, ":x='%s':y='%s':alpha='%s'", xExpr, yExpr, alphaExpr)
	if enable != "" {
		fmt.Fprintf(&b, ":enable='%s'", enable)
	}
	return b.String()
}

// buildPiecewiseExpression creates a piecewise-linear expression over the
// drawtext time variable t. Before start the first value holds, after the
// last knot the final value holds.
func buildPiecewiseExpression(knots []Knot, start float64) string {
	if len(knots) == 0 {
		return "0"
	}
	if len(knots) == 1 || Constant(knots) {
		return fmt.Sprintf("%.6f", knots[0].Value)
	}

	expr := fmt.Sprintf("if(lte(t,%.6f),%.6f,", start+knots[0].Time, knots[0].Value)
	for i := 0; i < len(knots)-1; i++ {
		t0, t1 := start+knots[i].Time, start+knots[i+1].Time
		v0, v1 := knots[i].Value, knots[i+1].Value
		if t1 > t0 {
			// if(lte(t,t1),v0+(t-t0)/(t1-t0)*(v1-v0),...)
			expr += fmt.Sprintf("if(lte(t,%.6f),%.6f+(t-%.6f)/%.6f*(%.6f),", t1, v0, t0, t1-t0, v1-v0)
		} else {
			expr += fmt.Sprintf("if(lte(t,%.6f),%.6f,", t1, v1)
		}
	}

	// Close all if statements and add final value
	expr += fmt.Sprintf("%.6f", knots[len(knots)-1].Value)
	expr += strings.Repeat(")", len(knots))
	return expr
}

func scaleKnots(knots []Knot, f float64) []Knot {
	out := make([]Knot, len(knots))
	for i, k := range knots {
		out[i] = Knot{Time: k.Time, Value: k.Value * f}
	}
	return out
}

// escapeDrawText escapes a value for use inside a quoted drawtext option.
func escapeDrawText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `'\''`, `:`, `\:`, `%`, `\%`)
	return r.Replace(s)
}
