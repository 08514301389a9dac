package renderer

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/engine"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

var canvas = overlay.CanvasSize{Width: 1920, Height: 1080}

func element(content string) overlay.Element {
	e := overlay.NewElement("t1", "e1", content)
	e.Style = overlay.DefaultStyle()
	return e
}

func TestProjectRestLayoutMatchesFormula(t *testing.T) {
	positions := []geometry.Point{{X: 0, Y: 0}, {X: 960, Y: -540}, {X: -333.3, Y: 17.25}, {X: 12.5, Y: 539}}
	for _, p := range positions {
		e := element("Hello")
		e.X, e.Y, e.Rotation = p.X, p.Y, 15

		got := Project(e, canvas, 0.5, RestState()).Placement
		want := geometry.NewPlacement(p, canvas, 0.5, 15)
		if got != want {
			t.Errorf("position %v: placement %+v, want %+v", p, got, want)
		}
	}
}

func TestProjectCornerPercentages(t *testing.T) {
	e := element("Hello")
	e.X, e.Y = 960, -540
	n := Project(e, canvas, 0.5, RestState())
	if n.Placement.LeftPct != 100 || n.Placement.TopPct != 0 {
		t.Errorf("got left %v top %v, want 100 0", n.Placement.LeftPct, n.Placement.TopPct)
	}
	if !strings.Contains(n.CSS(), "left:100%;top:0%;") {
		t.Errorf("css %q lacks corner position", n.CSS())
	}
}

func TestProjectEditingShowsDraft(t *testing.T) {
	e := element("Hello")
	n := Project(e, canvas, 1, State{Editing: true, Draft: "Hi\nthere", Frame: engine.Rest()})
	if n.Text != "Hi\nthere" || !n.Editing || n.Cursor != "text" {
		t.Errorf("editing node = %+v", n)
	}

	n = Project(e, canvas, 1, State{Dragging: true, Frame: engine.Rest()})
	if n.Cursor != "grabbing" || n.Text != "Hello" {
		t.Errorf("dragging node = %+v", n)
	}
}

func TestProjectAppliesFrame(t *testing.T) {
	e := element("Hello")
	e.Opacity = 0.8
	f := engine.Frame{Preset: effects.SlideIn, Opacity: 0.5, Scale: 2, OffsetX: -96}
	n := Project(e, canvas, 0.5, State{Frame: f})

	want := geometry.NewPlacement(geometry.Point{X: -96}, canvas, 1, 0)
	if n.Placement != want {
		t.Errorf("placement %+v, want %+v", n.Placement, want)
	}
	if n.Opacity != 0.4 {
		t.Errorf("opacity %v, want 0.4", n.Opacity)
	}
}

func TestProjectRevealUnits(t *testing.T) {
	seq := effects.Sequence{Preset: effects.Typewriter, Units: effects.Decompose("abc", effects.Reveal{Duration: 0.05, Stagger: 0.05}, effects.SplitRune)}
	n := Project(element("abc"), canvas, 1, State{Frame: engine.SampleAt(seq, 75*time.Millisecond)})

	got := make([]float64, len(n.Units))
	for i, u := range n.Units {
		got[i] = u.Opacity
	}
	if diff := cmp.Diff([]float64{1, 0.5, 0}, got); diff != "" {
		t.Errorf("unit opacity mismatch (-want +got):\n%s", diff)
	}
	if n.VisibleText() != "abc" {
		t.Errorf("visible text %q", n.VisibleText())
	}

	// Editing hides the reveal.
	n = Project(element("abc"), canvas, 1, State{Editing: true, Draft: "x", Frame: engine.SampleAt(seq, 0)})
	if len(n.Units) != 0 || n.VisibleText() != "x" {
		t.Errorf("editing node shows units: %+v", n)
	}
}

func TestTextShadow(t *testing.T) {
	if got := TextShadow(0); got != "none" {
		t.Errorf("TextShadow(0) = %q", got)
	}
	full := TextShadow(1)
	if strings.Count(full, "rgba(255,255,255,1.000)") != 3 {
		t.Errorf("TextShadow(1) = %q, want triple white glow", full)
	}
	if TextShadow(3) != full {
		t.Error("glow above 1 not clamped")
	}
}

func TestInterpolate(t *testing.T) {
	knots := []Knot{{0, 0}, {1, 10}, {3, 30}}
	tests := []struct {
		time, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 5},
		{2, 20},
		{3, 30},
		{9, 30},
	}
	for _, tt := range tests {
		if got := Interpolate(knots, tt.time); abs(got-tt.want) > 1e-9 {
			t.Errorf("Interpolate(%v) = %v, want %v", tt.time, got, tt.want)
		}
	}
	if Interpolate(nil, 1) != 0 {
		t.Error("empty knots should interpolate to 0")
	}
}

func TestSampleTrackFollowsSequence(t *testing.T) {
	def, _ := effects.Default().Lookup(effects.SlideIn)
	seq := def.Build("Hi", effects.SplitRune)
	knots := SampleTrack(seq, effects.PropX, 30)

	if knots[0].Time != 0 || knots[0].Value != -100 {
		t.Errorf("first knot %+v", knots[0])
	}
	last := knots[len(knots)-1]
	if last.Time != 0.5 || last.Value != 0 {
		t.Errorf("last knot %+v", last)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i].Time <= knots[i-1].Time {
			t.Fatalf("knots not increasing at %d: %+v", i, knots)
		}
	}
	mid := Interpolate(knots, 0.25)
	exact := seq.Value(effects.PropX, 250*time.Millisecond)
	if abs(mid-exact) > 1 {
		t.Errorf("interpolated %v far from exact %v", mid, exact)
	}
}

func TestGenerateDrawTextFilter(t *testing.T) {
	def, _ := effects.Default().Lookup(effects.FadeIn)
	e := element("It's 50%: done")
	filter := GenerateDrawTextFilter(e, def.Build(e.Content, effects.SplitRune), canvas, DrawTextOptions{Width: 1280, Height: 720, Start: 1, FPS: 10})

	for _, want := range []string{"drawtext=", `text='It'\''s 50\%\: done'`, "alpha='if(lte(t,1.000000)", "fontcolor=0xFFFFFF@1.000", "x='640.000000+(0.000000)-text_w/2'"} {
		if !strings.Contains(filter, want) {
			t.Errorf("filter lacks %q:\n%s", want, filter)
		}
	}
	if strings.Count(filter, "(") != strings.Count(filter, ")") {
		t.Errorf("unbalanced parentheses:\n%s", filter)
	}
}

func TestGenerateDrawTextFilterTypewriter(t *testing.T) {
	def, _ := effects.Default().Lookup(effects.Typewriter)
	e := element("Hey")
	filter := GenerateDrawTextFilter(e, def.Build(e.Content, effects.SplitRune), canvas, DrawTextOptions{Width: 1920, Height: 1080, TextWidth: 90})

	parts := strings.Split(filter, ",drawtext=")
	if len(parts) != 3 {
		t.Fatalf("got %d drawtext filters, want 3:\n%s", len(parts), filter)
	}
	for i, want := range []string{"text='H'", "text='He'", "text='Hey'"} {
		if !strings.Contains(parts[i], want) {
			t.Errorf("filter %d lacks %q: %s", i, want, parts[i])
		}
	}
	if !strings.Contains(parts[0], "enable='between(t,0.000000,0.050000)'") {
		t.Errorf("first prefix not bounded: %s", parts[0])
	}
	if !strings.Contains(parts[2], "enable='gte(t,0.100000)'") {
		t.Errorf("last prefix not open-ended: %s", parts[2])
	}
	if !strings.Contains(parts[0], "x='915.000000+") {
		t.Errorf("reveal not drawn from fixed left edge: %s", parts[0])
	}
}

func TestGenerateDrawTextFilterInvalidCanvas(t *testing.T) {
	def, _ := effects.Default().Lookup(effects.FadeIn)
	if got := GenerateDrawTextFilter(element("x"), def.Build("x", effects.SplitRune), overlay.CanvasSize{}, DrawTextOptions{Width: 10, Height: 10}); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		a       uint8
	}{
		{"#fff", 255, 255, 255, 255},
		{"#FF000080", 255, 0, 0, 128},
		{"#0a0b0c", 10, 11, 12, 255},
		{"rgb(1, 2, 3)", 1, 2, 3, 255},
		{"rgba(0,0,0,0.5)", 0, 0, 0, 128},
		{"red", 255, 0, 0, 255},
		{"transparent", 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != tt.a {
				t.Errorf("ParseColor(%q) = %v", tt.in, c)
			}
		})
	}
	for _, bad := range []string{"", "#12", "rgb(1,2)", "nocolor", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestRasterize(t *testing.T) {
	faces := NewFaces()
	defer faces.Close()

	surface := geometry.Rect{Width: 320, Height: 180}
	small := overlay.CanvasSize{Width: 320, Height: 180}
	e := element("HELLO")
	e.Style.FontSize = 32

	dst := image.NewRGBA(image.Rect(0, 0, 320, 180))
	if err := faces.Rasterize(dst, surface, Project(e, small, 1, RestState())); err != nil {
		t.Fatal(err)
	}
	if !painted(dst, image.Rect(100, 60, 220, 120)) {
		t.Error("no text pixels around the canvas centre")
	}
	if painted(dst, image.Rect(0, 0, 40, 40)) {
		t.Error("text pixels in the corner")
	}

	e.Opacity = 0
	blank := image.NewRGBA(image.Rect(0, 0, 320, 180))
	if err := faces.Rasterize(blank, surface, Project(e, small, 1, RestState())); err != nil {
		t.Fatal(err)
	}
	if painted(blank, blank.Bounds()) {
		t.Error("transparent element drew pixels")
	}
}

func TestVisualRectScales(t *testing.T) {
	faces := NewFaces()
	defer faces.Close()

	n := Project(element("Hello"), canvas, 1, RestState())
	full, err := faces.VisualRect(n, geometry.Rect{Width: 1920, Height: 1080})
	if err != nil {
		t.Fatal(err)
	}
	n = Project(element("Hello"), canvas, 0.5, RestState())
	half, err := faces.VisualRect(n, geometry.Rect{Width: 960, Height: 540})
	if err != nil {
		t.Fatal(err)
	}
	if abs(half.Width*2-full.Width) > 1e-9 {
		t.Errorf("half width %v, full width %v", half.Width, full.Width)
	}
	if c := half.Center(); abs(c.X-480) > 1e-9 || abs(c.Y-270) > 1e-9 {
		t.Errorf("half-scale rect centre %v", c)
	}
}

func painted(img *image.RGBA, r image.Rectangle) bool {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				return true
			}
		}
	}
	return false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
