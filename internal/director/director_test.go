package director

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/overlaykit/internal/effects"
	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/overlay"
)

func newScript(events ...Event) *Script {
	return &Script{
		Version:  "1.0",
		Canvas:   geometry.Size{Width: 1920, Height: 1080},
		Surface:  geometry.Rect{Width: 960, Height: 540},
		Elements: []overlay.Element{overlay.NewElement("", "title", "Hello")},
		Events:   events,
	}
}

func run(t *testing.T, s *Script) *Result {
	t.Helper()
	d := NewDirector(20)
	res, err := d.Run(s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Observers != 0 || res.Timers != 0 {
		t.Errorf("leaked %d observers and %d timers", res.Observers, res.Timers)
	}
	return res
}

func title(t *testing.T, res *Result) overlay.Element {
	t.Helper()
	e, ok := res.Store.Get(DefaultTrack, "title")
	if !ok {
		t.Fatal("title missing from store")
	}
	return e
}

func TestReplayDrag(t *testing.T) {
	res := run(t, newScript(
		Event{Time: 0.1, Kind: PointerDown, Element: "title", X: 480, Y: 270},
		Event{Time: 0.2, Kind: PointerMove, X: 960, Y: 0},
		Event{Time: 0.3, Kind: PointerUp, X: 960, Y: 0},
		Event{Time: 0.4, Kind: PointerMove, X: 0, Y: 0},
	))

	e := title(t, res)
	if math.Abs(e.X-960) > 1e-6 || math.Abs(e.Y+540) > 1e-6 {
		t.Errorf("position = (%v, %v), want (960, -540)", e.X, e.Y)
	}
	if n := len(res.Store.Updates()); n != 1 {
		t.Errorf("got %d store writes, want 1", n)
	}

	// 1.4s at 20 fps, both ends included.
	if len(res.Snapshots) != 29 {
		t.Errorf("got %d snapshots, want 29", len(res.Snapshots))
	}
	if !res.Snapshots[5].Items[0].State.Dragging {
		t.Error("snapshot at 0.25s not dragging")
	}
}

func TestReplayEdit(t *testing.T) {
	res := run(t, newScript(
		Event{Time: 0.1, Kind: DoubleClick, Element: "title"},
		Event{Time: 0.2, Kind: Key, Element: "title", Text: "Hi"},
		Event{Time: 0.3, Kind: PointerDown, Element: "title", X: 480, Y: 270},
		Event{Time: 0.35, Kind: PointerMove, X: 0, Y: 0},
		Event{Time: 0.4, Kind: Key, Element: "title", Key: "Enter", Modifiers: []string{"shift"}},
		Event{Time: 0.45, Kind: Key, Element: "title", Text: "!"},
		Event{Time: 0.5, Kind: Blur, Element: "title"},
	))

	e := title(t, res)
	if e.Content != "Hi\n!" || e.X != 0 || e.Y != 0 {
		t.Errorf("element = %+v", e)
	}
	want := []overlay.Update{{TrackID: DefaultTrack, ElementID: "title", Patch: overlay.ContentPatch("Hi\n!")}}
	if diff := cmp.Diff(want, res.Store.Updates()); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}

	st := res.Snapshots[5].Items[0].State // 0.25s
	if !st.Editing || st.Draft != "Hi" {
		t.Errorf("state at 0.25s = %+v", st)
	}
}

func TestReplayTypewriterBusyGuard(t *testing.T) {
	res := run(t, newScript(
		Event{Time: 0, Kind: Trigger, Element: "title", Preset: effects.Typewriter},
		Event{Time: 0.1, Kind: Trigger, Element: "title", Preset: effects.FadeIn},
		Event{Time: 0.3, Kind: Trigger, Element: "title", Preset: effects.Glow},
	))

	if res.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", res.Rejected)
	}
	var presets []string
	for _, pb := range res.Playbacks {
		presets = append(presets, pb.Sequence.Preset)
	}
	if diff := cmp.Diff([]string{effects.Typewriter, effects.Glow}, presets); diff != "" {
		t.Errorf("playbacks mismatch (-want +got):\n%s", diff)
	}
	if res.Playbacks[1].Start != 300*time.Millisecond {
		t.Errorf("glow started at %v, want 300ms", res.Playbacks[1].Start)
	}

	units := res.Snapshots[2].Items[0].State.Frame.Units // 0.1s
	got := make([]float64, len(units))
	for i, u := range units {
		got[i] = u.Opacity
	}
	if diff := cmp.Diff([]float64{1, 1, 0, 0, 0}, got); diff != "" {
		t.Errorf("unit opacity at 0.1s (-want +got):\n%s", diff)
	}
	if res.Snapshots[5].Items[0].State.Frame.Animating() {
		t.Error("typewriter still running at 0.25s")
	}
}

func TestReplayStyle(t *testing.T) {
	res := run(t, newScript(
		Event{Time: 0, Kind: Style, Element: "title", Style: map[string]any{"color": "#ff0000", "fontSize": "huge"}},
		Event{Time: 0.1, Kind: Style, Element: "title", Style: map[string]any{"color": 7}},
		Event{Time: 0.2, Kind: Animation, Element: "title", Preset: effects.Bounce},
	))

	e := title(t, res)
	if e.Style.Color != "#ff0000" || e.Style.FontSize != overlay.DefaultStyle().FontSize {
		t.Errorf("style = %+v", e.Style)
	}
	if e.Animation != effects.Bounce || len(res.Playbacks) != 1 {
		t.Errorf("animation = %q, playbacks = %d", e.Animation, len(res.Playbacks))
	}
}

func TestReplayTeardownMidDrag(t *testing.T) {
	res := run(t, newScript(
		Event{Time: 0.1, Kind: PointerDown, Element: "title", X: 480, Y: 270},
		Event{Time: 0.1, Kind: Trigger, Element: "title", Preset: effects.Typewriter},
		Event{Time: 0.15, Kind: Teardown, Element: "title"},
		Event{Time: 0.2, Kind: PointerMove, X: 900, Y: 500},
		Event{Time: 0.25, Kind: DoubleClick, Element: "title"},
	))

	if n := len(res.Store.Updates()); n != 0 {
		t.Errorf("store written %d times after teardown", n)
	}
	last := res.Snapshots[len(res.Snapshots)-1]
	if len(last.Items) != 0 {
		t.Errorf("torn-down element still rendered: %+v", last.Items)
	}
}

func TestReplayErrors(t *testing.T) {
	d := NewDirector(20)

	_, err := d.Run(newScript(Event{Time: 0, Kind: "wiggle", Element: "title"}))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v, want ErrUnknownEvent", err)
	}
	if _, err := d.Run(newScript(Event{Time: 0, Kind: Blur, Element: "ghost"})); err == nil {
		t.Error("expected error for unknown element")
	}
	if _, err := d.Run(newScript(Event{Time: 0, Kind: PointerMove, Button: "fourth"})); err == nil {
		t.Error("expected error for unknown button")
	}

	bad := newScript()
	bad.Surface = geometry.Rect{}
	if _, err := d.Run(bad); err == nil {
		t.Error("expected error for empty surface")
	}
	dup := newScript()
	dup.Elements = append(dup.Elements, dup.Elements[0])
	if _, err := d.Run(dup); err == nil {
		t.Error("expected error for duplicate ids")
	}
}

func TestExplicitDurationDropsLateEvents(t *testing.T) {
	s := newScript(Event{Time: 5, Kind: Blur, Element: "title"})
	s.Duration = 0.5
	res := run(t, s)
	if len(res.Snapshots) != 11 {
		t.Errorf("got %d snapshots, want 11", len(res.Snapshots))
	}
}

func TestScriptWriteRead(t *testing.T) {
	script := newScript(
		Event{Time: 0.5, Kind: PointerDown, Element: "title", X: 10, Y: 20, Modifiers: []string{"shift"}},
		Event{Time: 1, Kind: Style, Element: "title", Style: map[string]any{"color": "red"}},
	)

	// Write
	path := filepath.Join(t.TempDir(), "script.yaml")
	if err := WriteScript(script, path); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}

	// Read
	read, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if diff := cmp.Diff(script, read); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFrames(t *testing.T) {
	res := run(t, newScript(Event{Time: 0, Kind: Trigger, Element: "title", Preset: effects.FadeIn}))

	frames, err := RenderFrames(context.Background(), res, RenderOptions{Width: 192, Height: 108, Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != len(res.Snapshots) {
		t.Fatalf("got %d frames for %d snapshots", len(frames), len(res.Snapshots))
	}
	for i, f := range frames {
		if f.Bounds().Dx() != 192 || f.Bounds().Dy() != 108 {
			t.Fatalf("frame %d is %v", i, f.Bounds())
		}
	}
	// fadeIn starts fully transparent.
	for _, p := range frames[0].Pix {
		if p != 0 {
			t.Fatal("first fadeIn frame has visible pixels")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderFrames(ctx, res, RenderOptions{Width: 192, Height: 108}); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestDrawTextFilter(t *testing.T) {
	s := newScript(Event{Time: 0.5, Kind: Trigger, Element: "title", Preset: effects.Typewriter})
	s.Elements = append(s.Elements, overlay.NewElement("", "static", "Fixed"))
	d := NewDirector(20)
	res, err := d.Run(s)
	if err != nil {
		t.Fatal(err)
	}

	filter, err := d.DrawTextFilter(res, 1280, 720, "")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(filter, "drawtext="); n != 6 {
		t.Errorf("got %d drawtext filters, want 5 prefixes + 1 static:\n%s", n, filter)
	}
	if !strings.Contains(filter, "text='Fixed'") || !strings.Contains(filter, "enable='between(t,0.500000,0.550000)'") {
		t.Errorf("unexpected filter:\n%s", filter)
	}
}
