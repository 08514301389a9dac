package drag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ivlev/overlaykit/internal/geometry"
	"github.com/ivlev/overlaykit/internal/input"
)

type recorder struct {
	calls []geometry.Point
}

func (r *recorder) position(x, y float64) {
	r.calls = append(r.calls, geometry.Point{X: x, Y: y})
}

func halfScaleSurface() (geometry.Rect, bool) {
	return geometry.Rect{Left: 0, Top: 0, Width: 960, Height: 540}, true
}

func newController(t *testing.T, surface SurfaceFunc) (*Controller, *input.Scope, *recorder) {
	t.Helper()
	scope := input.NewScope()
	rec := &recorder{}
	c := New(scope, surface, rec.position)
	c.SetCanvas(geometry.Size{Width: 1920, Height: 1080})
	return c, scope, rec
}

func TestDragClampsToCanvas(t *testing.T) {
	c, scope, rec := newController(t, halfScaleSurface)

	// Element at (0,0) is drawn centred on the surface; grab it dead centre.
	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 430, Top: 250, Width: 100, Height: 40})
	scope.DispatchMove(input.PointerEvent{X: 1000, Y: 270})

	if len(rec.calls) != 1 {
		t.Fatalf("got %d position updates, want 1", len(rec.calls))
	}
	if rec.calls[0].X != 960 {
		t.Errorf("X = %v, want 960 (clamped)", rec.calls[0].X)
	}
}

func TestDragCoordinateExample(t *testing.T) {
	c, scope, rec := newController(t, halfScaleSurface)

	// Grab offset (0,0): pointer-down exactly at the element's visual centre.
	c.BeginDrag(input.PointerEvent{X: 0, Y: 0}, geometry.Rect{Left: -50, Top: -20, Width: 100, Height: 40})
	if g := c.Session().Grab; g != (geometry.Point{}) {
		t.Fatalf("grab offset = %+v, want zero", g)
	}
	scope.DispatchMove(input.PointerEvent{X: 1000, Y: 0})

	if len(rec.calls) != 1 || rec.calls[0].X != 960 {
		t.Errorf("calls = %+v, want X=960", rec.calls)
	}
}

func TestMovesDeliveredInOrder(t *testing.T) {
	c, scope, rec := newController(t, halfScaleSurface)
	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 470, Top: 260, Width: 20, Height: 20})

	for _, x := range []float64{500, 400, 600, 480} {
		scope.DispatchMove(input.PointerEvent{X: x, Y: 270})
	}
	want := []geometry.Point{{X: 40, Y: 0}, {X: -160, Y: 0}, {X: 240, Y: 0}, {X: 0, Y: 0}}
	if diff := cmp.Diff(want, rec.calls, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("position sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingSurfaceSkipsTick(t *testing.T) {
	mounted := false
	surface := func() (geometry.Rect, bool) {
		if !mounted {
			return geometry.Rect{}, false
		}
		return halfScaleSurface()
	}
	c, scope, rec := newController(t, surface)
	c.BeginDrag(input.PointerEvent{X: 10, Y: 10}, geometry.Rect{Left: 0, Top: 0, Width: 20, Height: 20})

	scope.DispatchMove(input.PointerEvent{X: 100, Y: 100})
	if len(rec.calls) != 0 {
		t.Fatalf("update emitted without a surface: %+v", rec.calls)
	}

	mounted = true
	scope.DispatchMove(input.PointerEvent{X: 100, Y: 100})
	if len(rec.calls) != 1 {
		t.Errorf("got %d updates after mount, want 1", len(rec.calls))
	}
}

func TestReleaseDetachesObservers(t *testing.T) {
	c, scope, rec := newController(t, halfScaleSurface)
	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 470, Top: 260, Width: 20, Height: 20})
	if scope.Observers() != 1 {
		t.Fatalf("Observers() = %d during drag, want 1", scope.Observers())
	}

	scope.DispatchMove(input.PointerEvent{X: 490, Y: 270})
	scope.DispatchRelease(input.PointerEvent{X: 490, Y: 270})

	if c.Active() {
		t.Error("controller still active after release")
	}
	if scope.Observers() != 0 {
		t.Errorf("Observers() = %d after release, want 0", scope.Observers())
	}

	for i := 0; i < 5; i++ {
		scope.DispatchMove(input.PointerEvent{X: float64(500 + i), Y: 300})
	}
	if len(rec.calls) != 1 {
		t.Errorf("got %d updates, want 1 (none after release)", len(rec.calls))
	}
}

func TestStaleSessionIgnoresDeliveredMove(t *testing.T) {
	c, scope, rec := newController(t, halfScaleSurface)
	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 470, Top: 260, Width: 20, Height: 20})
	s := c.Session()

	scope.DispatchRelease(input.PointerEvent{})
	// A move that was already in flight still reaches the old session.
	c.move(s, input.PointerEvent{X: 900, Y: 270})

	if len(rec.calls) != 0 {
		t.Errorf("stale session emitted %+v", rec.calls)
	}
}

func TestCloseMidDrag(t *testing.T) {
	c, scope, rec := newController(t, halfScaleSurface)
	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 470, Top: 260, Width: 20, Height: 20})

	c.Close()
	if scope.Observers() != 0 {
		t.Errorf("Observers() = %d after Close, want 0", scope.Observers())
	}
	scope.DispatchMove(input.PointerEvent{X: 600, Y: 270})
	scope.DispatchRelease(input.PointerEvent{})
	if len(rec.calls) != 0 {
		t.Errorf("updates after teardown: %+v", rec.calls)
	}

	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 470, Top: 260, Width: 20, Height: 20})
	if c.Active() || scope.Observers() != 0 {
		t.Error("BeginDrag after Close should be ignored")
	}
}

func TestSecondBeginDragIgnoredWhileActive(t *testing.T) {
	c, scope, _ := newController(t, halfScaleSurface)
	c.BeginDrag(input.PointerEvent{X: 480, Y: 270}, geometry.Rect{Left: 470, Top: 260, Width: 20, Height: 20})
	first := c.Session()
	c.BeginDrag(input.PointerEvent{X: 10, Y: 10}, geometry.Rect{Width: 20, Height: 20})

	if c.Session() != first || scope.Observers() != 1 {
		t.Error("second BeginDrag replaced the active session")
	}
}
