package input

import "testing"

func TestSubscriptionCloseDetaches(t *testing.T) {
	s := NewScope()
	var moves, releases int
	sub := s.Observe(func(PointerEvent) { moves++ }, func(PointerEvent) { releases++ })

	s.DispatchMove(PointerEvent{X: 1})
	s.DispatchRelease(PointerEvent{})
	if moves != 1 || releases != 1 {
		t.Fatalf("moves=%d releases=%d, want 1/1", moves, releases)
	}

	sub.Close()
	sub.Close()
	if s.Observers() != 0 {
		t.Errorf("Observers() = %d after Close, want 0", s.Observers())
	}

	s.DispatchMove(PointerEvent{X: 2})
	s.DispatchRelease(PointerEvent{})
	if moves != 1 || releases != 1 {
		t.Errorf("observer fired after Close: moves=%d releases=%d", moves, releases)
	}
}

func TestCloseDuringDispatch(t *testing.T) {
	s := NewScope()
	var second int
	var first *Subscription
	first = s.Observe(nil, func(PointerEvent) { first.Close() })
	s.Observe(nil, func(PointerEvent) { second++ })

	s.DispatchRelease(PointerEvent{})
	if second != 1 {
		t.Errorf("second observer fired %d times, want 1", second)
	}
	if s.Observers() != 1 {
		t.Errorf("Observers() = %d, want 1", s.Observers())
	}
}

func TestDispatchOrder(t *testing.T) {
	s := NewScope()
	var got []float64
	s.Observe(func(e PointerEvent) { got = append(got, e.X) }, nil)

	for _, x := range []float64{3, 1, 2} {
		s.DispatchMove(PointerEvent{X: x})
	}
	want := []float64{3, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestModifiers(t *testing.T) {
	m := ModShift | ModAlt
	if !m.Shift() || !m.Alt() || m.Ctrl() || m.Super() {
		t.Errorf("unexpected modifier decoding for %08b", m)
	}
}
