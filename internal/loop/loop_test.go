package loop

import (
	"context"
	"testing"
	"time"
)

func TestManualSchedulerOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })
	s.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	s.AfterFunc(20*time.Millisecond, func() { got = append(got, "c") })

	s.Advance(15 * time.Millisecond)
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("after 15ms got %v, want [a]", got)
	}
	if s.Now() != 15*time.Millisecond {
		t.Errorf("Now() = %v, want 15ms", s.Now())
	}

	s.Advance(5 * time.Millisecond)
	if len(got) != 3 || got[1] != "b" || got[2] != "c" {
		t.Errorf("got %v, want [a b c]", got)
	}
}

func TestManualSchedulerNestedTimers(t *testing.T) {
	s := NewManualScheduler()
	var at []time.Duration
	s.AfterFunc(10*time.Millisecond, func() {
		at = append(at, s.Now())
		s.AfterFunc(10*time.Millisecond, func() { at = append(at, s.Now()) })
	})

	s.Advance(time.Second)
	if len(at) != 2 || at[0] != 10*time.Millisecond || at[1] != 20*time.Millisecond {
		t.Errorf("fired at %v, want [10ms 20ms]", at)
	}
	if s.Now() != time.Second {
		t.Errorf("Now() = %v, want 1s", s.Now())
	}
}

func TestManualTimerStop(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	timer := s.AfterFunc(time.Millisecond, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	s.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestLoopRunsPostedTasksInOrder(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan []int, 1)
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() {
		done <- got
		l.Stop()
	})

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	res := <-done
	if len(res) != 3 || res[0] != 0 || res[2] != 2 {
		t.Errorf("got %v, want [0 1 2]", res)
	}
	if l.Post(func() {}) {
		t.Error("Post after Stop should return false")
	}
}

func TestLoopTimerFiresOnLoop(t *testing.T) {
	l := New(8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stopped := l.AfterFunc(time.Millisecond, func() { t.Error("stopped timer fired") })
	stopped.Stop()

	l.AfterFunc(5*time.Millisecond, l.Stop)
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
