// Package loop provides the single-threaded cooperative event loop overlay
// components run on, and the timer abstraction animation playback is
// sequenced with.
package loop

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay on the owning loop.
type Scheduler interface {
	// Now returns the time elapsed since the scheduler started.
	Now() time.Duration
	AfterFunc(d time.Duration, fn func()) Timer
}

// ManualScheduler is a Scheduler driven by a virtual clock. Nothing fires
// until Advance is called, which makes playback deterministic in tests and
// in scripted replays.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	queue timerQueue
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTimer struct {
	s        *ManualScheduler
	deadline time.Duration
	seq      uint64
	fn       func()
	index    int
	done     bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	if t.index >= 0 {
		heap.Remove(&t.s.queue, t.index)
	}
	return true
}

// Now returns the virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc schedules fn at Now()+d. Timers with equal deadlines fire in
// the order they were scheduled.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, deadline: s.now + d, seq: s.seq, fn: fn}
	heap.Push(&s.queue, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that falls due
// on the way, including timers scheduled by callbacks within the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	s.AdvanceTo(target)
}

// AdvanceTo moves the clock to the absolute time target.
func (s *ManualScheduler) AdvanceTo(target time.Duration) {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].deadline > target {
			if target > s.now {
				s.now = target
			}
			s.mu.Unlock()
			return
		}
		t := heap.Pop(&s.queue).(*manualTimer)
		t.done = true
		if t.deadline > s.now {
			s.now = t.deadline
		}
		fn := t.fn
		s.mu.Unlock()

		fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// timerQueue is a min-heap ordered by deadline, then scheduling order.
type timerQueue []*manualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*manualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
