package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop serializes work onto a single goroutine. Every overlay component
// attached to a Loop is only ever touched from Run's goroutine, so the
// components themselves need no locking.
type Loop struct {
	start time.Time
	tasks chan func()

	stopOnce sync.Once
	stopped  chan struct{}
}

// New creates a loop with a task queue of the given capacity.
func New(queue int) *Loop {
	if queue <= 0 {
		queue = 256
	}
	return &Loop{
		start:   time.Now(),
		tasks:   make(chan func(), queue),
		stopped: make(chan struct{}),
	}
}

// Post queues fn to run on the loop. It returns false once the loop has
// been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Run processes posted tasks in FIFO order until ctx is cancelled or Stop is
// called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stopped:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop ends Run. Queued tasks that have not started are dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}

// Now returns wall time elapsed since the loop was created.
func (l *Loop) Now() time.Duration {
	return time.Since(l.start)
}

// AfterFunc runs fn on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			// Stop may have won the race after the wall timer fired.
			if t.fired.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

type loopTimer struct {
	timer *time.Timer
	fired atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}
