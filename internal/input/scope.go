package input

import "sync"

// MoveFunc observes pointer-move signals.
type MoveFunc func(PointerEvent)

// ReleaseFunc observes pointer-release signals.
type ReleaseFunc func(PointerEvent)

// Scope is the widest available observation scope, the equivalent of a
// window: it sees pointer signals regardless of which element the pointer is
// over. Observers are held by explicit Subscription handles.
//
// Dispatch delivers to observers in subscription order and in the order
// signals arrive.
type Scope struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
	order  []uint64
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{subs: make(map[uint64]*Subscription)}
}

// Subscription is the handle for one pair of move/release observers.
// Close detaches both; it is idempotent and safe on every exit path.
type Subscription struct {
	scope   *Scope
	id      uint64
	move    MoveFunc
	release ReleaseFunc
	closed  bool
}

// Observe installs move and release observers and returns their handle.
func (s *Scope) Observe(move MoveFunc, release ReleaseFunc) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	sub := &Subscription{scope: s, id: s.nextID, move: move, release: release}
	s.subs[sub.id] = sub
	s.order = append(s.order, sub.id)
	return sub
}

// Close detaches the observers. Calling Close more than once is a no-op.
func (sub *Subscription) Close() {
	if sub == nil {
		return
	}
	s := sub.scope
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	delete(s.subs, sub.id)
	for i, id := range s.order {
		if id == sub.id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Closed reports whether the subscription has been detached.
func (sub *Subscription) Closed() bool {
	sub.scope.mu.Lock()
	defer sub.scope.mu.Unlock()
	return sub.closed
}

// Observers returns the number of live subscriptions.
func (s *Scope) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// snapshot copies the live subscriptions so observers may close themselves
// (or others) while a signal is being delivered.
func (s *Scope) snapshot() []*Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Subscription, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.subs[id])
	}
	return out
}

// DispatchMove delivers a pointer-move signal to every live observer.
func (s *Scope) DispatchMove(e PointerEvent) {
	for _, sub := range s.snapshot() {
		if sub.move != nil && !sub.Closed() {
			sub.move(e)
		}
	}
}

// DispatchRelease delivers a pointer-release signal to every live observer.
func (s *Scope) DispatchRelease(e PointerEvent) {
	for _, sub := range s.snapshot() {
		if sub.release != nil && !sub.Closed() {
			sub.release(e)
		}
	}
}
