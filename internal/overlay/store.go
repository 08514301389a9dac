package overlay

import (
	"math"
	"sort"
	"sync"

	"github.com/ivlev/overlaykit/internal/log"
)

// Store applies partial attribute updates to the persistent model. From the
// caller's side the call is synchronous and has no error channel; failures
// are the store's concern.
type Store interface {
	UpdateElement(trackID, elementID string, p Patch)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(trackID, elementID string, p Patch)

func (f StoreFunc) UpdateElement(trackID, elementID string, p Patch) {
	f(trackID, elementID, p)
}

// Update is one accepted write, kept in arrival order.
type Update struct {
	TrackID   string
	ElementID string
	Patch     Patch
}

type key struct{ track, id string }

// MemoryStore is an in-memory Store keyed by track and element id.
type MemoryStore struct {
	mu       sync.RWMutex
	elements map[key]Element
	updates  []Update
}

// NewMemoryStore returns a store holding the given elements.
func NewMemoryStore(elems ...Element) *MemoryStore {
	s := &MemoryStore{elements: make(map[key]Element)}
	for _, e := range elems {
		s.Put(e)
	}
	return s
}

// Put inserts or replaces an element.
func (s *MemoryStore) Put(e Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[key{e.TrackID, e.ID}] = e
}

// Get returns the element with the given ids.
func (s *MemoryStore) Get(trackID, elementID string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[key{trackID, elementID}]
	return e, ok
}

// Elements returns all elements sorted by track then id.
func (s *MemoryStore) Elements() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Element, 0, len(s.elements))
	for _, e := range s.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TrackID != out[j].TrackID {
			return out[i].TrackID < out[j].TrackID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Updates returns a copy of the accepted writes in arrival order.
func (s *MemoryStore) Updates() []Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Update(nil), s.updates...)
}

// UpdateElement applies p to the element. Updates for unknown elements are
// dropped. Numeric fields that cannot be represented (NaN, infinities, a
// non-positive font size) are stripped here, at the store boundary.
func (s *MemoryStore) UpdateElement(trackID, elementID string, p Patch) {
	p = guard(trackID, elementID, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{trackID, elementID}
	e, ok := s.elements[k]
	if !ok {
		log.Warn("update for unknown element", "track", trackID, "element", elementID)
		return
	}
	s.elements[k] = p.Apply(e)
	s.updates = append(s.updates, Update{TrackID: trackID, ElementID: elementID, Patch: p})
}

func guard(trackID, elementID string, p Patch) Patch {
	drop := func(name string, v **float64, ok func(float64) bool) {
		if *v == nil {
			return
		}
		if f := **v; math.IsNaN(f) || math.IsInf(f, 0) || !ok(f) {
			log.Warn("rejected attribute", "track", trackID, "element", elementID, "attr", name, "value", f)
			*v = nil
		}
	}
	finite := func(float64) bool { return true }
	drop("x", &p.X, finite)
	drop("y", &p.Y, finite)
	drop("rotation", &p.Rotation, finite)
	drop("opacity", &p.Opacity, func(f float64) bool { return f >= 0 && f <= 1 })
	drop("fontSize", &p.FontSize, func(f float64) bool { return f > 0 })
	return p
}

// Reader looks elements up by id.
type Reader interface {
	Get(trackID, elementID string) (Element, bool)
}

// Model is a store that can also be read. The interactive components read
// the current content from it and never cache a divergent copy.
type Model interface {
	Store
	Reader
}
