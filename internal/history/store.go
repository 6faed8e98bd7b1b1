package history

import (
	"github.com/google/btree"
)

// btreeDegree is the node degree of the backing B-tree.
const btreeDegree = 32

// Store is the ordered, deduplicating event history.
// The zero value is not usable; create one with NewStore.
type Store struct {
	tree *btree.BTreeG[Event]
}

// NewStore creates an empty history.
func NewStore() *Store {
	return &Store{tree: btree.NewG[Event](btreeDegree, Less)}
}

// Insert adds e unless an event with the same identity is already present.
// Returns true if e was newly added.
func (s *Store) Insert(e Event) bool {
	if s.tree.Has(e) {
		return false
	}
	s.tree.ReplaceOrInsert(e)
	return true
}

// Contains reports whether an event with e's identity is stored.
func (s *Store) Contains(e Event) bool {
	return s.tree.Has(e)
}

// Len returns the number of distinct events.
func (s *Store) Len() int {
	return s.tree.Len()
}

// At returns the event at rank (0 = newest).
func (s *Store) At(rank int) (Event, bool) {
	if rank < 0 || rank >= s.tree.Len() {
		return Event{}, false
	}
	var (
		found Event
		i     int
	)
	s.tree.Descend(func(e Event) bool {
		if i == rank {
			found = e
			return false
		}
		i++
		return true
	})
	return found, true
}

// Ascend calls fn for every event from oldest to newest until fn returns false.
func (s *Store) Ascend(fn func(Event) bool) {
	s.tree.Ascend(btree.ItemIteratorG[Event](fn))
}

// Events returns a copy of the whole history, oldest first.
func (s *Store) Events() []Event {
	out := make([]Event, 0, s.tree.Len())
	s.tree.Ascend(func(e Event) bool {
		out = append(out, e)
		return true
	})
	return out
}
