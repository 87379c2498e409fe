// Package star keeps the ring of starred panes the user cycles through.
package star

import "github.com/b/panejump/pkg/pane"

// Star is an insertion-ordered set of pane ids.
type Star struct {
	ids   []pane.ID
	index map[pane.ID]int
}

// New returns an empty ring.
func New(ids ...pane.ID) *Star {
	s := &Star{index: make(map[pane.ID]int)}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Star) add(id pane.ID) {
	if s.index == nil {
		s.index = make(map[pane.ID]int)
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *Star) remove(id pane.ID) {
	s.retain(func(other pane.ID) bool { return other != id })
}

// retain keeps the ids for which keep returns true and rebuilds the index.
func (s *Star) retain(keep func(pane.ID) bool) {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if keep(id) {
			kept = append(kept, id)
		}
	}
	s.ids = kept
	s.index = make(map[pane.ID]int, len(kept))
	for i, id := range kept {
		s.index[id] = i
	}
}

// Toggle stars id at the end of the ring, or unstars it if already present.
func (s *Star) Toggle(id pane.ID) {
	if s.Has(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// Has reports whether id is starred.
func (s *Star) Has(id pane.ID) bool {
	_, ok := s.index[id]
	return ok
}

// Sync drops every id that is not in live, keeping the order of the rest.
func (s *Star) Sync(live map[pane.ID]struct{}) {
	s.retain(func(id pane.ID) bool {
		_, ok := live[id]
		return ok
	})
}

// Next returns the id after id, wrapping to the first one.
// When id is not starred the first id is returned.
func (s *Star) Next(id pane.ID) (pane.ID, bool) {
	if len(s.ids) == 0 {
		return pane.ID{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return s.ids[0], true
	}
	return s.ids[(i+1)%len(s.ids)], true
}

// Previous returns the id before id, wrapping to the last one.
// When id is not starred the first id is returned, same as Next.
func (s *Star) Previous(id pane.ID) (pane.ID, bool) {
	if len(s.ids) == 0 {
		return pane.ID{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return s.ids[0], true
	}
	return s.ids[(i-1+len(s.ids))%len(s.ids)], true
}

// Len returns the number of starred panes.
func (s *Star) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the ring in order.
func (s *Star) IDs() []pane.ID {
	out := make([]pane.ID, len(s.ids))
	copy(out, s.ids)
	return out
}
