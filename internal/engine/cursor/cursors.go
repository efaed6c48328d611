package cursor

import "sort"

// Set manages the selections of one buffer.
// Selections are kept sorted by position and non-overlapping. The first
// selection is the primary one; its head is "the caret" for single-caret
// logic such as abbreviation tracking.
type Set struct {
	selections []Selection
}

// NewSet creates a set with the given selections.
// An empty argument list yields a single caret at offset 0.
func NewSet(sels ...Selection) *Set {
	s := &Set{}
	s.SetAll(sels)
	return s
}

// NewSetAt creates a set with a single caret at the given offset.
func NewSetAt(offset ByteOffset) *Set {
	return &Set{selections: []Selection{NewCursorSelection(offset)}}
}

// Primary returns the primary (first) selection.
func (s *Set) Primary() Selection {
	return s.selections[0]
}

// Caret returns the start of the primary selection.
func (s *Set) Caret() ByteOffset {
	return s.selections[0].Start()
}

// All returns a copy of all selections.
func (s *Set) All() []Selection {
	out := make([]Selection, len(s.selections))
	copy(out, s.selections)
	return out
}

// Count returns the number of selections.
func (s *Set) Count() int {
	return len(s.selections)
}

// Add adds a selection, merging it with overlapping ones.
func (s *Set) Add(sel Selection) {
	s.selections = append(s.selections, sel)
	s.normalize()
}

// Clear collapses the set to a single caret at offset.
func (s *Set) Clear(offset ByteOffset) {
	s.selections = []Selection{NewCursorSelection(offset)}
}

// SetAll replaces all selections.
func (s *Set) SetAll(sels []Selection) {
	if len(sels) == 0 {
		s.selections = []Selection{NewCursorSelection(0)}
		return
	}
	s.selections = make([]Selection, len(sels))
	copy(s.selections, sels)
	s.normalize()
}

// Clamp clamps all selections to [0, maxOffset].
func (s *Set) Clamp(maxOffset ByteOffset) {
	for i, sel := range s.selections {
		s.selections[i] = sel.Clamp(maxOffset)
	}
	s.normalize()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return &Set{selections: s.All()}
}

// normalize sorts selections and merges overlapping ones.
// Adjacent carets at distinct offsets stay separate.
func (s *Set) normalize() {
	if len(s.selections) <= 1 {
		return
	}

	sort.SliceStable(s.selections, func(i, j int) bool {
		si, sj := s.selections[i].Start(), s.selections[j].Start()
		if si != sj {
			return si < sj
		}
		return s.selections[i].End() > s.selections[j].End()
	})

	merged := s.selections[:1]
	for _, sel := range s.selections[1:] {
		last := &merged[len(merged)-1]
		if sel.Start() < last.End() || sel.Start() == last.Start() {
			*last = last.Merge(sel)
		} else {
			merged = append(merged, sel)
		}
	}
	s.selections = merged
}
