package cursor

import "github.com/dshills/abbrmark/internal/engine/buffer"

// TransformOffset updates an offset after an edit.
//
// Transformation rules:
//   - Edit entirely before offset, or inserting at it: shift by the delta
//   - Edit starts after offset: unchanged
//   - Edit spans offset: move to the end of the new text
func TransformOffset(offset ByteOffset, edit buffer.Edit) ByteOffset {
	if edit.Range.End <= offset {
		return offset + edit.Delta()
	}
	if edit.Range.Start >= offset {
		return offset
	}
	return edit.Range.Start + ByteOffset(len(edit.NewText))
}

// TransformSelection updates a selection after an edit.
func TransformSelection(sel Selection, edit buffer.Edit) Selection {
	return Selection{
		Anchor: TransformOffset(sel.Anchor, edit),
		Head:   TransformOffset(sel.Head, edit),
	}
}

// Transform updates every selection in the set after an edit.
func (s *Set) Transform(edit buffer.Edit) {
	for i, sel := range s.selections {
		s.selections[i] = TransformSelection(sel, edit)
	}
	s.normalize()
}
