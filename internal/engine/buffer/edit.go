package buffer

import "fmt"

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(r Range) Edit {
	return Edit{Range: r}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// Change describes an edit after it has been applied.
type Change struct {
	Range    Range  // Original range that was affected
	NewRange Range  // Resulting range after the change
	OldText  string // Text that was removed
	NewText  string // Text that was added
}

// Delta returns the change in buffer length.
func (c Change) Delta() ByteOffset {
	return c.NewRange.Len() - c.Range.Len()
}

// Invert returns the edit that undoes this change.
func (c Change) Invert() Edit {
	return Edit{Range: c.NewRange, NewText: c.OldText}
}

// Edit returns the edit that produced this change.
func (c Change) Edit() Edit {
	return Edit{Range: c.Range, NewText: c.NewText}
}

// TransformRegion moves a region so it stays anchored to the same text
// after the edit. See the package documentation for the rules.
func TransformRegion(r Range, e Edit) Range {
	start, end := e.Range.Start, e.Range.End
	newLen := ByteOffset(len(e.NewText))
	delta := e.Delta()

	if end <= r.Start {
		return r.Shift(delta)
	}
	if start >= r.End {
		return r
	}

	out := r
	if start < r.Start {
		out.Start = start + newLen
	}
	if end <= r.End {
		out.End = r.End + delta
	} else {
		out.End = start + newLen
	}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}
