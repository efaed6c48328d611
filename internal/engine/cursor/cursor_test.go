package cursor

import (
	"testing"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

func TestSelectionBounds(t *testing.T) {
	sel := NewSelection(10, 4)

	if sel.Start() != 4 || sel.End() != 10 {
		t.Errorf("expected bounds 4..10, got %d..%d", sel.Start(), sel.End())
	}
	if !sel.IsBackward() {
		t.Error("expected backward selection")
	}
	if got := sel.Range(); got != buffer.NewRange(4, 10) {
		t.Errorf("expected range [4:10), got %s", got)
	}
	if got := sel.CollapseToStart(); got != NewCursorSelection(4) {
		t.Errorf("expected caret at 4, got %s", got)
	}
	if sel.String() != "Selection(10←4)" {
		t.Errorf("unexpected string %q", sel.String())
	}
}

func TestSetNormalizes(t *testing.T) {
	s := NewSet(
		NewCursorSelection(20),
		NewSelection(2, 8),
		NewSelection(6, 12),
	)

	if s.Count() != 2 {
		t.Fatalf("expected 2 selections after merge, got %d", s.Count())
	}
	if got := s.Primary(); got.Start() != 2 || got.End() != 12 {
		t.Errorf("expected merged primary 2..12, got %s", got)
	}
	if s.Caret() != 2 {
		t.Errorf("expected caret 2, got %d", s.Caret())
	}
}

func TestSetEmptyDefaultsToOrigin(t *testing.T) {
	s := NewSet()
	if s.Count() != 1 || s.Caret() != 0 {
		t.Errorf("expected single caret at 0, got %v", s.All())
	}
}

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset ByteOffset
		edit   buffer.Edit
		want   ByteOffset
	}{
		{"insert before", 5, buffer.NewInsert(2, "abc"), 8},
		{"insert at", 5, buffer.NewInsert(5, "x"), 6},
		{"insert after", 5, buffer.NewInsert(7, "x"), 5},
		{"delete before", 5, buffer.NewDelete(buffer.NewRange(0, 2)), 3},
		{"delete spanning", 5, buffer.NewDelete(buffer.NewRange(3, 8)), 3},
		{"replace spanning", 5, buffer.NewEdit(buffer.NewRange(3, 8), "ab"), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.edit); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSetTransform(t *testing.T) {
	s := NewSet(NewCursorSelection(1), NewCursorSelection(5))
	s.Transform(buffer.NewInsert(0, "xy"))

	all := s.All()
	if all[0].Head != 3 || all[1].Head != 7 {
		t.Errorf("expected carets at 3 and 7, got %v", all)
	}

	clone := s.Clone()
	clone.Clear(0)
	if s.Count() != 2 {
		t.Error("clone should not share state with the original")
	}
}
