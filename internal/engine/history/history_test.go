package history

import (
	"errors"
	"testing"

	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
)

func applyGroup(t *testing.T, h *History, buf *buffer.Buffer, sels *cursor.Set, name string, edits ...buffer.Edit) {
	t.Helper()

	if err := h.Begin(name, Capture(buf, sels)); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	for _, e := range edits {
		change, err := buf.ApplyEdit(e)
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		sels.Transform(e)
		if err := h.Record(change); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	if err := h.End(Capture(buf, sels)); err != nil {
		t.Fatalf("end failed: %v", err)
	}
}

func TestUndoRedo(t *testing.T) {
	buf := buffer.NewBufferFromString("")
	sels := cursor.NewSetAt(0)
	h := New(10)

	applyGroup(t, h, buf, sels, "type", buffer.NewInsert(0, "ul"))
	applyGroup(t, h, buf, sels, "type", buffer.NewInsert(2, ">li"))

	if buf.Text() != "ul>li" {
		t.Fatalf("expected 'ul>li', got %q", buf.Text())
	}

	if _, err := h.Undo(buf, sels); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if buf.Text() != "ul" {
		t.Errorf("expected 'ul' after undo, got %q", buf.Text())
	}
	if sels.Caret() != 2 {
		t.Errorf("expected caret 2 after undo, got %d", sels.Caret())
	}

	if _, err := h.Redo(buf, sels); err != nil {
		t.Fatalf("redo failed: %v", err)
	}
	if buf.Text() != "ul>li" {
		t.Errorf("expected 'ul>li' after redo, got %q", buf.Text())
	}
	if sels.Caret() != 5 {
		t.Errorf("expected caret 5 after redo, got %d", sels.Caret())
	}
}

func TestUndoRestoresErasedRegion(t *testing.T) {
	buf := buffer.NewBufferFromString("ul>li")
	sels := cursor.NewSetAt(5)
	h := New(10)

	buf.AddRegion("abbr", buffer.NewRange(0, 5))
	before := Capture(buf, sels)
	buf.EraseRegion("abbr")

	if err := h.Begin("expand", before); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	change, err := buf.ApplyEdit(buffer.NewEdit(buffer.NewRange(0, 5), "<ul><li></li></ul>"))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	_ = h.Record(change)
	_ = h.End(Capture(buf, sels))

	if _, err := h.Undo(buf, sels); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	r, ok := buf.Region("abbr")
	if !ok {
		t.Fatal("expected region to be restored by undo")
	}
	if buf.Substr(r) != "ul>li" {
		t.Errorf("expected restored region text 'ul>li', got %q", buf.Substr(r))
	}
}

func TestEmptyGroupIsDropped(t *testing.T) {
	buf := buffer.NewBuffer()
	sels := cursor.NewSetAt(0)
	h := New(10)

	_ = h.Begin("noop", Capture(buf, sels))
	_ = h.End(Capture(buf, sels))

	if h.CanUndo() {
		t.Error("expected empty group to be dropped")
	}
	if _, err := h.Undo(buf, sels); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := h.Redo(buf, sels); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestGroupErrors(t *testing.T) {
	buf := buffer.NewBuffer()
	sels := cursor.NewSetAt(0)
	h := New(10)

	if err := h.Record(buffer.Change{}); !errors.Is(err, ErrNoGroup) {
		t.Errorf("expected ErrNoGroup, got %v", err)
	}
	_ = h.Begin("a", Capture(buf, sels))
	if err := h.Begin("b", Capture(buf, sels)); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("expected ErrGroupOpen, got %v", err)
	}
}

func TestMaxEntries(t *testing.T) {
	buf := buffer.NewBuffer()
	sels := cursor.NewSetAt(0)
	h := New(2)

	for i := 0; i < 5; i++ {
		applyGroup(t, h, buf, sels, "type", buffer.NewInsert(buf.Len(), "x"))
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", h.Len())
	}
}

func TestNewEditClearsRedo(t *testing.T) {
	buf := buffer.NewBuffer()
	sels := cursor.NewSetAt(0)
	h := New(10)

	applyGroup(t, h, buf, sels, "type", buffer.NewInsert(0, "a"))
	_, _ = h.Undo(buf, sels)
	if !h.CanRedo() {
		t.Fatal("expected redo to be available")
	}
	applyGroup(t, h, buf, sels, "type", buffer.NewInsert(0, "b"))
	if h.CanRedo() {
		t.Error("expected redo stack to be cleared")
	}
}
