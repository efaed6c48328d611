package history

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrGroupOpen     = errors.New("history group already open")
	ErrNoGroup       = errors.New("no open history group")
)

// Snapshot captures the non-text state restored by undo and redo.
type Snapshot struct {
	Selections []cursor.Selection
	Regions    map[string]buffer.Range
}

// Capture takes a snapshot of the selections and named regions.
func Capture(buf *buffer.Buffer, sels *cursor.Set) Snapshot {
	return Snapshot{
		Selections: sels.All(),
		Regions:    buf.Regions(),
	}
}

func (s Snapshot) restore(buf *buffer.Buffer, sels *cursor.Set) {
	buf.RestoreRegions(maps.Clone(s.Regions))
	sels.SetAll(s.Selections)
	sels.Clamp(buf.Len())
}

// Entry is one undoable group of changes.
type Entry struct {
	Name      string
	Changes   []buffer.Change
	Before    Snapshot
	After     Snapshot
	Timestamp time.Time
}

// History manages undo/redo state for a buffer.
type History struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry
	open      *Entry

	maxEntries int
}

// New creates a new history manager.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &History{maxEntries: maxEntries}
}

// Begin opens a new group.
func (h *History) Begin(name string, before Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open != nil {
		return fmt.Errorf("%w: %s", ErrGroupOpen, h.open.Name)
	}
	h.open = &Entry{Name: name, Before: before, Timestamp: time.Now()}
	return nil
}

// Record adds an applied change to the open group.
func (h *History) Record(change buffer.Change) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open == nil {
		return ErrNoGroup
	}
	h.open.Changes = append(h.open.Changes, change)
	return nil
}

// End closes the open group. Groups without changes are dropped.
// Pushing a group clears the redo stack.
func (h *History) End(after Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.open == nil {
		return ErrNoGroup
	}
	entry := h.open
	h.open = nil
	if len(entry.Changes) == 0 {
		return nil
	}

	entry.After = after
	h.undoStack = append(h.undoStack, entry)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
	return nil
}

// Undo reverts the most recent group and restores its Before snapshot.
func (h *History) Undo(buf *buffer.Buffer, sels *cursor.Set) (*Entry, error) {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	for i := len(entry.Changes) - 1; i >= 0; i-- {
		if _, err := buf.ApplyEdit(entry.Changes[i].Invert()); err != nil {
			return nil, fmt.Errorf("undo %s: %w", entry.Name, err)
		}
	}
	entry.Before.restore(buf, sels)

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return entry, nil
}

// Redo reapplies the most recently undone group and restores its After
// snapshot.
func (h *History) Redo(buf *buffer.Buffer, sels *cursor.Set) (*Entry, error) {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return nil, ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	for _, change := range entry.Changes {
		if _, err := buf.ApplyEdit(change.Edit()); err != nil {
			return nil, fmt.Errorf("redo %s: %w", entry.Name, err)
		}
	}
	entry.After.restore(buf, sels)

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return entry, nil
}

// CanUndo returns true if there is a group to undo.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if there is a group to redo.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// Len returns the number of undoable groups.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}
