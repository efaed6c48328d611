package engine

import (
	"errors"

	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
	"github.com/dshills/abbrmark/internal/engine/history"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the buffer.
	ByteOffset = buffer.ByteOffset

	// Range represents a byte range in the buffer.
	Range = buffer.Range

	// Edit represents an edit operation.
	Edit = buffer.Edit

	// Change describes an applied edit.
	Change = buffer.Change

	// Selection represents a cursor selection.
	Selection = cursor.Selection
)

// Engine is the editing facade of one buffer.
type Engine struct {
	buf     *buffer.Buffer
	cursors *cursor.Set
	history *history.History

	// An undo group is open
	grouping bool

	// Configuration
	tabWidth       int
	maxUndoEntries int
	readOnly       bool
	name           string
	id             *buffer.ID

	// Initialization
	initContent string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		tabWidth:       DefaultTabWidth,
		maxUndoEntries: DefaultMaxUndoEntries,
	}

	for _, opt := range opts {
		opt(e)
	}

	bufOpts := []buffer.Option{
		buffer.WithTabWidth(e.tabWidth),
		buffer.WithName(e.name),
	}
	if e.id != nil {
		bufOpts = append(bufOpts, buffer.WithID(*e.id))
	}
	e.buf = buffer.NewBufferFromString(e.initContent, bufOpts...)
	e.cursors = cursor.NewSetAt(0)
	e.history = history.New(e.maxUndoEntries)
	return e
}

// ============================================================================
// Read Operations
// ============================================================================

// Buffer returns the underlying buffer. Edits must go through the engine
// so they are recorded.
func (e *Engine) Buffer() *buffer.Buffer { return e.buf }

// ID returns the buffer identity.
func (e *Engine) ID() buffer.ID { return e.buf.ID() }

// Text returns the full buffer content.
func (e *Engine) Text() string { return e.buf.Text() }

// Len returns the total byte length of the buffer.
func (e *Engine) Len() ByteOffset { return e.buf.Len() }

// Substr returns the text in r, clamped to the buffer.
func (e *Engine) Substr(r Range) string { return e.buf.Substr(r) }

// Line returns the range of the line containing offset.
func (e *Engine) Line(offset ByteOffset) Range { return e.buf.Line(offset) }

// Lines returns the ranges of the lines r touches.
func (e *Engine) Lines(r Range) []Range { return e.buf.Lines(r) }

// IndentAt returns the leading whitespace of the line containing offset.
func (e *Engine) IndentAt(offset ByteOffset) string { return e.buf.IndentAt(offset) }

// NarrowToNonSpace trims whitespace from both ends of r.
func (e *Engine) NarrowToNonSpace(r Range) (Range, bool) { return e.buf.NarrowToNonSpace(r) }

// ============================================================================
// Selections
// ============================================================================

// Caret returns the start of the primary selection.
func (e *Engine) Caret() ByteOffset { return e.cursors.Caret() }

// Selections returns a copy of all selections.
func (e *Engine) Selections() []Selection { return e.cursors.All() }

// SetSelections replaces all selections, clamped to the buffer.
func (e *Engine) SetSelections(sels ...Selection) {
	e.cursors.SetAll(sels)
	e.cursors.Clamp(e.buf.Len())
}

// MoveTo collapses the selections to a caret at offset.
func (e *Engine) MoveTo(offset ByteOffset) {
	e.cursors.Clear(offset)
	e.cursors.Clamp(e.buf.Len())
}

// ============================================================================
// Write Operations
// ============================================================================

// Edit runs fn inside an undo group named name. Called while a group is
// open, fn joins that group.
func (e *Engine) Edit(name string, fn func() error) error {
	if e.readOnly {
		return ErrReadOnly
	}
	if e.grouping {
		return fn()
	}

	if err := e.history.Begin(name, history.Capture(e.buf, e.cursors)); err != nil {
		return err
	}
	e.grouping = true
	err := fn()
	e.grouping = false
	return errors.Join(err, e.history.End(history.Capture(e.buf, e.cursors)))
}

// ApplyEdit applies edit, moves the selections and records the change in
// the open group, or in a group of its own.
func (e *Engine) ApplyEdit(edit Edit) (Change, error) {
	if e.readOnly {
		return Change{}, ErrReadOnly
	}
	if !e.grouping {
		var change Change
		err := e.Edit(edit.String(), func() error {
			var err error
			change, err = e.ApplyEdit(edit)
			return err
		})
		return change, err
	}

	change, err := e.buf.ApplyEdit(edit)
	if err != nil {
		return Change{}, err
	}
	e.cursors.Transform(edit)
	return change, e.history.Record(change)
}

// Insert inserts text at offset and returns the end of the inserted text.
func (e *Engine) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	change, err := e.ApplyEdit(buffer.NewInsert(offset, text))
	if err != nil {
		return 0, err
	}
	return change.NewRange.End, nil
}

// Delete removes the text in r.
func (e *Engine) Delete(r Range) error {
	_, err := e.ApplyEdit(buffer.NewDelete(r))
	return err
}

// Replace replaces the text in r and returns the end of the new text.
func (e *Engine) Replace(r Range, text string) (ByteOffset, error) {
	change, err := e.ApplyEdit(buffer.NewEdit(r, text))
	if err != nil {
		return 0, err
	}
	return change.NewRange.End, nil
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo reverts the most recent group and returns its name.
func (e *Engine) Undo() (string, error) {
	if e.readOnly {
		return "", ErrReadOnly
	}
	entry, err := e.history.Undo(e.buf, e.cursors)
	if err != nil {
		return "", err
	}
	return entry.Name, nil
}

// Redo reapplies the most recently undone group and returns its name.
func (e *Engine) Redo() (string, error) {
	if e.readOnly {
		return "", ErrReadOnly
	}
	entry, err := e.history.Redo(e.buf, e.cursors)
	if err != nil {
		return "", err
	}
	return entry.Name, nil
}

// CanUndo returns true if there is a group to undo.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo returns true if there is a group to redo.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// UndoCount returns the number of undoable groups.
func (e *Engine) UndoCount() int { return e.history.Len() }
