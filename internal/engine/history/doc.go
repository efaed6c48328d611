// Package history provides undo/redo for buffer edits.
//
// Edits are recorded in groups. Each group remembers the selections and
// the named buffer regions as they were right before its first edit and
// right after its last one:
//
//	h := history.New(1000)
//	h.Begin("insert", history.Capture(buf, sels))
//	change, _ := buf.ApplyEdit(edit)
//	h.Record(change)
//	h.End(history.Capture(buf, sels))
//
//	h.Undo(buf, sels) // text, selections and regions are back
//
// Restoring named regions on undo matters to region owners that drop their
// region when they stop tracking it: undoing the edit that ended tracking
// brings the region back, and the owner can pick it up again.
//
// Thread Safety:
//
// History is safe for concurrent use, but undo and redo must not race with
// other edits to the same buffer.
package history
