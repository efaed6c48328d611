// Package cursor provides caret and selection management for a buffer.
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current caret position (where typing would occur)
//
// Set manages all selections of a buffer, kept sorted and merged, and
// transforms them together after each edit:
//
//	sels := cursor.NewSetAt(3)
//	sels.Transform(buffer.NewInsert(0, "ab")) // caret now at 5
//
// Thread Safety:
//
// Selection is an immutable value type and safe for concurrent use.
// Set is not thread-safe.
package cursor
