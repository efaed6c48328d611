// Package engine combines a buffer, its selections and its undo history
// into the editing facade documents are built on.
//
// # Architecture
//
// The engine is built on three sub-packages:
//
//   - buffer: text storage, line lookup and named regions
//   - cursor: multi-selection management
//   - history: grouped undo/redo with selection and region snapshots
//
// # Edit Groups
//
// Every edit belongs to a group, the unit undo and redo work on. Edit opens
// a group explicitly; a bare ApplyEdit gets a group of its own:
//
//	e := engine.New(engine.WithContent("ul"))
//	err := e.Edit("expand", func() error {
//	    _, err := e.ApplyEdit(buffer.NewEdit(buffer.NewRange(0, 2), "<ul></ul>"))
//	    return err
//	})
//
//	e.Undo() // "ul", with the selections and regions from before the group
//
// Edit calls nest: an inner call joins the group already open.
//
// # Thread Safety
//
// An Engine is driven by one event loop. The buffer is safe for concurrent
// reads, but edits, selection changes and undo must be serialized by the
// caller.
package engine
