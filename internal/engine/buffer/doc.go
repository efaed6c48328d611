// Package buffer provides the host text buffer that abbreviation tracking
// operates on.
//
// The buffer package provides:
//
//   - Half-open byte ranges ([Start, End)) with both exclusive and
//     inclusive containment checks
//   - Read access by range, byte, line and indentation
//   - Insert, erase and replace edits that report the resulting Change
//   - Named regions that move with the text on every edit, the same way an
//     editor keeps highlighted regions anchored to content
//   - A stable uuid-based identity used to key per-buffer state
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("<p>ul</p>")
//	buf.AddRegion("abbr", buffer.NewRange(3, 5))
//	buf.Insert(3, "x")         // region shifts to [4:6)
//	r, _ := buf.Region("abbr")
//	buf.Substr(r)              // "ul"
//
// Region Movement:
//
// When an edit touches a named region the region is adjusted as follows:
//
//   - Edit ends at or before the region start: the region shifts by the
//     edit's delta. An insertion exactly at the start therefore pushes the
//     region forward instead of growing it backward.
//   - Edit starts at or after the region end: the region is unchanged. An
//     insertion exactly at the end does not grow the region.
//   - Edit overlaps the region: the overlapped part is removed and text
//     inserted inside the region becomes part of it.
//
// Thread Safety:
//
// All Buffer methods are safe for concurrent use.
package buffer
