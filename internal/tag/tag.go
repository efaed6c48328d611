// Package tag removes markup tags while keeping their content.
package tag

import (
	"strings"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// Tag is a markup element located in a buffer. Close is nil for
// self-closing and void elements.
type Tag struct {
	Name  string
	Open  buffer.Range
	Close *buffer.Range
}

// Span returns the range from the start of the open tag to the end of the
// close tag.
func (t Tag) Span() buffer.Range {
	if t.Close == nil {
		return t.Open
	}
	return t.Open.Cover(*t.Close)
}

// Buffer is the editable text a tag is removed from.
type Buffer interface {
	buffer.Reader
	Lines(r buffer.Range) []buffer.Range
	IndentAt(pt buffer.ByteOffset) string
	NarrowToNonSpace(r buffer.Range) (buffer.Range, bool)
	ApplyEdit(e buffer.Edit) (buffer.Change, error)
}

// Remove deletes the tags of t from buf and keeps the content between
// them. Content spanning several lines is dedented one level so it lines
// up with the removed open tag.
func Remove(buf Buffer, t Tag) error {
	if t.Close == nil {
		return erase(buf, t.Open)
	}

	inner, ok := buf.NarrowToNonSpace(buffer.Range{Start: t.Open.End, End: t.Close.Start})
	if !ok {
		return erase(buf, t.Span())
	}

	if err := erase(buf, buffer.Range{Start: inner.End, End: t.Close.End}); err != nil {
		return err
	}

	base := buf.IndentAt(t.Open.Start)
	indent := buf.IndentAt(inner.Start)
	lines := buf.Lines(inner)
	// Bottom-up, so replacing one line leaves the offsets above it intact.
	for i := len(lines) - 1; i >= 1; i-- {
		line := lines[i]
		end := min(line.Start+buffer.ByteOffset(len(indent)), line.End)
		r := buffer.Range{Start: line.Start, End: end}
		if !isSpace(buf.Substr(r)) {
			continue
		}
		if _, err := buf.ApplyEdit(buffer.NewEdit(r, base)); err != nil {
			return err
		}
	}

	return erase(buf, buffer.Range{Start: t.Open.Start, End: inner.Start})
}

func erase(buf Buffer, r buffer.Range) error {
	_, err := buf.ApplyEdit(buffer.NewDelete(r))
	return err
}

func isSpace(s string) bool {
	return s != "" && strings.Trim(s, " \t") == ""
}
