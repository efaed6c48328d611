package buffer

// Reader is the read-only view of a buffer consumed by code that inspects
// text without editing it.
type Reader interface {
	// Len returns the total byte length.
	Len() ByteOffset

	// Substr returns the text in r, clamped to the buffer.
	Substr(r Range) string

	// Line returns the range of the line containing offset, without its newline.
	Line(offset ByteOffset) Range
}

var _ Reader = (*Buffer)(nil)
