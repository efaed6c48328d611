package buffer

import (
	"errors"
	"maps"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// ID uniquely identifies a buffer for the lifetime of the process.
type ID uuid.UUID

// NewID generates a new random buffer ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// String returns the canonical string form of the ID.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// RevisionID identifies a buffer revision.
// Each modification to the buffer creates a new revision.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

// Buffer holds editable text plus named regions anchored to it.
type Buffer struct {
	mu         sync.RWMutex
	id         ID
	name       string
	text       string
	lineStarts []ByteOffset // nil when stale
	regions    map[string]Range
	revisionID RevisionID
	tabWidth   int
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		id:         NewID(),
		regions:    make(map[string]Range),
		revisionID: NewRevisionID(),
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
// Line endings are normalized to LF.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.text = normalizeLineEndings(s)
	return b
}

func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Read Operations

// ID returns the buffer identity.
func (b *Buffer) ID() ID {
	return b.id
}

// Name returns the display name of the buffer.
func (b *Buffer) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// Substr returns the text in the given range, clamped to the buffer.
func (b *Buffer) Substr(r Range) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r = r.Clamp(ByteOffset(len(b.text)))
	if r.Start >= r.End {
		return ""
	}
	return b.text[r.Start:r.End]
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 || offset >= ByteOffset(len(b.text)) {
		return 0, false
	}
	return b.text[offset], true
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lineIndexLocked())
}

// Line returns the range of the line containing offset, without its newline.
func (b *Buffer) Line(offset ByteOffset) Range {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lineLocked(offset)
}

// LineAt returns the range of the given 0-indexed line, without its newline.
func (b *Buffer) LineAt(line int) Range {
	b.mu.Lock()
	defer b.mu.Unlock()
	starts := b.lineIndexLocked()
	if line < 0 || line >= len(starts) {
		return PointRange(ByteOffset(len(b.text)))
	}
	return b.lineRangeLocked(starts, line)
}

// LineNumber returns the 0-indexed line containing offset.
func (b *Buffer) LineNumber(offset ByteOffset) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lineNumberLocked(offset)
}

// Lines returns the ranges of all lines intersecting r, without newlines.
func (b *Buffer) Lines(r Range) []Range {
	b.mu.Lock()
	defer b.mu.Unlock()

	starts := b.lineIndexLocked()
	first := b.lineNumberLocked(r.Start)
	last := b.lineNumberLocked(r.End)

	lines := make([]Range, 0, last-first+1)
	for n := first; n <= last; n++ {
		lines = append(lines, b.lineRangeLocked(starts, n))
	}
	return lines
}

// IndentAt returns the leading whitespace of the line containing offset.
func (b *Buffer) IndentAt(offset ByteOffset) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := b.lineLocked(offset)
	pos := line.Start
	for pos < line.End && isSpace(b.text[pos]) {
		pos++
	}
	return b.text[line.Start:pos]
}

// NarrowToNonSpace trims whitespace from both edges of r.
// Returns false if r contains nothing but whitespace.
func (b *Buffer) NarrowToNonSpace(r Range) (Range, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r = r.Clamp(ByteOffset(len(b.text)))
	start, end := r.Start, r.End
	for start < end && isSpaceOrNewline(b.text[start]) {
		start++
	}
	for end > start && isSpaceOrNewline(b.text[end-1]) {
		end--
	}
	if start == end {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	change, err := b.ApplyEdit(NewInsert(offset, text))
	if err != nil {
		return 0, err
	}
	return change.NewRange.End, nil
}

// Erase removes the text in the given range.
func (b *Buffer) Erase(r Range) error {
	_, err := b.ApplyEdit(NewDelete(r))
	return err
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(r Range, text string) (ByteOffset, error) {
	change, err := b.ApplyEdit(NewEdit(r, text))
	if err != nil {
		return 0, err
	}
	return change.NewRange.End, nil
}

// ApplyEdit applies a single edit, moves named regions and returns the
// resulting change.
func (b *Buffer) ApplyEdit(edit Edit) (Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := ByteOffset(len(b.text))
	if edit.Range.Start < 0 || edit.Range.Start > size {
		return Change{}, ErrOffsetOutOfRange
	}
	if !edit.Range.IsValid() || edit.Range.End > size {
		return Change{}, ErrRangeInvalid
	}

	edit.NewText = normalizeLineEndings(edit.NewText)
	oldText := b.text[edit.Range.Start:edit.Range.End]
	b.text = b.text[:edit.Range.Start] + edit.NewText + b.text[edit.Range.End:]
	b.lineStarts = nil
	b.revisionID = NewRevisionID()

	for key, r := range b.regions {
		b.regions[key] = TransformRegion(r, edit)
	}

	return Change{
		Range:    edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: edit.Range.Start + ByteOffset(len(edit.NewText))},
		OldText:  oldText,
		NewText:  edit.NewText,
	}, nil
}

// Named Regions

// AddRegion stores r under key, replacing any previous region.
func (b *Buffer) AddRegion(key string, r Range) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regions[key] = r.Clamp(ByteOffset(len(b.text)))
}

// Region returns the region stored under key.
func (b *Buffer) Region(key string) (Range, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.regions[key]
	return r, ok
}

// EraseRegion removes the region stored under key. Missing keys are ignored.
func (b *Buffer) EraseRegion(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.regions, key)
}

// Regions returns a copy of all named regions.
func (b *Buffer) Regions() map[string]Range {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.regions)
}

// RestoreRegions replaces all named regions with the given set.
func (b *Buffer) RestoreRegions(regions map[string]Range) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regions = make(map[string]Range, len(regions))
	for key, r := range regions {
		b.regions[key] = r.Clamp(ByteOffset(len(b.text)))
	}
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// Line index helpers. Callers must hold mu for writing.

func (b *Buffer) lineIndexLocked() []ByteOffset {
	if b.lineStarts != nil {
		return b.lineStarts
	}
	starts := []ByteOffset{0}
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	b.lineStarts = starts
	return starts
}

func (b *Buffer) lineNumberLocked(offset ByteOffset) int {
	starts := b.lineIndexLocked()
	offset = max(0, min(offset, ByteOffset(len(b.text))))
	// First line whose start is beyond offset, minus one.
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}

func (b *Buffer) lineLocked(offset ByteOffset) Range {
	return b.lineRangeLocked(b.lineIndexLocked(), b.lineNumberLocked(offset))
}

func (b *Buffer) lineRangeLocked(starts []ByteOffset, n int) Range {
	start := starts[n]
	end := ByteOffset(len(b.text))
	if n+1 < len(starts) {
		end = starts[n+1] - 1
	}
	return Range{Start: start, End: end}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '\v'
}

func isSpaceOrNewline(c byte) bool {
	return isSpace(c) || c == '\n' || c == '\r'
}
