package scope

import (
	"sync"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// Querier tests whether the scope at an offset matches a selector expression.
type Querier interface {
	Match(pt buffer.ByteOffset, expr string) bool
}

var _ Querier = (*Matcher)(nil)

// Matcher answers scope queries against a live document. Paintings are
// cached until the document text changes and compiled selectors are cached
// for the life of the matcher.
type Matcher struct {
	mu sync.Mutex

	doc     buffer.Reader
	painter Painter

	src       string
	painting  Painting
	painted   bool
	selectors map[string]Selector
}

// NewMatcher creates a matcher over doc.
func NewMatcher(doc buffer.Reader, painter Painter) *Matcher {
	if painter == nil {
		painter = Static{Base: Stack{"text.plain"}}
	}
	return &Matcher{
		doc:       doc,
		painter:   painter,
		selectors: make(map[string]Selector),
	}
}

// ScopeAt returns the scope stack of the character at pt.
func (m *Matcher) ScopeAt(pt buffer.ByteOffset) Stack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paintingLocked().At(pt)
}

// Match reports whether the scope at pt matches expr. Malformed
// expressions never match.
func (m *Matcher) Match(pt buffer.ByteOffset, expr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel, ok := m.selectors[expr]
	if !ok {
		var err error
		sel, err = Compile(expr)
		if err != nil {
			sel = nil
		}
		m.selectors[expr] = sel
	}
	if sel == nil {
		return false
	}
	return sel.Matches(m.paintingLocked().At(pt))
}

func (m *Matcher) paintingLocked() Painting {
	src := m.doc.Substr(buffer.Range{Start: 0, End: m.doc.Len()})
	if !m.painted || src != m.src {
		m.src = src
		m.painting = m.painter.Paint(src)
		m.painted = true
	}
	return m.painting
}
