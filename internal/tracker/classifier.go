// Package tracker follows the user typing abbreviations.
//
// A Classifier is a pure state machine: Step takes the state of one buffer
// and an event, and returns the next state plus the commands to run. A
// Session binds a classifier to a live buffer, runs the commands against the
// marker registry, the preview and the host, and filters events the
// classifier should not see.
package tracker

import (
	"github.com/dshills/abbrmark/internal/bounds"
	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
)

// completionAnnotation labels completion entries.
const completionAnnotation = "Emmet"

// State is what the classifier knows about one buffer.
type State struct {
	// LastCaret is the caret before the event being classified.
	LastCaret buffer.ByteOffset
	// Marker is the attached marker, with its region as of now.
	Marker *marker.Marker
	// Persisted is the persisted marker region, if the buffer has one.
	Persisted *buffer.Range
	// Stored is the marker last disposed by an edit elsewhere. It comes
	// back when the caret returns to its unchanged text.
	Stored *marker.Marker
}

// Classifier computes marker transitions for one document.
type Classifier struct {
	doc      emmet.Document
	engine   emmet.Engine
	bounds   *bounds.Checker
	autoMark emmet.TypeSet
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithBounds sets the context checker used by marking triggers.
func WithBounds(c *bounds.Checker) Option {
	return func(cl *Classifier) {
		if c != nil {
			cl.bounds = c
		}
	}
}

// WithAutoMark limits typing-triggered marking to the given types.
func WithAutoMark(types emmet.TypeSet) Option {
	return func(cl *Classifier) {
		cl.autoMark = types
	}
}

// NewClassifier creates a classifier over doc. Typing marks every
// abbreviation type unless WithAutoMark says otherwise.
func NewClassifier(doc emmet.Document, eng emmet.Engine, opts ...Option) *Classifier {
	c := &Classifier{
		doc:      doc,
		engine:   eng,
		bounds:   bounds.NewChecker(),
		autoMark: emmet.AllTypes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// transition accumulates the result of a step.
type transition struct {
	state State
	cmds  []Command
}

func (t *transition) emit(c Command) {
	t.cmds = append(t.cmds, c)
}

func (t *transition) attach(m marker.Marker) {
	t.state.Marker = &m
	t.emit(Attach{Marker: m})
}

// dispose detaches the marker and keeps it for a later re-entry.
func (t *transition) dispose() {
	if m := t.state.Marker; m != nil && m.Abbreviation() != "" {
		stored := *m
		t.state.Stored = &stored
	}
	t.state.Marker = nil
	t.state.Persisted = nil
	t.emit(Dispose{})
}

// discard detaches the marker and forgets the stored one.
func (t *transition) discard() {
	t.state.Marker = nil
	t.state.Persisted = nil
	t.state.Stored = nil
	t.emit(Dispose{})
}

func (t *transition) show(m marker.Marker, caret buffer.ByteOffset) {
	t.emit(ShowPreview{Marker: m, Caret: caret, Block: m.IsStylesheet()})
}

func (t *transition) result() (State, []Command) {
	return t.state, t.cmds
}

// Step applies ev to s.
func (c *Classifier) Step(s State, ev Event) (State, []Command) {
	t := &transition{state: s}
	switch ev := ev.(type) {
	case Activated:
		t.state.LastCaret = ev.Caret
	case CaretMoved:
		c.caretMoved(t, ev.Caret)
	case TextModified:
		c.textModified(t, ev.Caret)
	case CompletionQuery:
		c.completionQuery(t, ev.Caret)
	case PreCommand:
		if ev.Name == CommandCommitCompletion && s.Marker != nil {
			t.discard()
		}
	case PostCommand:
		if ev.Name == CommandUndo || ev.Name == CommandRedo {
			c.restore(t, ev.Caret)
		}
	case Closed:
		t.state = State{}
		t.emit(Dispose{})
		t.emit(HidePreview{})
	}
	return t.result()
}

func (c *Classifier) caretMoved(t *transition, caret buffer.ByteOffset) {
	moved := caret != t.state.LastCaret
	t.state.LastCaret = caret
	if t.state.Marker == nil && moved {
		c.reenter(t, caret)
	}
	if m := t.state.Marker; m != nil && m.Live() && m.Contains(caret) {
		t.show(*m, caret)
		return
	}
	t.emit(HidePreview{})
}

// reenter attaches the stored marker again when caret is inside it and
// its text is unchanged. Only a caret that moved re-enters; an abbreviation
// equal to its own expansion, such as "#ddd", must not come back right
// after expanding.
func (c *Classifier) reenter(t *transition, caret buffer.ByteOffset) {
	st := t.state.Stored
	if st == nil || !st.Contains(caret) {
		return
	}
	r := st.Region()
	if r.End > c.doc.Len() || c.doc.Substr(r) != st.Abbreviation() {
		return
	}
	// "p" expands to "padding: ;", so a stylesheet abbreviation comes back
	// only when it still ends a word.
	if st.IsStylesheet() && !bounds.IsWordEnd(c.doc, r.End) {
		return
	}
	t.state.Stored = nil
	t.attach(st.Validate(c.doc, c.engine))
}

// textModified classifies an edit by where the caret was before it (prev)
// and after it (next) relative to the marker region.
func (c *Classifier) textModified(t *transition, next buffer.ByteOffset) {
	prev := t.state.LastCaret
	defer func() { t.state.LastCaret = next }()

	canMark := t.state.Marker == nil
	if cur := t.state.Marker; cur != nil {
		m := cur.Validate(c.doc, c.engine)
		t.state.Marker = &m
		region := m.Region()
		if !m.Live() {
			t.dispose()
			return
		}

		prevInside, nextInside := m.Contains(prev), m.Contains(next)
		switch {
		case prevInside && nextInside:
			t.attach(m)
		case prevInside && m.Forced():
			c.attachOrDispose(t, m.Update(c.doc, c.engine, region.Start, max(next, region.End)))
		case prevInside:
			// Typing past the tail. The host may have auto-inserted closing
			// punctuation, so derive the abbreviation from the line again.
			x, ok := c.engine.Extract(c.doc, next)
			if !ok {
				t.dispose()
				break
			}
			c.attachOrDispose(t, m.Update(c.doc, c.engine, x.Range.Start, x.Range.End))
		case nextInside && next > prev:
			// Typing right before the head.
			c.attachOrDispose(t, m.Update(c.doc, c.engine, prev, region.End))
		case nextInside:
			t.attach(m)
		default:
			t.dispose()
			canMark = true
		}
	}

	if canMark && next > prev {
		if m, ok := c.mark(prev, next); ok {
			t.attach(m)
		}
	}
}

func (c *Classifier) attachOrDispose(t *transition, m marker.Marker) {
	if m.Status() == marker.NotFound && !m.Forced() {
		t.dispose()
		return
	}
	t.attach(m)
}

// mark tests the typing triggers for the text inserted in [prev, next).
func (c *Classifier) mark(prev, next buffer.ByteOffset) (marker.Marker, bool) {
	opts, ok := c.engine.Context(c.doc, next)
	if !ok || !c.autoMark.Has(opts.Type) {
		return marker.Marker{}, false
	}

	started := bounds.IsAbbreviationBound(c.doc, prev) && c.bounds.IsAbbreviationContext(c.doc, next)
	color := c.bounds.IsCSSValueContext(c.doc, next) && bounds.IsCSSColorStart(c.doc, prev, next)
	if !started && !color {
		return marker.Marker{}, false
	}

	m, ok := marker.FromLine(c.doc, c.engine, next)
	if !ok || m.Status() == marker.NotFound {
		return marker.Marker{}, false
	}
	return m, true
}

func (c *Classifier) completionQuery(t *transition, caret buffer.ByteOffset) {
	if m := t.state.Marker; m != nil && (!m.Live() || !m.Contains(caret)) {
		t.dispose()
	}

	if t.state.Marker == nil && c.bounds.IsAbbreviationContext(c.doc, caret) {
		if m, ok := marker.FromLine(c.doc, c.engine, caret); ok && m.Valid() {
			t.attach(m)
			t.show(m, caret)
		}
	}

	var items []Completion
	if m := t.state.Marker; m != nil && m.Valid() {
		if snippet, err := m.Snippet(); err == nil {
			items = append(items, Completion{
				Abbreviation: m.Abbreviation(),
				Annotation:   completionAnnotation,
				Snippet:      snippet,
				Range:        m.Region(),
			})
		}
	}
	t.emit(Complete{Items: items})
}

// restore rebuilds a marker from the region an undo or redo brought back.
// A marker whose region went away with the edit is dropped.
func (c *Classifier) restore(t *transition, caret buffer.ByteOffset) {
	t.state.LastCaret = caret
	cur := t.state.Marker
	if cur != nil && !cur.Live() {
		t.discard()
		cur = nil
	}
	if t.state.Persisted == nil {
		if cur != nil {
			t.discard()
		}
		return
	}
	r := *t.state.Persisted
	t.state.Persisted = nil
	t.emit(ClearRegion{})

	m := marker.Create(c.doc, c.engine, r)
	if cur != nil && cur.Forced() {
		m = marker.Force(c.doc, c.engine, r)
	}
	if !m.Valid() && !m.Forced() {
		if cur != nil {
			t.discard()
		}
		return
	}
	t.attach(m)
	t.show(m, caret)
}

// Expand consumes the marker under caret. A valid marker is replaced by its
// expansion; the marker is disposed either way. A caret outside the marker
// leaves everything untouched.
func (c *Classifier) Expand(s State, caret buffer.ByteOffset) (State, []Command) {
	t := &transition{state: s}
	m := s.Marker
	if m == nil || !m.Live() || !m.Contains(caret) {
		return t.result()
	}

	if m.Valid() {
		if snippet, err := c.engine.Expand(m.Abbreviation(), m.Options()); err == nil && snippet != "" {
			t.emit(ReplaceRegion{Range: m.Region(), Snippet: snippet})
		}
	}
	t.discard()
	return t.result()
}

// Force starts a forced marker over r, replacing any attached marker. It
// stays attached while empty or invalid.
func (c *Classifier) Force(s State, r buffer.Range, caret buffer.ByteOffset) (State, []Command) {
	t := &transition{state: s}
	t.state.LastCaret = caret
	if s.Marker != nil {
		t.discard()
	}
	m := marker.Force(c.doc, c.engine, r)
	t.attach(m)
	t.show(m, caret)
	return t.result()
}

// Cancel stops tracking. The text of a forced marker is erased; a typed
// marker is kept for re-entry.
func (c *Classifier) Cancel(s State) (State, []Command) {
	t := &transition{state: s}
	m := s.Marker
	switch {
	case m == nil:
	case m.Forced():
		if !m.Region().IsEmpty() {
			t.emit(ReplaceRegion{Range: m.Region()})
		}
		t.discard()
	default:
		t.dispose()
	}
	return t.result()
}
