package tracker

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
	"github.com/dshills/abbrmark/internal/marker"
)

// editor is a minimal host: it edits a buffer and reports to a session the
// way an editor event loop would.
type editor struct {
	t        *testing.T
	doc      testDoc
	caret    buffer.ByteOffset
	registry *marker.Registry
	session  *Session
	previews *previewLog
	replaced int
}

type previewLog struct {
	shown  []string
	hidden int
}

func (p *previewLog) Toggle(m marker.Marker, _ buffer.ByteOffset, _ bool) {
	p.shown = append(p.shown, m.Abbreviation())
}

func (p *previewLog) Hide() { p.hidden++ }

func newEditor(t *testing.T, text, syntax string, opts ...SessionOption) *editor {
	t.Helper()
	e := &editor{t: t, doc: newTestDoc(text, syntax), previews: &previewLog{}}
	e.registry = marker.NewRegistry("")
	e.registry.Open(e.doc.ID(), e.doc.Buffer)

	cls := NewClassifier(e.doc, newEngine(t))
	opts = append([]SessionOption{WithHost(e), WithPreview(e.previews)}, opts...)
	e.session = NewSession(e.doc.ID(), cls, e.registry, opts...)
	e.session.Activated(0)
	return e
}

// typeText inserts text one character at a time at the caret.
func (e *editor) typeText(s string) {
	e.t.Helper()
	for i := 0; i < len(s); i++ {
		if _, err := e.doc.Insert(e.caret, s[i:i+1]); err != nil {
			e.t.Fatalf("insert failed: %v", err)
		}
		e.caret++
		e.session.Modified(e.caret)
		e.session.SelectionModified(e.caret)
	}
}

func (e *editor) moveTo(pt buffer.ByteOffset) {
	e.caret = pt
	e.session.SelectionModified(pt)
}

func (e *editor) ReplaceWithSnippet(r buffer.Range, snippet string) error {
	e.replaced++
	text, fields := emmet.PlainSnippet(snippet)
	if _, err := e.doc.Replace(r, text); err != nil {
		return err
	}
	off, _ := emmet.FirstStop(text, fields)
	e.caret = r.Start + buffer.ByteOffset(off)
	e.session.Modified(e.caret)
	return nil
}

func (e *editor) abbreviation() string {
	m, ok := e.session.Marker()
	if !ok {
		return ""
	}
	return m.Abbreviation()
}

func TestTypingAndExpanding(t *testing.T) {
	e := newEditor(t, "", "html")

	e.typeText("u")
	if got := e.abbreviation(); got != "u" {
		t.Fatalf("expected marker 'u', got %q", got)
	}
	e.typeText("l")
	if got := e.abbreviation(); got != "ul" {
		t.Fatalf("expected marker 'ul', got %q", got)
	}
	e.typeText(">li*3")
	m, ok := e.session.Marker()
	if !ok || !m.Valid() || m.Abbreviation() != "ul>li*3" {
		t.Fatalf("expected valid 'ul>li*3', got %s", m)
	}
	if m.Region() != buffer.NewRange(0, 7) {
		t.Errorf("expected region [0:7), got %s", m.Region())
	}

	if err := e.session.Expand(e.caret); err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	want := "<ul>\n\t<li></li>\n\t<li></li>\n\t<li></li>\n</ul>"
	if got := e.doc.Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if e.caret != 10 {
		t.Errorf("expected caret at first tab stop 10, got %d", e.caret)
	}
	if _, ok := e.session.Marker(); ok {
		t.Error("expected no marker after expand")
	}
	if _, ok := e.registry.Region(e.doc.ID()); ok {
		t.Error("expected no persisted region after expand")
	}
	if e.session.LastCaret() != 10 {
		t.Errorf("expected session to follow its own edit, got %d", e.session.LastCaret())
	}
}

func TestOutsideEditDisposes(t *testing.T) {
	e := newEditor(t, "\n<p>x </p>", "html")

	e.typeText("ul")
	if e.abbreviation() != "ul" {
		t.Fatalf("expected marker 'ul', got %q", e.abbreviation())
	}

	e.moveTo(8)
	e.typeText(" ")
	if _, ok := e.session.Marker(); ok {
		t.Fatal("expected edit outside the region to dispose the marker")
	}

	for _, pt := range []buffer.ByteOffset{9, 3} {
		if items := e.session.QueryCompletions(pt); len(items) != 0 {
			t.Errorf("expected no completions at %d, got %+v", pt, items)
		}
	}
}

func TestInvalidMarkerNeverExpands(t *testing.T) {
	e := newEditor(t, "", "html")
	e.typeText("ul>")

	m, ok := e.session.Marker()
	if !ok || m.Status() != marker.Invalid {
		t.Fatalf("expected invalid marker, got %s", m)
	}
	if items := e.session.QueryCompletions(3); len(items) != 0 {
		t.Errorf("expected no completions for invalid marker, got %+v", items)
	}
	if err := e.session.Expand(3); err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if e.replaced != 0 {
		t.Errorf("expected no replacement, got %d", e.replaced)
	}
	if e.doc.Text() != "ul>" {
		t.Errorf("expected text untouched, got %q", e.doc.Text())
	}
	if _, ok := e.session.Marker(); ok {
		t.Error("expected expand to consume the marker")
	}
}

func TestCaretMovesKeepRegion(t *testing.T) {
	e := newEditor(t, " p", "html")
	e.typeText("ul>li")
	m, _ := e.session.Marker()
	region := m.Region()

	for _, pt := range []buffer.ByteOffset{0, 3, 5, 6, 7, 2, 5} {
		e.moveTo(pt)
		got, ok := e.session.Marker()
		if !ok || got.Region() != region {
			t.Fatalf("caret move to %d changed the marker: %s", pt, got)
		}
	}
	if len(e.previews.shown) == 0 || e.previews.hidden == 0 {
		t.Errorf("expected previews to be shown and hidden, got %+v", e.previews)
	}
}

func TestCompletionCommit(t *testing.T) {
	e := newEditor(t, "<div>ul>li</div>", "html")
	e.moveTo(10)

	items := e.session.QueryCompletions(10)
	if len(items) != 1 {
		t.Fatalf("expected one completion, got %d", len(items))
	}

	e.session.PreCommand(CommandCommitCompletion)
	if _, ok := e.session.Marker(); ok {
		t.Fatal("expected commit to dispose the marker first")
	}
	err := e.session.Quiet(func() error {
		return e.ReplaceWithSnippet(items[0].Range, items[0].Snippet)
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if got := e.doc.Text(); got != "<div><ul>\n\t<li></li>\n</ul></div>" {
		t.Errorf("unexpected text %q", got)
	}
	if _, ok := e.session.Marker(); ok {
		t.Error("expected no marker after commit")
	}
}

func TestWidgetSessionIgnoresTyping(t *testing.T) {
	e := newEditor(t, "", "html", AsWidget())
	e.typeText("ul")
	if _, ok := e.session.Marker(); ok {
		t.Error("expected widget buffer not to track abbreviations")
	}
}

func TestWidgetSessionIgnoresCommands(t *testing.T) {
	e := newEditor(t, "ul", "html", AsWidget())
	e.doc.AddRegion(marker.DefaultRegionKey, buffer.NewRange(0, 2))

	e.session.PostCommand(CommandUndo, 2)
	if _, ok := e.session.Marker(); ok {
		t.Error("expected widget buffer not to restore a marker")
	}
	if err := e.session.Force(buffer.NewRange(0, 2), 2); err != nil {
		t.Fatalf("force failed: %v", err)
	}
	if _, ok := e.session.Marker(); ok {
		t.Error("expected widget buffer not to start a forced marker")
	}
	if items := e.session.QueryCompletions(2); items != nil {
		t.Errorf("expected no completions in a widget, got %+v", items)
	}
}

func TestRegionLossDropsMarker(t *testing.T) {
	e := newEditor(t, "", "html")
	e.typeText("u")
	if e.abbreviation() != "u" {
		t.Fatalf("expected marker 'u', got %q", e.abbreviation())
	}

	// What an undo of the keystroke does to the buffer.
	if err := e.doc.Erase(buffer.NewRange(0, 1)); err != nil {
		t.Fatalf("erase failed: %v", err)
	}
	e.doc.RestoreRegions(nil)
	e.caret = 0
	e.session.PostCommand(CommandUndo, 0)

	if _, ok := e.session.Marker(); ok {
		t.Fatal("expected the marker to go with its region")
	}
	for _, key := range []string{ContextAbbreviation, ContextHasMarker} {
		if v, _ := e.session.QueryContext(key, []cursor.Selection{cursor.NewCursorSelection(0)}); v {
			t.Errorf("expected %s to be false", key)
		}
	}
	if err := e.session.Expand(0); err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if e.doc.Text() != "" || e.replaced != 0 {
		t.Errorf("expected expand to do nothing, got %q after %d replacements", e.doc.Text(), e.replaced)
	}
}

func TestCaretReturnRestoresMarker(t *testing.T) {
	e := newEditor(t, "", "html")
	e.typeText("ul>li")
	e.typeText("\n")
	if _, ok := e.session.Marker(); ok {
		t.Fatal("expected the new line to end tracking")
	}

	e.moveTo(3)
	m, ok := e.session.Marker()
	if !ok || m.Abbreviation() != "ul>li" || m.Region() != buffer.NewRange(0, 5) {
		t.Fatalf("expected 'ul>li' at [0:5) to come back, got %s", m)
	}
	if err := e.session.Expand(e.caret); err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if got := e.doc.Text(); got != "<ul>\n\t<li></li>\n</ul>\n" {
		t.Errorf("unexpected text %q", got)
	}

	// An expansion never comes back.
	e.moveTo(0)
	if _, ok := e.session.Marker(); ok {
		t.Error("expected no marker after moving over the expansion")
	}
}

func TestForcedAbbreviation(t *testing.T) {
	e := newEditor(t, "a", "html")
	e.moveTo(1)

	// Typing right after a word never starts a marker on its own.
	if err := e.session.Force(buffer.PointRange(1), 1); err != nil {
		t.Fatalf("force failed: %v", err)
	}
	if v, _ := e.session.QueryContext(ContextHasMarker, nil); !v {
		t.Fatal("expected an empty forced marker")
	}

	e.typeText("ul")
	m, ok := e.session.Marker()
	if !ok || !m.Forced() || m.Abbreviation() != "ul" || m.Region() != buffer.NewRange(1, 3) {
		t.Fatalf("expected forced 'ul' at [1:3), got %s", m)
	}

	if err := e.session.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := e.doc.Text(); got != "a" {
		t.Errorf("expected cancel to erase the forced text, got %q", got)
	}
	if _, ok := e.session.Marker(); ok {
		t.Error("expected no marker after cancel")
	}
}

func TestQueryContext(t *testing.T) {
	e := newEditor(t, "", "html")

	if v, handled := e.session.QueryContext(ContextHasMarker, nil); v || !handled {
		t.Errorf("expected a handled false answer, got %v %v", v, handled)
	}
	e.typeText("ul")

	sels := []cursor.Selection{cursor.NewCursorSelection(2)}
	if v, _ := e.session.QueryContext(ContextAbbreviation, sels); !v {
		t.Error("expected caret inside the abbreviation")
	}
	if v, _ := e.session.QueryContext(ContextAbbreviation, []cursor.Selection{cursor.NewSelection(0, 3)}); v {
		t.Error("expected selection past the region not to count")
	}
	if v, _ := e.session.QueryContext(ContextHasMarker, nil); !v {
		t.Error("expected marker")
	}
	if _, handled := e.session.QueryContext("other", nil); handled {
		t.Error("expected unknown key not to be handled")
	}
}

func TestSessionClose(t *testing.T) {
	e := newEditor(t, "", "html")
	e.typeText("ul")
	e.session.Close()
	e.session.Close()

	if _, ok := e.session.Marker(); ok {
		t.Error("expected close to dispose the marker")
	}
	if _, ok := e.doc.Region(marker.DefaultRegionKey); ok {
		t.Error("expected close to erase the region")
	}
}

func TestSessionLogsTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := newEditor(t, "", "html", WithLogger(zap.New(core)))
	e.typeText("u")

	entries := logs.FilterMessage("tracker transition").All()
	if len(entries) == 0 {
		t.Fatal("expected transition logs")
	}
	var sawAttach bool
	for _, entry := range entries {
		fields := entry.ContextMap()
		if fields["event"] != "text-modified" {
			continue
		}
		for _, kind := range fields["commands"].([]interface{}) {
			if kind == "attach" {
				sawAttach = true
			}
		}
	}
	if !sawAttach {
		t.Error("expected a text-modified transition with an attach command")
	}
}

func TestReplaceWithoutHost(t *testing.T) {
	doc := newTestDoc("ul", "html")
	reg := marker.NewRegistry("")
	reg.Open(doc.ID(), doc.Buffer)
	eng := newEngine(t)
	reg.Attach(doc.ID(), marker.Create(doc, eng, buffer.NewRange(0, 2)))

	s := NewSession(doc.ID(), NewClassifier(doc, eng), reg)
	if err := s.Expand(2); err == nil {
		t.Error("expected an error without a host")
	}
	if _, ok := s.Marker(); ok {
		t.Error("expected marker to be disposed anyway")
	}
}
