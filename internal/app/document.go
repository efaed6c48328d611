package app

import (
	"go.uber.org/zap"

	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
	"github.com/dshills/abbrmark/internal/marker"
	"github.com/dshills/abbrmark/internal/preview"
	"github.com/dshills/abbrmark/internal/scope"
	"github.com/dshills/abbrmark/internal/tracker"
)

// Document is an open buffer with its selections, history and tracking
// session.
type Document struct {
	editor  *Editor
	eng     *engine.Engine
	syntax  string
	matcher *scope.Matcher
	session *tracker.Session
	policy  *preview.Policy
	preview *previewRecorder

	completions []tracker.Completion
}

var (
	_ emmet.Document = (*Document)(nil)
	_ tracker.Host   = (*Document)(nil)
)

type documentConfig struct {
	name   string
	syntax string
	caret  buffer.ByteOffset
	widget bool
}

// DocumentOption configures a document when it is opened.
type DocumentOption func(*documentConfig)

// WithSyntax sets the syntax the document is painted with, such as
// "html" or "css".
func WithSyntax(syntax string) DocumentOption {
	return func(c *documentConfig) { c.syntax = syntax }
}

// WithName sets the display name.
func WithName(name string) DocumentOption {
	return func(c *documentConfig) { c.name = name }
}

// WithCaret places the initial caret.
func WithCaret(pt buffer.ByteOffset) DocumentOption {
	return func(c *documentConfig) { c.caret = pt }
}

// AsWidget opens the document as an auxiliary input panel that never
// tracks abbreviations.
func AsWidget() DocumentOption {
	return func(c *documentConfig) { c.widget = true }
}

func newDocument(ed *Editor, text string, opts ...DocumentOption) *Document {
	dc := documentConfig{name: "untitled", syntax: "html"}
	for _, opt := range opts {
		opt(&dc)
	}
	cfg := ed.Config()

	d := &Document{
		editor: ed,
		eng: engine.New(
			engine.WithContent(text),
			engine.WithName(dc.name),
			engine.WithTabWidth(cfg.Editor.TabWidth),
		),
		syntax: dc.syntax,
	}
	d.eng.MoveTo(dc.caret)
	d.matcher = scope.NewMatcher(d.eng.Buffer(), scope.ForSyntax(dc.syntax))
	d.preview = &previewRecorder{next: ed.preview}
	d.policy = preview.NewPolicy(cfg.Abbreviation.PreviewTypes(), d.preview)

	ed.registry.Open(d.ID(), d.eng.Buffer())
	classifier := tracker.NewClassifier(d, ed.toolkit,
		tracker.WithBounds(cfg.Abbreviation.Checker()),
		tracker.WithAutoMark(cfg.Abbreviation.AutoMarkTypes()),
	)
	sessionOpts := []tracker.SessionOption{
		tracker.WithHost(d),
		tracker.WithPreview(d.policy),
		tracker.WithLogger(ed.logger.With(zap.String("document", dc.name))),
	}
	if dc.widget {
		sessionOpts = append(sessionOpts, tracker.AsWidget())
	}
	d.session = tracker.NewSession(d.ID(), classifier, ed.registry, sessionOpts...)
	return d
}

// ID returns the buffer identity.
func (d *Document) ID() buffer.ID { return d.eng.ID() }

// Name returns the display name.
func (d *Document) Name() string { return d.eng.Buffer().Name() }

// Syntax returns the syntax name.
func (d *Document) Syntax() string { return d.syntax }

// Engine returns the editing engine.
func (d *Document) Engine() *engine.Engine { return d.eng }

// Session returns the tracking session.
func (d *Document) Session() *tracker.Session { return d.session }

// Text returns the document content.
func (d *Document) Text() string { return d.eng.Text() }

// Caret returns the primary caret.
func (d *Document) Caret() buffer.ByteOffset { return d.eng.Caret() }

// Selections returns all selections.
func (d *Document) Selections() []cursor.Selection { return d.eng.Selections() }

// Len implements buffer.Reader.
func (d *Document) Len() buffer.ByteOffset { return d.eng.Len() }

// Substr implements buffer.Reader.
func (d *Document) Substr(r buffer.Range) string { return d.eng.Substr(r) }

// Line implements buffer.Reader.
func (d *Document) Line(pt buffer.ByteOffset) buffer.Range { return d.eng.Line(pt) }

// Match implements emmet.Document.
func (d *Document) Match(pt buffer.ByteOffset, expr string) bool {
	return d.matcher.Match(pt, expr)
}

// ScopeAt returns the scope stack at pt.
func (d *Document) ScopeAt(pt buffer.ByteOffset) scope.Stack {
	return d.matcher.ScopeAt(pt)
}

// Marker returns the attached abbreviation marker.
func (d *Document) Marker() (marker.Marker, bool) { return d.session.Marker() }

// Preview returns what the document's preview currently shows.
func (d *Document) Preview() PreviewState { return d.preview.state }

// Completions returns the completions offered by the last auto_complete.
func (d *Document) Completions() []tracker.Completion {
	return append([]tracker.Completion(nil), d.completions...)
}

// QueryContext answers a keybinding context query for the current
// selections.
func (d *Document) QueryContext(key string) (value, handled bool) {
	return d.session.QueryContext(key, d.Selections())
}

// ReplaceWithSnippet implements tracker.Host. Tab stop markers are
// stripped and the first stop is selected.
func (d *Document) ReplaceWithSnippet(r buffer.Range, snippet string) error {
	text, fields := emmet.PlainSnippet(snippet)
	return d.eng.Edit("snippet", func() error {
		if _, err := d.eng.Replace(r, text); err != nil {
			return err
		}
		off, n := emmet.FirstStop(text, fields)
		start := r.Start + buffer.ByteOffset(off)
		d.eng.SetSelections(cursor.NewSelection(start, start+buffer.ByteOffset(n)))
		d.session.Modified(d.Caret())
		return nil
	})
}

// edited reports a text change and the caret it left to the session.
func (d *Document) edited() {
	caret := d.Caret()
	d.session.Modified(caret)
	d.session.SelectionModified(caret)
}
