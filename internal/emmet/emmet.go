package emmet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// Errors returned by expansion.
var (
	ErrEmptyExpansion = errors.New("abbreviation expands to nothing")
	ErrScriptMissing  = errors.New("script does not define expand")
	ErrEngineClosed   = errors.New("expansion engine is closed")
)

// Type selects the abbreviation grammar.
type Type string

// Abbreviation types.
const (
	Markup     Type = "markup"
	Stylesheet Type = "stylesheet"
)

// Options is the configuration snapshot an abbreviation is parsed under.
type Options struct {
	Type   Type
	Syntax string
}

// IsStylesheet reports whether the options select stylesheet abbreviations.
func (o Options) IsStylesheet() bool {
	return o.Type == Stylesheet
}

// Extraction is an abbreviation found in a document.
type Extraction struct {
	Range        buffer.Range
	Abbreviation string
	Options      Options
}

// ParseError reports abbreviation text that does not expand.
type ParseError struct {
	Abbreviation string
	Pos          int // byte offset into Abbreviation, -1 when unknown
	Msg          string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("abbreviation %q: %s", e.Abbreviation, e.Msg)
	}
	return fmt.Sprintf("abbreviation %q: %s at %d", e.Abbreviation, e.Msg, e.Pos)
}

// Pointer returns a marker line such as "---^" pointing at Pos.
func (e *ParseError) Pointer() string {
	if e.Pos < 0 {
		return ""
	}
	return strings.Repeat("-", e.Pos) + "^"
}

// ScriptError reports a failure inside the expansion script itself.
type ScriptError struct {
	Func string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Func, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Document is the view of an editor buffer that extraction works on.
type Document interface {
	buffer.Reader
	Match(pt buffer.ByteOffset, expr string) bool
}

// Expander turns abbreviation text into a snippet.
type Expander interface {
	Expand(abbr string, opts Options) (string, error)
}

// Engine is the abbreviation toolkit consumed by marker tracking.
type Engine interface {
	Expander

	// Extract finds the abbreviation ending at or containing pt on its line.
	Extract(doc Document, pt buffer.ByteOffset) (Extraction, bool)

	// Context returns the options abbreviations at pt are parsed under, or
	// false when pt accepts no abbreviations.
	Context(doc Document, pt buffer.ByteOffset) (Options, bool)
}

// Toolkit combines an Expander with line extraction and scope-based context
// detection.
type Toolkit struct {
	Expander
	Extractor LineExtractor
}

// NewToolkit creates a toolkit around exp.
func NewToolkit(exp Expander) *Toolkit {
	return &Toolkit{Expander: exp}
}

var _ Engine = (*Toolkit)(nil)

// Context selectors, checked in order.
const (
	stylesheetSelector = "source.css | source.scss | source.less | source.sass"
	markupSelector     = "text.html | text.xml"
)

// Context implements Engine.
func (t *Toolkit) Context(doc Document, pt buffer.ByteOffset) (Options, bool) {
	switch {
	case doc.Match(pt, stylesheetSelector):
		syntax := "css"
		for _, s := range []string{"scss", "less", "sass"} {
			if doc.Match(pt, "source."+s) {
				syntax = s
			}
		}
		return Options{Type: Stylesheet, Syntax: syntax}, true
	case doc.Match(pt, markupSelector):
		syntax := "html"
		if doc.Match(pt, "text.xml") {
			syntax = "xml"
		}
		return Options{Type: Markup, Syntax: syntax}, true
	default:
		return Options{}, false
	}
}

// Extract implements Engine.
func (t *Toolkit) Extract(doc Document, pt buffer.ByteOffset) (Extraction, bool) {
	r, text, ok := t.Extractor.Extract(doc, pt)
	if !ok {
		return Extraction{}, false
	}
	opts, ok := t.Context(doc, r.Start)
	if !ok {
		return Extraction{}, false
	}
	return Extraction{Range: r, Abbreviation: text, Options: opts}, true
}

// IsSimpleMarkup reports whether a markup abbreviation produces a single
// element without children, such as "div" or "a.link[href]". Previews of
// such abbreviations add little over the text itself.
func IsSimpleMarkup(abbr string) bool {
	if abbr == "" {
		return true
	}
	c := abbr[0]
	if !isLetter(c) && c != '.' && c != '#' && c != '[' && c != '{' {
		return false
	}

	var depth int
	var quote byte
	for i := 0; i < len(abbr); i++ {
		c := abbr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case depth > 0 && (c == '"' || c == '\''):
			quote = c
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (c == '>' || c == '+' || c == '^' || c == '('):
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
