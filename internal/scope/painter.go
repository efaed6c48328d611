package scope

import "strings"

// Span assigns a full scope stack to the half-open byte range [Start, End).
type Span struct {
	Start  int64
	End    int64
	Scopes Stack
}

// Painting is the result of painting a text. Spans may nest; an inner span
// always appears after the span that encloses it.
type Painting struct {
	Base  Stack
	Spans []Span
}

// At returns the scope stack of the character at pt. Offsets not covered by
// any span, including the end of the text, carry the base scope.
func (p Painting) At(pt int64) Stack {
	for i := len(p.Spans) - 1; i >= 0; i-- {
		s := p.Spans[i]
		if s.Start <= pt && pt < s.End {
			return s.Scopes
		}
	}
	return p.Base
}

// Painter derives scope spans from source text.
type Painter interface {
	Paint(src string) Painting
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(src string) Painting

// Paint calls f(src).
func (f PainterFunc) Paint(src string) Painting {
	return f(src)
}

// Static paints a fixed base scope plus explicit spans regardless of text.
type Static struct {
	Base  Stack
	Spans []Span
}

// Paint returns the static painting.
func (s Static) Paint(string) Painting {
	return Painting{Base: s.Base, Spans: s.Spans}
}

// ForSyntax returns the painter for a syntax name such as "html" or "css".
// Unknown syntaxes get a Static painter with a "text.plain" base.
func ForSyntax(syntax string) Painter {
	switch strings.ToLower(syntax) {
	case "html", "htm", "xhtml", "xml":
		return HTML{}
	case "css", "scss", "less":
		return CSS{}
	default:
		return Static{Base: Stack{"text.plain"}}
	}
}

// canvas collects spans while a painter walks its text.
type canvas struct {
	offset int64
	spans  []Span
}

// paint appends a span for src[start:end] and returns its index.
func (c *canvas) paint(start, end int, stack Stack, names ...string) int {
	c.spans = append(c.spans, Span{
		Start:  c.offset + int64(start),
		End:    c.offset + int64(end),
		Scopes: stack.Push(names...),
	})
	return len(c.spans) - 1
}

// close sets the end of a span reserved earlier with paint.
func (c *canvas) close(idx, end int) {
	c.spans[idx].End = c.offset + int64(end)
}

// unclosed is the end offset given to constructs that run off the end of the
// text, so the end of text inherits their scope.
func unclosed(src string) int {
	return len(src) + 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
