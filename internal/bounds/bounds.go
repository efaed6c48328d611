// Package bounds classifies buffer locations for abbreviation marking.
// Every predicate is pure given the document text and its scopes.
package bounds

import (
	"strings"

	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// Default selectors.
var (
	// DefaultMarkerSelectors are the scopes where typing may start marking.
	DefaultMarkerSelectors = []string{
		"text.html - (entity, punctuation.definition.tag.end)",
		"source.css - meta.selector - meta.property-value - string - punctuation - comment",
	}

	// DefaultCSSValueSelector matches property values.
	DefaultCSSValueSelector = "meta.property-value | punctuation.terminator.rule"
)

// boundChars may precede an abbreviation and never start one.
const boundChars = " \t>"

// Checker holds the selectors the predicates test.
type Checker struct {
	MarkerSelectors  []string
	CSSValueSelector string
}

// NewChecker returns a checker with the default selectors.
func NewChecker() *Checker {
	return &Checker{
		MarkerSelectors:  append([]string(nil), DefaultMarkerSelectors...),
		CSSValueSelector: DefaultCSSValueSelector,
	}
}

// IsAbbreviationContext reports whether marking is permitted at pt: the
// scope at pt matches any marker selector, tried in order.
func (c *Checker) IsAbbreviationContext(doc emmet.Document, pt buffer.ByteOffset) bool {
	for _, sel := range c.MarkerSelectors {
		if doc.Match(pt, sel) {
			return true
		}
	}
	return false
}

// IsCSSValueContext reports whether pt is inside a property value.
func (c *Checker) IsCSSValueContext(doc emmet.Document, pt buffer.ByteOffset) bool {
	return doc.Match(pt, c.CSSValueSelector)
}

// IsCSSColorStart reports whether the text in [begin, end) is exactly "#".
func IsCSSColorStart(doc buffer.Reader, begin, end buffer.ByteOffset) bool {
	return doc.Substr(buffer.NewRange(begin, end)) == "#"
}

// IsAbbreviationBound reports whether an abbreviation may start at pt. The
// character to the left must be the line start or a bound character, and pt
// must not be at the line end nor hold a bound character itself.
func IsAbbreviationBound(doc buffer.Reader, pt buffer.ByteOffset) bool {
	return leftBound(doc, pt) && rightBound(doc, pt)
}

// IsWordEnd reports whether pt ends a word: it is the end of the buffer or
// holds whitespace, '>', ';' or a quote.
func IsWordEnd(doc buffer.Reader, pt buffer.ByteOffset) bool {
	ch := doc.Substr(buffer.NewRange(pt, pt+1))
	return ch == "" || strings.ContainsAny(ch, " \t\r\n\f\v>;\"'")
}

func leftBound(doc buffer.Reader, pt buffer.ByteOffset) bool {
	if doc.Line(pt).Start == pt {
		return true
	}
	return isBoundChar(doc.Substr(buffer.NewRange(pt-1, pt)))
}

func rightBound(doc buffer.Reader, pt buffer.ByteOffset) bool {
	if doc.Line(pt).End == pt {
		return false
	}
	return !isBoundChar(doc.Substr(buffer.NewRange(pt, pt+1)))
}

func isBoundChar(s string) bool {
	return len(s) == 1 && strings.Contains(boundChars, s)
}
