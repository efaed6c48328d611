package bounds

import (
	"testing"

	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/scope"
)

type testDoc struct {
	*buffer.Buffer
	*scope.Matcher
}

func newTestDoc(text, syntax string) testDoc {
	buf := buffer.NewBufferFromString(text)
	return testDoc{Buffer: buf, Matcher: scope.NewMatcher(buf, scope.ForSyntax(syntax))}
}

func TestIsAbbreviationBound(t *testing.T) {
	tests := []struct {
		name string
		text string
		pt   buffer.ByteOffset
		want bool
	}{
		{"line start", "ul", 0, true},
		{"line end", "ul", 2, false},
		{"after space", "a ul", 2, true},
		{"after word", "a ul", 1, false},
		{"after tag", "<p>ul", 3, true},
		{"after tab", "\tul", 1, true},
		{"space at point", "a  b", 2, false},
		{"next line start", "x\nul", 2, true},
		{"before newline", "x\n", 1, false},
		{"empty buffer", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buffer.NewBufferFromString(tt.text)
			if got := IsAbbreviationBound(buf, tt.pt); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsWordEnd(t *testing.T) {
	tests := []struct {
		name string
		text string
		pt   buffer.ByteOffset
		want bool
	}{
		{"buffer end", "p", 1, true},
		{"space", "p m", 1, true},
		{"semicolon", "p;", 1, true},
		{"newline", "p\n", 1, true},
		{"letter", "padding", 1, false},
		{"colon", "p:", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buffer.NewBufferFromString(tt.text)
			if got := IsWordEnd(buf, tt.pt); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoundCharNeverStartsAbbreviation(t *testing.T) {
	text := "a b\t>c > \t>>x"
	buf := buffer.NewBufferFromString(text)
	for pt := 0; pt < len(text); pt++ {
		switch text[pt] {
		case ' ', '\t', '>':
			if IsAbbreviationBound(buf, buffer.ByteOffset(pt)) {
				t.Errorf("expected no bound at %d (%q)", pt, text[pt])
			}
		}
	}
}

func TestIsAbbreviationContext(t *testing.T) {
	c := NewChecker()

	html := newTestDoc("<p>x</p>", "html")
	if !c.IsAbbreviationContext(html, 3) {
		t.Error("expected tag content to allow marking")
	}
	if c.IsAbbreviationContext(html, 2) {
		t.Error("expected tag end punctuation to disallow marking")
	}
	if !c.IsAbbreviationContext(html, 8) {
		t.Error("expected end of document to allow marking")
	}

	css := newTestDoc("a {\n  p\n}", "css")
	if !c.IsAbbreviationContext(css, 7) {
		t.Error("expected property list to allow marking")
	}
	if c.IsAbbreviationContext(css, 0) {
		t.Error("expected selector to disallow marking")
	}

	plain := newTestDoc("ul", "go")
	if c.IsAbbreviationContext(plain, 2) {
		t.Error("expected plain text to disallow marking")
	}
}

func TestCustomMarkerSelectors(t *testing.T) {
	c := &Checker{MarkerSelectors: []string{"text.plain"}}
	if !c.IsAbbreviationContext(newTestDoc("ul", "go"), 2) {
		t.Error("expected custom selector to allow marking")
	}
}

func TestCSSValueAndColor(t *testing.T) {
	c := NewChecker()
	doc := newTestDoc("a {\n  color: #;\n}", "css")

	if !c.IsCSSValueContext(doc, 13) {
		t.Error("expected value context at 13")
	}
	if !c.IsCSSValueContext(doc, 14) {
		t.Error("expected terminator to count as value context")
	}
	if c.IsCSSValueContext(doc, 6) {
		t.Error("expected property name not to be a value")
	}
	if c.IsAbbreviationContext(doc, 14) {
		t.Error("expected terminator to disallow plain marking")
	}

	if !IsCSSColorStart(doc, 13, 14) {
		t.Error("expected '#' at 13")
	}
	if IsCSSColorStart(doc, 12, 13) || IsCSSColorStart(doc, 13, 15) {
		t.Error("expected only the exact '#' span to be a colour start")
	}
}
