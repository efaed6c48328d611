package scope

import (
	"fmt"
	"strings"
)

// Selector tests scope stacks.
type Selector interface {
	Matches(s Stack) bool
}

// SyntaxError reports a malformed selector expression.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("scope selector %q: %s at %d", e.Expr, e.Msg, e.Pos)
}

// Compile parses a selector expression.
func Compile(expr string) (Selector, error) {
	p := &parser{expr: expr}
	p.next()
	if p.tok.kind == tokEOF {
		return nil, p.errorf("empty selector")
	}
	sel, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return sel, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) Selector {
	sel, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return sel
}

// Selector nodes

type pathSelector []string

func (p pathSelector) Matches(s Stack) bool {
	i := 0
	for _, name := range s {
		if i < len(p) && nameMatches(p[i], name) {
			i++
		}
	}
	return i == len(p)
}

type anySelector []Selector

func (a anySelector) Matches(s Stack) bool {
	for _, sel := range a {
		if sel.Matches(s) {
			return true
		}
	}
	return false
}

type allSelector []Selector

func (a allSelector) Matches(s Stack) bool {
	for _, sel := range a {
		if !sel.Matches(s) {
			return false
		}
	}
	return true
}

type exceptSelector struct {
	base    Selector
	exclude []Selector
}

func (e exceptSelector) Matches(s Stack) bool {
	if !e.base.Matches(s) {
		return false
	}
	for _, sel := range e.exclude {
		if sel.Matches(s) {
			return false
		}
	}
	return true
}

// Tokenizer

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokName
	tokComma
	tokMinus
	tokAmp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	expr string
	pos  int
	tok  token
}

func isNameChar(c byte) bool {
	return c == '.' || c == '_' || c == '*' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) next() {
	for p.pos < len(p.expr) && (p.expr[p.pos] == ' ' || p.expr[p.pos] == '\t') {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.expr) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.expr[p.pos]
	switch c {
	case ',', '|':
		p.pos++
		p.tok = token{kind: tokComma, text: string(c), pos: start}
	case '-':
		p.pos++
		p.tok = token{kind: tokMinus, text: "-", pos: start}
	case '&':
		p.pos++
		p.tok = token{kind: tokAmp, text: "&", pos: start}
	case '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	default:
		if !isNameChar(c) {
			p.pos++
			p.tok = token{kind: tokName, text: string(c), pos: start}
			return
		}
		// A dash right after a name character continues the name, as in
		// "meta.property-value".
		for p.pos < len(p.expr) && (isNameChar(p.expr[p.pos]) || (p.expr[p.pos] == '-' && p.pos > start)) {
			p.pos++
		}
		p.tok = token{kind: tokName, text: p.expr[start:p.pos], pos: start}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.expr, Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

// alt := except (',' except)*
func (p *parser) parseAlt() (Selector, error) {
	first, err := p.parseExcept()
	if err != nil {
		return nil, err
	}
	alts := anySelector{first}
	for p.tok.kind == tokComma {
		p.next()
		sel, err := p.parseExcept()
		if err != nil {
			return nil, err
		}
		alts = append(alts, sel)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return alts, nil
}

// except := all ('-' all)*
func (p *parser) parseExcept() (Selector, error) {
	base, err := p.parseAll()
	if err != nil {
		return nil, err
	}
	var exclude []Selector
	for p.tok.kind == tokMinus {
		p.next()
		sel, err := p.parseAll()
		if err != nil {
			return nil, err
		}
		exclude = append(exclude, sel)
	}
	if len(exclude) == 0 {
		return base, nil
	}
	return exceptSelector{base: base, exclude: exclude}, nil
}

// all := unit ('&' unit)*
func (p *parser) parseAll() (Selector, error) {
	first, err := p.parseUnit()
	if err != nil {
		return nil, err
	}
	all := allSelector{first}
	for p.tok.kind == tokAmp {
		p.next()
		sel, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		all = append(all, sel)
	}
	if len(all) == 1 {
		return first, nil
	}
	return all, nil
}

// unit := '(' alt ')' | name+
func (p *parser) parseUnit() (Selector, error) {
	switch p.tok.kind {
	case tokLParen:
		p.next()
		sel, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("missing ')'")
		}
		p.next()
		return sel, nil
	case tokName:
		var path pathSelector
		for p.tok.kind == tokName {
			if !isNameChar(p.tok.text[0]) {
				return nil, p.errorf("unexpected %q", p.tok.text)
			}
			path = append(path, strings.TrimSuffix(p.tok.text, ".*"))
			p.next()
		}
		return path, nil
	case tokEOF:
		return nil, p.errorf("unexpected end of selector")
	default:
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
}
