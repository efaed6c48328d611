package scope

import "strings"

// HTML paints markup: tags, attributes, quoted values, comments and
// character entities. The content of <style> elements is painted as CSS.
type HTML struct{}

// Paint implements Painter.
func (HTML) Paint(src string) Painting {
	base := Stack{"text.html.basic"}
	p := &htmlPainter{src: src, base: base}
	p.run()
	return Painting{Base: base, Spans: p.spans}
}

type htmlPainter struct {
	canvas
	src  string
	base Stack
}

func (p *htmlPainter) run() {
	src := p.src
	n := len(src)
	i := 0
	for i < n {
		switch {
		case strings.HasPrefix(src[i:], "<!--"):
			end := unclosed(src)
			if k := strings.Index(src[i+4:], "-->"); k >= 0 {
				end = i + 4 + k + 3
			}
			p.paint(i, end, p.base, "comment.block.html")
			i = min(end, n)
		case src[i] == '<' && i+1 < n && (isLetter(src[i+1]) || src[i+1] == '/'):
			i = p.tag(i)
		case src[i] == '&':
			if end := entityEnd(src, i); end > 0 {
				p.paint(i, end, p.base, "constant.character.entity.html")
				i = end
			} else {
				i++
			}
		default:
			i++
		}
	}
}

// tag paints the tag starting at src[start] == '<' and returns the offset
// after it, including any raw text content it owns.
func (p *htmlPainter) tag(start int) int {
	src := p.src
	n := len(src)
	closing := src[start+1] == '/'

	meta := p.paint(start, unclosed(src), p.base, "meta.tag.html")
	stack := p.base.Push("meta.tag.html")

	j := start + 1
	if closing {
		j++
	}
	p.paint(start, j, stack, "punctuation.definition.tag.begin.html")

	nameStart := j
	for j < n && isTagNameChar(src[j]) {
		j++
	}
	name := strings.ToLower(src[nameStart:j])
	if j > nameStart {
		p.paint(nameStart, j, stack, "entity.name.tag.html")
	}

	selfClosing := false
	for j < n {
		c := src[j]
		switch {
		case c == '>':
			p.paint(j, j+1, stack, "punctuation.definition.tag.end.html")
			j++
			p.close(meta, j)
			if !closing && !selfClosing {
				return p.rawContent(name, j)
			}
			return j
		case c == '/' && j+1 < n && src[j+1] == '>':
			selfClosing = true
			p.paint(j, j+2, stack, "punctuation.definition.tag.end.html")
			j += 2
			p.close(meta, j)
			return j
		case c == '"' || c == '\'':
			end := unclosed(src)
			if k := strings.IndexByte(src[j+1:], c); k >= 0 {
				end = j + 1 + k + 1
			}
			kind := "string.quoted.double.html"
			if c == '\'' {
				kind = "string.quoted.single.html"
			}
			p.paint(j, end, stack, kind)
			j = min(end, n)
		case c == '<':
			// A new tag starts before this one was closed.
			p.close(meta, j)
			return j
		case isAttrNameChar(c):
			k := j
			for k < n && isAttrNameChar(src[k]) {
				k++
			}
			p.paint(j, k, stack, "entity.other.attribute-name.html")
			j = k
		default:
			j++
		}
	}
	return j
}

// rawContent paints the body of elements whose content is not markup.
func (p *htmlPainter) rawContent(name string, start int) int {
	var embedded string
	switch name {
	case "style":
		embedded = "source.css.embedded.html"
	case "script":
		embedded = "source.js.embedded.html"
	default:
		return start
	}

	src := p.src
	end := len(src)
	if k := strings.Index(strings.ToLower(src[start:]), "</"+name); k >= 0 {
		end = start + k
	}

	stack := p.base.Push(embedded)
	if end == len(src) {
		p.paint(start, unclosed(src), p.base, embedded)
	} else {
		p.paint(start, end, p.base, embedded)
	}
	if name == "style" {
		css := &cssPainter{src: src[start:end], base: stack}
		css.offset = p.offset + int64(start)
		css.run()
		p.spans = append(p.spans, css.spans...)
	}
	return end
}

// entityEnd returns the offset after a character reference starting at
// src[i] == '&', or 0 when there is none.
func entityEnd(src string, i int) int {
	j := i + 1
	if j < len(src) && src[j] == '#' {
		j++
	}
	start := j
	for j < len(src) && j-i < 32 && (isLetter(src[j]) || isDigit(src[j])) {
		j++
	}
	if j == start || j >= len(src) || src[j] != ';' {
		return 0
	}
	return j + 1
}

func isTagNameChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == ':' || c == '_'
}

func isAttrNameChar(c byte) bool {
	return !isSpace(c) && c != '=' && c != '>' && c != '/' && c != '"' && c != '\'' && c != '<'
}
