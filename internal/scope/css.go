package scope

import "strings"

// CSS paints stylesheets: selectors, property lists, property names and
// values, strings and comments. Nested blocks such as @media are painted as
// property lists.
type CSS struct{}

// Paint implements Painter.
func (CSS) Paint(src string) Painting {
	base := Stack{"source.css"}
	p := &cssPainter{src: src, base: base}
	p.run()
	return Painting{Base: base, Spans: p.spans}
}

type cssState uint8

const (
	cssSelector cssState = iota
	cssName
	cssValue
)

type cssPainter struct {
	canvas
	src  string
	base Stack
}

func (p *cssPainter) run() {
	src := p.src
	n := len(src)
	state := cssSelector
	stack := p.base

	var lists []int // reserved property-list spans, innermost last
	value := -1     // reserved property-value span

	closeValue := func(at int) {
		if value >= 0 {
			p.close(value, at)
			value = -1
		}
	}

	i := 0
	for i < n {
		c := src[i]
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			end := unclosed(src)
			if k := strings.Index(src[i+2:], "*/"); k >= 0 {
				end = i + 2 + k + 2
			}
			p.paint(i, end, p.innermost(stack, value), "comment.block.css")
			i = min(end, n)

		case c == '"' || c == '\'':
			end := unclosed(src)
			for k := i + 1; k < n; k++ {
				if src[k] == '\\' {
					k++
					continue
				}
				if src[k] == c || src[k] == '\n' {
					end = k + 1
					break
				}
			}
			kind := "string.quoted.double.css"
			if c == '\'' {
				kind = "string.quoted.single.css"
			}
			p.paint(i, end, p.innermost(stack, value), kind)
			i = min(end, n)

		case c == '{':
			closeValue(i)
			lists = append(lists, p.paint(i, unclosed(src), stack, "meta.property-list.css"))
			stack = stack.Push("meta.property-list.css")
			p.paint(i, i+1, stack, "punctuation.section.property-list.begin.css")
			state = cssName
			i++

		case c == '}':
			closeValue(i)
			if len(lists) == 0 {
				i++
				continue
			}
			p.paint(i, i+1, stack, "punctuation.section.property-list.end.css")
			p.close(lists[len(lists)-1], i+1)
			lists = lists[:len(lists)-1]
			stack = stack[:len(stack)-1]
			state = cssSelector
			if len(lists) > 0 {
				state = cssName
			}
			i++

		case state == cssSelector:
			if isSpace(c) {
				i++
				continue
			}
			end := i
			for end < n && src[end] != '{' && src[end] != '}' && !strings.HasPrefix(src[end:], "/*") {
				end++
			}
			trimmed := i + len(strings.TrimRight(src[i:end], " \t\r\n\f"))
			p.paint(i, trimmed, stack, "meta.selector.css")
			i = end

		case state == cssName:
			switch {
			case isSpace(c) || c == ';':
				i++
			case c == ':':
				p.paint(i, i+1, stack, "punctuation.separator.key-value.css")
				value = p.paint(i+1, unclosed(src), stack, "meta.property-value.css")
				state = cssValue
				i++
			case isPropertyChar(c):
				k := i
				for k < n && isPropertyChar(src[k]) {
					k++
				}
				if next := skipSpace(src, k); next < n && src[next] == '{' {
					// Nested block selector such as "@media screen" or "a:hover".
					p.paint(i, k, stack, "meta.selector.css")
				} else {
					p.paint(i, k, stack, "meta.property-name.css", "support.type.property-name.css")
				}
				i = k
			default:
				i++
			}

		case state == cssValue:
			if c == ';' {
				closeValue(i)
				p.paint(i, i+1, stack, "punctuation.terminator.rule.css")
				state = cssName
			}
			i++
		}
	}
}

// innermost returns the stack strings and comments nest in.
func (p *cssPainter) innermost(stack Stack, value int) Stack {
	if value >= 0 {
		return stack.Push("meta.property-value.css")
	}
	return stack
}

func isPropertyChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_' || c == '@' || c == '*'
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}
