package emmet

import (
	"strings"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// LineExtractor finds abbreviations by scanning backward from the caret to
// the nearest bound on the caret line. Brackets and braces balance, so
// "a[title='x y']" is one abbreviation. Closing brackets the host inserted
// right after the caret are included when they balance an opener.
type LineExtractor struct{}

var pairs = map[byte]byte{'[': ']', '{': '}', '(': ')'}

// Extract returns the range and text of the abbreviation ending at pt.
func (LineExtractor) Extract(doc buffer.Reader, pt buffer.ByteOffset) (buffer.Range, string, bool) {
	line := doc.Line(pt)
	text := doc.Substr(line)
	pos := int(pt - line.Start)
	if pos < 0 || pos > len(text) {
		return buffer.Range{}, "", false
	}

	start := scanBack(text, pos)
	end := lookAhead(text, start, pos)
	if start >= end {
		return buffer.Range{}, "", false
	}

	abbr := text[start:end]
	if strings.ContainsAny(abbr, "\r\n") {
		return buffer.Range{}, "", false
	}
	return buffer.NewRange(line.Start+buffer.ByteOffset(start), line.Start+buffer.ByteOffset(end)), abbr, true
}

// scanBack returns the start of the abbreviation ending at pos.
func scanBack(text string, pos int) int {
	var closers []byte
	i := pos
	for i > 0 {
		c := text[i-1]

		if len(closers) > 0 {
			switch c {
			case '"', '\'':
				// Quoted text inside brackets is opaque.
				q := strings.LastIndexByte(text[:i-1], c)
				if q < 0 {
					return i
				}
				i = q
				continue
			case ']', '}', ')':
				closers = append(closers, c)
			case '[', '{', '(':
				if pairs[c] != closers[len(closers)-1] {
					return i
				}
				closers = closers[:len(closers)-1]
			}
			i--
			continue
		}

		switch c {
		case ' ', '\t', '<':
			return i
		case '>':
			if closesTag(text, i-1) {
				return i
			}
		case ']', '}', ')':
			closers = append(closers, c)
		}
		i--
	}
	if len(closers) > 0 {
		// Unbalanced closer: the abbreviation starts after it.
		return scanForward(text, pos)
	}
	return i
}

// scanForward is the fallback for lines whose brackets do not balance: the
// abbreviation is the run after the last bound character before pos.
func scanForward(text string, pos int) int {
	start := strings.LastIndexAny(text[:pos], " \t<>]})")
	return start + 1
}

// closesTag reports whether the '>' at gt ends a real tag, that is a '<'
// followed by a letter or '/' appears before it with no '>' in between.
func closesTag(text string, gt int) bool {
	lt := strings.LastIndexAny(text[:gt], "<>")
	if lt < 0 || text[lt] != '<' || lt+1 >= len(text) {
		return false
	}
	next := text[lt+1]
	return next == '/' || isLetter(next)
}

// lookAhead extends the abbreviation past pos over closing brackets that
// balance openers left open in text[start:pos].
func lookAhead(text string, start, pos int) int {
	var open []byte
	var quote byte
	for i := start; i < pos; i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case len(open) > 0 && (c == '"' || c == '\''):
			quote = c
		case c == '[' || c == '{' || c == '(':
			open = append(open, c)
		case c == ']' || c == '}' || c == ')':
			if len(open) > 0 && pairs[open[len(open)-1]] == c {
				open = open[:len(open)-1]
			}
		}
	}

	end := pos
	for len(open) > 0 && end < len(text) && text[end] == pairs[open[len(open)-1]] {
		open = open[:len(open)-1]
		end++
	}
	return end
}
