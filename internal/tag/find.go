package tag

import (
	"strings"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// voidElements never have a close tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

type token struct {
	name    string
	r       buffer.Range
	closing bool
	single  bool
}

// Find returns the innermost element whose tags or content contain pt.
// Close tags without an open tag and open tags that are never closed are
// ignored.
func Find(text string, pt buffer.ByteOffset) (Tag, bool) {
	var (
		stack []token
		best  Tag
		found bool
	)
	consider := func(t Tag) {
		span := t.Span()
		if !span.ContainsInclusive(pt) {
			return
		}
		// Later spans that still contain pt nest inside earlier ones, or
		// start after them; either way the one starting last is innermost.
		if !found || span.Start >= best.Span().Start {
			best, found = t, true
		}
	}

	for _, tok := range tokenize(text) {
		switch {
		case tok.single:
			consider(Tag{Name: tok.name, Open: tok.r})
		case !tok.closing:
			stack = append(stack, tok)
		default:
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name != tok.name {
					continue
				}
				closeRange := tok.r
				consider(Tag{Name: tok.name, Open: stack[i].r, Close: &closeRange})
				stack = stack[:i]
				break
			}
		}
	}
	return best, found
}

// tokenize returns the tags in text in order. Comments are skipped.
func tokenize(text string) []token {
	var toks []token
	for i := 0; i < len(text); i++ {
		if text[i] != '<' {
			continue
		}
		if strings.HasPrefix(text[i:], "<!--") {
			end := strings.Index(text[i+4:], "-->")
			if end < 0 {
				break
			}
			i += 4 + end + 2
			continue
		}

		j := i + 1
		closing := j < len(text) && text[j] == '/'
		if closing {
			j++
		}
		start := j
		for j < len(text) && isNameChar(text[j]) {
			j++
		}
		if j == start || !isLetter(text[start]) {
			continue
		}
		name := strings.ToLower(text[start:j])

		end := tagEnd(text, j)
		if end < 0 {
			break
		}
		single := !closing && (text[end-1] == '/' || voidElements[name])
		toks = append(toks, token{
			name:    name,
			r:       buffer.NewRange(buffer.ByteOffset(i), buffer.ByteOffset(end+1)),
			closing: closing,
			single:  single,
		})
		i = end
	}
	return toks
}

// tagEnd returns the index of the '>' ending the tag whose attributes start
// at i, skipping quoted values. It returns -1 for an unterminated tag.
func tagEnd(text string, i int) int {
	var quote byte
	for ; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == ':'
}
