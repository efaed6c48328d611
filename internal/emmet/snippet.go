package emmet

import "strings"

// TypeSet selects abbreviation types a setting applies to.
type TypeSet struct {
	Markup     bool
	Stylesheet bool
}

// AllTypes enables every abbreviation type.
var AllTypes = TypeSet{Markup: true, Stylesheet: true}

// Has reports whether t is in the set.
func (s TypeSet) Has(t Type) bool {
	switch t {
	case Markup:
		return s.Markup
	case Stylesheet:
		return s.Stylesheet
	default:
		return false
	}
}

// Field is a tab stop located in plain snippet text.
type Field struct {
	Index  int
	Offset int
	Len    int
}

// PlainSnippet strips tab-stop syntax from a snippet. "${1}" and "$1" are
// removed, "${1:text}" keeps its text and "\$" yields a literal dollar.
// Fields are returned in the order they appear.
func PlainSnippet(snippet string) (string, []Field) {
	var sb strings.Builder
	var fields []Field
	for i := 0; i < len(snippet); {
		c := snippet[i]
		if c == '\\' && i+1 < len(snippet) && (snippet[i+1] == '$' || snippet[i+1] == '\\' || snippet[i+1] == '}') {
			sb.WriteByte(snippet[i+1])
			i += 2
			continue
		}
		if c != '$' || i+1 >= len(snippet) {
			sb.WriteByte(c)
			i++
			continue
		}

		if j, n := digits(snippet, i+1); n > 0 {
			fields = append(fields, Field{Index: j, Offset: sb.Len()})
			i += 1 + n
			continue
		}
		if snippet[i+1] != '{' {
			sb.WriteByte(c)
			i++
			continue
		}
		idx, n := digits(snippet, i+2)
		if n == 0 {
			sb.WriteByte(c)
			i++
			continue
		}
		k := i + 2 + n
		switch {
		case k < len(snippet) && snippet[k] == '}':
			fields = append(fields, Field{Index: idx, Offset: sb.Len()})
			i = k + 1
		case k < len(snippet) && snippet[k] == ':':
			end := strings.IndexByte(snippet[k+1:], '}')
			if end < 0 {
				sb.WriteString(snippet[i:])
				i = len(snippet)
				continue
			}
			text := snippet[k+1 : k+1+end]
			fields = append(fields, Field{Index: idx, Offset: sb.Len(), Len: len(text)})
			sb.WriteString(text)
			i = k + 1 + end + 1
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), fields
}

// FirstStop returns the offset and length of the first tab stop. Field 0
// is the final stop and only wins when no other field exists. Without
// fields the caret goes to the end of text.
func FirstStop(text string, fields []Field) (int, int) {
	best := -1
	for i, f := range fields {
		if f.Index == 0 {
			continue
		}
		if best < 0 || f.Index < fields[best].Index {
			best = i
		}
	}
	if best < 0 {
		for i, f := range fields {
			if f.Index == 0 {
				best = i
				break
			}
		}
	}
	if best < 0 {
		return len(text), 0
	}
	return fields[best].Offset, fields[best].Len
}

func digits(s string, i int) (int, int) {
	v, n := 0, 0
	for i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		v = v*10 + int(s[i+n]-'0')
		n++
	}
	return v, n
}
