package scope

import "strings"

// Stack is a list of scope names ordered from outermost to innermost.
type Stack []string

// ParseStack splits a space-separated scope string into a Stack.
func ParseStack(s string) Stack {
	return Stack(strings.Fields(s))
}

// String returns the space-separated form of the stack.
func (s Stack) String() string {
	return strings.Join(s, " ")
}

// Push returns a new stack with names appended as inner scopes.
func (s Stack) Push(names ...string) Stack {
	out := make(Stack, 0, len(s)+len(names))
	out = append(out, s...)
	for _, n := range names {
		out = append(out, strings.Fields(n)...)
	}
	return out
}

// nameMatches reports whether selector name sel matches scope name.
// "text.html" matches "text.html" and "text.html.basic" but not "text.htmlx".
func nameMatches(sel, name string) bool {
	if !strings.HasPrefix(name, sel) {
		return false
	}
	return len(name) == len(sel) || name[len(sel)] == '.'
}
