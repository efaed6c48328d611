// Package scope answers "which syntax scopes apply at this offset" and
// evaluates scope selector expressions against them.
//
// A scope stack lists scope names from outermost to innermost, for example
// "text.html.basic meta.tag.block punctuation.definition.tag.end.html".
// Selector expressions use the familiar editor grammar:
//
//	text.html                 name, matched by dot-separated prefix
//	text.html meta.tag        descendant path
//	a, b   or   a | b         either side matches
//	a - b                     a matches and b does not
//	a & b                     both match
//	(a, b)                    grouping
//
// Painters assign stacks to offsets. Static paints a fixed base scope plus
// explicit spans; HTML and CSS derive stacks from the text itself and are
// good enough to drive abbreviation tracking outside a real editor.
package scope
