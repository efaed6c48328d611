// Package emmet defines the contracts between abbreviation tracking and the
// abbreviation toolkit: finding an abbreviation on the caret line, deciding
// which kind of abbreviation a location accepts, and expanding text into a
// snippet.
//
// LineExtractor implements extraction with a backward scan from the caret.
// LuaEngine implements expansion by running a Lua script inside a sandboxed
// gopher-lua state; the embedded default script understands the common
// markup and stylesheet abbreviation forms, and a user script exporting the
// same expand(abbr, type, syntax) function can replace it.
//
// Snippets may contain ${N} and ${N:default} placeholders.
package emmet
