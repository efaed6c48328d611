package engine

import (
	"strings"
	"testing"
)

func BenchmarkEngineTyping(b *testing.B) {
	e := New(WithContent(strings.Repeat("<p>text</p>\n", 1000)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Insert(e.Caret(), "x"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngineUndoRedo(b *testing.B) {
	e := New(WithContent(strings.Repeat("<p>text</p>\n", 1000)))
	if _, err := e.Insert(0, "ul>li*3"); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Undo(); err != nil {
			b.Fatal(err)
		}
		if _, err := e.Redo(); err != nil {
			b.Fatal(err)
		}
	}
}
