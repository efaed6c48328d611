package emmet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlainSnippet(t *testing.T) {
	tests := []struct {
		snippet string
		text    string
		fields  []Field
	}{
		{"<li>${1}</li>", "<li></li>", []Field{{Index: 1, Offset: 4}}},
		{"<title>${1:Document}</title>$0", "<title>Document</title>", []Field{{Index: 1, Offset: 7, Len: 8}, {Index: 0, Offset: 23}}},
		{`price: \$5;`, "price: $5;", nil},
		{"a$b", "a$b", nil},
		{"${x}", "${x}", nil},
		{"${2:open", "${2:open", nil},
	}

	for _, tt := range tests {
		text, fields := PlainSnippet(tt.snippet)
		if text != tt.text {
			t.Errorf("%q: expected text %q, got %q", tt.snippet, tt.text, text)
		}
		if diff := cmp.Diff(tt.fields, fields); diff != "" {
			t.Errorf("%q: fields mismatch (-want +got):\n%s", tt.snippet, diff)
		}
	}
}

func TestFirstStop(t *testing.T) {
	text, fields := PlainSnippet("<a href=\"${2}\">${1:label}</a>${0}")
	if off, n := FirstStop(text, fields); off != 11 || n != 5 {
		t.Errorf("expected first stop at 11 len 5, got %d len %d", off, n)
	}

	text, fields = PlainSnippet("x${0}y")
	if off, _ := FirstStop(text, fields); off != 1 {
		t.Errorf("expected final stop at 1, got %d", off)
	}

	if off, _ := FirstStop("abc", nil); off != 3 {
		t.Errorf("expected end of text, got %d", off)
	}
}

func TestTypeSet(t *testing.T) {
	s := TypeSet{Markup: true}
	if !s.Has(Markup) || s.Has(Stylesheet) || s.Has(Type("other")) {
		t.Errorf("unexpected membership for %+v", s)
	}
	if !AllTypes.Has(Stylesheet) {
		t.Error("expected AllTypes to include stylesheet")
	}
}
