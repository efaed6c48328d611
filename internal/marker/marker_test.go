package marker

import (
	"errors"
	"testing"

	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
	"github.com/dshills/abbrmark/internal/scope"
)

type testDoc struct {
	*buffer.Buffer
	*scope.Matcher
}

func newTestDoc(text, syntax string) testDoc {
	buf := buffer.NewBufferFromString(text)
	return testDoc{Buffer: buf, Matcher: scope.NewMatcher(buf, scope.ForSyntax(syntax))}
}

func newEngine(t *testing.T) emmet.Engine {
	t.Helper()
	lua, err := emmet.NewLuaEngine()
	if err != nil {
		t.Fatalf("NewLuaEngine failed: %v", err)
	}
	t.Cleanup(func() { _ = lua.Close() })
	return emmet.NewToolkit(lua)
}

func TestCreate(t *testing.T) {
	eng := newEngine(t)
	doc := newTestDoc("<p>ul>li</p>", "html")

	m := Create(doc, eng, buffer.NewRange(3, 8))
	if m.Status() != Valid {
		t.Fatalf("expected valid marker, got %s (%v)", m, m.Err())
	}
	if m.Abbreviation() != "ul>li" {
		t.Errorf("expected abbreviation 'ul>li', got %q", m.Abbreviation())
	}
	if m.Options() != (emmet.Options{Type: emmet.Markup, Syntax: "html"}) {
		t.Errorf("unexpected options %+v", m.Options())
	}
	snippet, err := m.Snippet()
	if err != nil {
		t.Fatalf("snippet failed: %v", err)
	}
	if snippet != "<ul>\n\t<li>${1}</li>\n</ul>" {
		t.Errorf("unexpected snippet %q", snippet)
	}
}

func TestCreateInvalid(t *testing.T) {
	eng := newEngine(t)
	doc := newTestDoc("ul>", "html")

	m := Create(doc, eng, buffer.NewRange(0, 3))
	if m.Status() != Invalid {
		t.Fatalf("expected invalid marker, got %s", m)
	}
	var perr *emmet.ParseError
	if !errors.As(m.Err(), &perr) {
		t.Errorf("expected ParseError, got %v", m.Err())
	}
	if _, err := m.Snippet(); !errors.Is(err, ErrInvalidAbbreviation) {
		t.Errorf("expected ErrInvalidAbbreviation, got %v", err)
	}
}

func TestCreateNotFound(t *testing.T) {
	eng := newEngine(t)

	tests := []struct {
		name string
		text string
		r    buffer.Range
		err  error
	}{
		{"empty range", "ul", buffer.NewRange(1, 1), ErrNoAbbreviation},
		{"newline", "a\nb", buffer.NewRange(0, 3), ErrNoAbbreviation},
		{"no context", "ul", buffer.NewRange(0, 2), ErrNoContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syntax := "html"
			if tt.err == ErrNoContext {
				syntax = "go"
			}
			m := Create(newTestDoc(tt.text, syntax), eng, tt.r)
			if m.Status() != NotFound {
				t.Errorf("expected not-found, got %s", m.Status())
			}
			if !errors.Is(m.Err(), tt.err) {
				t.Errorf("expected %v, got %v", tt.err, m.Err())
			}
		})
	}
}

func TestUpdateValidateMatchesCreate(t *testing.T) {
	eng := newEngine(t)
	doc := newTestDoc("<div>ul>li*2 p+ a[x> #</div>", "html")
	start := Create(doc, eng, buffer.NewRange(5, 12))

	for begin := buffer.ByteOffset(5); begin < 22; begin++ {
		for end := begin; end <= 22; end++ {
			updated := start.Update(doc, eng, begin, end).Validate(doc, eng)
			fresh := Create(doc, eng, buffer.NewRange(begin, end))
			if updated.Valid() != fresh.Valid() || updated.Status() != fresh.Status() {
				t.Errorf("[%d:%d): update+validate gave %s, create gave %s", begin, end, updated.Status(), fresh.Status())
			}
		}
	}
}

func TestValidateAfterEdit(t *testing.T) {
	eng := newEngine(t)
	doc := newTestDoc("ul>li", "html")
	m := Create(doc, eng, buffer.NewRange(0, 5))

	edit := buffer.NewInsert(2, "+p")
	if _, err := doc.ApplyEdit(edit); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	m = m.WithRegion(buffer.TransformRegion(m.Region(), edit)).Validate(doc, eng)
	if !m.Valid() || m.Abbreviation() != "ul+p>li" {
		t.Errorf("expected valid 'ul+p>li', got %s", m)
	}

	again := m.Validate(doc, eng)
	if again.Status() != m.Status() || again.Abbreviation() != m.Abbreviation() || again.Region() != m.Region() {
		t.Errorf("expected validate to be idempotent, got %s then %s", m, again)
	}

	if err := doc.Erase(buffer.NewRange(5, 7)); err != nil {
		t.Fatalf("erase failed: %v", err)
	}
	m = m.WithRegion(buffer.NewRange(0, 5)).Validate(doc, eng)
	if m.Status() != Invalid {
		t.Errorf("expected 'ul+p>' to be invalid, got %s", m)
	}
}

func TestContains(t *testing.T) {
	m := Marker{region: buffer.NewRange(2, 5)}

	for pt, want := range map[buffer.ByteOffset]bool{1: false, 2: true, 4: true, 5: true, 6: false} {
		if got := m.Contains(pt); got != want {
			t.Errorf("Contains(%d): expected %v, got %v", pt, want, got)
		}
	}
	if !m.ContainsSelection(cursor.NewSelection(5, 2)) {
		t.Error("expected selection covering the region to be contained")
	}
	if m.ContainsSelection(cursor.NewSelection(1, 3)) {
		t.Error("expected selection starting before the region not to be contained")
	}
}

func TestReset(t *testing.T) {
	eng := newEngine(t)
	m := Create(newTestDoc("ul", "html"), eng, buffer.NewRange(0, 2)).Reset()

	if m.Status() != NotFound || m.Abbreviation() != "" || m.Err() != nil {
		t.Errorf("expected cleared marker, got %s", m)
	}
	if m.Region() != buffer.NewRange(0, 2) {
		t.Errorf("expected region to survive reset, got %s", m.Region())
	}
}

func TestFromLine(t *testing.T) {
	eng := newEngine(t)

	m, ok := FromLine(newTestDoc("<div>ul>li</div>", "html"), eng, 10)
	if !ok {
		t.Fatal("expected extraction")
	}
	if m.Region() != buffer.NewRange(5, 10) || !m.Valid() {
		t.Errorf("expected valid marker at [5:10), got %s", m)
	}

	if _, ok := FromLine(newTestDoc("ul ", "html"), eng, 3); ok {
		t.Error("expected no extraction after a space")
	}
}

func TestForce(t *testing.T) {
	eng := newEngine(t)
	doc := newTestDoc("<p></p>", "html")

	m := Force(doc, eng, buffer.PointRange(3))
	if !m.Forced() || !m.Live() {
		t.Fatalf("expected a live forced marker, got %s", m)
	}
	if m.Status() != NotFound {
		t.Errorf("expected empty forced marker to be not-found, got %s", m.Status())
	}
	if m.Options().Type != emmet.Markup {
		t.Errorf("expected markup options from the context, got %+v", m.Options())
	}

	if _, err := doc.Insert(3, "ul"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	next := m.Update(doc, eng, 3, 5)
	if !next.Forced() || !next.Valid() {
		t.Errorf("expected update to keep a forced valid marker, got %s", next)
	}
	if got := next.WithRegion(buffer.PointRange(3)).Validate(doc, eng); !got.Forced() || !got.Live() {
		t.Errorf("expected emptied forced marker to stay live, got %s", got)
	}
	if got := next.Reset(); !got.Forced() {
		t.Error("expected reset to keep the forced flag")
	}
	if Create(doc, eng, buffer.PointRange(3)).Live() {
		t.Error("expected an empty typed marker not to be live")
	}
}
