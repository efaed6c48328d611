package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/abbrmark/internal/bounds"
	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/marker"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if got := cfg.Abbreviation.AutoMarkTypes(); got != emmet.AllTypes {
		t.Errorf("expected all types marked, got %+v", got)
	}
	if cfg.Abbreviation.RegionKey != marker.DefaultRegionKey {
		t.Errorf("expected region key %q, got %q", marker.DefaultRegionKey, cfg.Abbreviation.RegionKey)
	}
	if cfg.Engine.Timeout() != emmet.DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", emmet.DefaultTimeout, cfg.Engine.Timeout())
	}
	if diff := cmp.Diff(bounds.NewChecker(), cfg.Abbreviation.Checker()); diff != "" {
		t.Errorf("checker mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	data := `
[abbreviation]
auto_mark = "markup"
preview = false
marker_selectors = ["text.html"]

[engine]
timeout_ms = 500

[editor]
tab_width = 2

[log]
level = "debug"
file = "abbrmark.log"
`
	cfg, err := Parse("test.toml", []byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got := cfg.Abbreviation.AutoMarkTypes(); got != (emmet.TypeSet{Markup: true}) {
		t.Errorf("expected markup only, got %+v", got)
	}
	if got := cfg.Abbreviation.PreviewTypes(); got != (emmet.TypeSet{}) {
		t.Errorf("expected previews off, got %+v", got)
	}
	if diff := cmp.Diff([]string{"text.html"}, cfg.Abbreviation.MarkerSelectors); diff != "" {
		t.Errorf("selectors mismatch (-want +got):\n%s", diff)
	}
	if cfg.Abbreviation.CSSValueSelector != bounds.DefaultCSSValueSelector {
		t.Errorf("expected unset key to keep its default, got %q", cfg.Abbreviation.CSSValueSelector)
	}
	if cfg.Engine.Timeout() != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", cfg.Engine.Timeout())
	}
	if cfg.Editor.TabWidth != 2 || !cfg.Editor.AutoPair {
		t.Errorf("unexpected editor settings %+v", cfg.Editor)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "abbrmark.log" {
		t.Errorf("unexpected log settings %+v", cfg.Log)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		line int
	}{
		{"syntax", "[editor]\ntab_width = = 2\n", 2},
		{"unknown key", "[editor]\nwrap = true\n", 0},
		{"wrong type", "[editor]\ntab_width = \"wide\"\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.toml", []byte(tt.data))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if perr.Path != "bad.toml" {
				t.Errorf("expected path bad.toml, got %q", perr.Path)
			}
			if tt.line > 0 && perr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, perr.Line)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
		rule string
	}{
		{"auto mark value", "[abbreviation]\nauto_mark = \"xml\"\n", "abbreviation.auto_mark", "typeset"},
		{"preview number", "[abbreviation]\npreview = 3\n", "abbreviation.preview", "typeset"},
		{"bad selector", "[abbreviation]\ncss_value_selector = \"a |\"\n", "abbreviation.css_value_selector", "selector"},
		{"bad marker selector", "[abbreviation]\nmarker_selectors = [\"text.html\", \"(a\"]\n", "abbreviation.marker_selectors[1]", "selector"},
		{"no marker selectors", "[abbreviation]\nmarker_selectors = []\n", "abbreviation.marker_selectors", "min"},
		{"tab width", "[editor]\ntab_width = 40\n", "editor.tab_width", "lte"},
		{"timeout", "[engine]\ntimeout_ms = 0\n", "engine.timeout_ms", "gte"},
		{"log level", "[log]\nlevel = \"loud\"\n", "log.level", "oneof"},
		{"region key", "[abbreviation]\nregion_key = \"\"\n", "abbreviation.region_key", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.toml", []byte(tt.data))
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path || verr.Rule != tt.rule {
				t.Errorf("expected %s/%s, got %s/%s", tt.path, tt.rule, verr.Path, verr.Rule)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("expected defaults, got %+v", cfg.Log)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "abbrmark.toml")
		if err := os.WriteFile(path, []byte("[editor]\nauto_pair = false\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Editor.AutoPair {
			t.Error("expected auto_pair off")
		}
	})
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{&ParseError{Path: "a.toml", Line: 3, Column: 7, Message: "boom"}, "parse error in a.toml at line 3, column 7: boom"},
		{&ParseError{Path: "a.toml", Line: 3, Message: "boom"}, "parse error in a.toml at line 3: boom"},
		{&ParseError{Path: "a.toml", Message: "boom"}, "parse error in a.toml: boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}

	verr := &ValidationError{Path: "editor.tab_width", Rule: "lte", Value: 40}
	if !strings.Contains(verr.Error(), "editor.tab_width") {
		t.Errorf("expected path in message, got %q", verr.Error())
	}
}
