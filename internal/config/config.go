package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/abbrmark/internal/bounds"
	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/marker"
	"github.com/dshills/abbrmark/internal/scope"
)

// Config holds all abbrmark settings.
type Config struct {
	Abbreviation Abbreviation `toml:"abbreviation"`
	Engine       Engine       `toml:"engine"`
	Editor       Editor       `toml:"editor"`
	Log          Log          `toml:"log"`
}

// Abbreviation configures marking and previews.
type Abbreviation struct {
	// AutoMark enables marking while typing: true, false, "markup" or
	// "stylesheet".
	AutoMark any `toml:"auto_mark" validate:"typeset"`

	// Preview enables previews, with the same values as AutoMark.
	Preview any `toml:"preview" validate:"typeset"`

	// MarkerSelectors are the scopes where typing may start a marker.
	MarkerSelectors []string `toml:"marker_selectors" validate:"min=1,dive,selector"`

	// CSSValueSelector matches stylesheet property values.
	CSSValueSelector string `toml:"css_value_selector" validate:"selector"`

	// RegionKey names the buffer region mirroring the marker.
	RegionKey string `toml:"region_key" validate:"required"`
}

// Engine configures abbreviation expansion.
type Engine struct {
	// Script is a Lua expansion script. Empty uses the built-in script.
	Script string `toml:"script"`

	// TimeoutMS bounds a single expansion, in milliseconds.
	TimeoutMS int `toml:"timeout_ms" validate:"gte=1"`
}

// Editor configures the editing host.
type Editor struct {
	AutoPair bool `toml:"auto_pair"`
	TabWidth int  `toml:"tab_width" validate:"gte=1,lte=16"`
}

// Log configures logging.
type Log struct {
	Level       string `toml:"level" validate:"oneof=debug info warn error"`
	Development bool   `toml:"development"`
	File        string `toml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Abbreviation: Abbreviation{
			AutoMark:         true,
			Preview:          true,
			MarkerSelectors:  append([]string(nil), bounds.DefaultMarkerSelectors...),
			CSSValueSelector: bounds.DefaultCSSValueSelector,
			RegionKey:        marker.DefaultRegionKey,
		},
		Engine: Engine{
			TimeoutMS: int(emmet.DefaultTimeout / time.Millisecond),
		},
		Editor: Editor{
			AutoPair: true,
			TabWidth: 4,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads and validates the file at path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data over the defaults and validates the result.
// source names the data in errors.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting. The error joins one ValidationError per
// failing setting.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &ValidationError{
			Path:  strings.TrimPrefix(fe.Namespace(), "Config."),
			Rule:  fe.Tag(),
			Value: fe.Value(),
		})
	}
	return errors.Join(errs...)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("typeset", func(fl validator.FieldLevel) bool {
		_, err := typeSet(fl.Field().Interface())
		return err == nil
	})
	_ = v.RegisterValidation("selector", func(fl validator.FieldLevel) bool {
		_, err := scope.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// AutoMarkTypes returns the abbreviation types typing may mark.
func (a Abbreviation) AutoMarkTypes() emmet.TypeSet {
	s, _ := typeSet(a.AutoMark)
	return s
}

// PreviewTypes returns the abbreviation types that get a preview.
func (a Abbreviation) PreviewTypes() emmet.TypeSet {
	s, _ := typeSet(a.Preview)
	return s
}

// Checker returns the context checker for the configured selectors.
func (a Abbreviation) Checker() *bounds.Checker {
	return &bounds.Checker{
		MarkerSelectors:  append([]string(nil), a.MarkerSelectors...),
		CSSValueSelector: a.CSSValueSelector,
	}
}

// Timeout returns the expansion timeout.
func (e Engine) Timeout() time.Duration {
	return time.Duration(e.TimeoutMS) * time.Millisecond
}

func typeSet(v any) (emmet.TypeSet, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return emmet.AllTypes, nil
		}
		return emmet.TypeSet{}, nil
	case string:
		switch emmet.Type(v) {
		case emmet.Markup:
			return emmet.TypeSet{Markup: true}, nil
		case emmet.Stylesheet:
			return emmet.TypeSet{Stylesheet: true}, nil
		}
	}
	return emmet.TypeSet{}, fmt.Errorf("expected a bool, %q or %q, got %v", emmet.Markup, emmet.Stylesheet, v)
}
