// Package marker tracks the abbreviation being typed in a buffer.
//
// A Marker is an immutable value: the region it covers, the abbreviation
// text parsed from that region, the options it was parsed under and the
// outcome of parsing. Operations that change a marker return a new one.
//
// The Registry holds at most one live marker per buffer and mirrors the
// marker region into a named buffer region, so the region follows edits and
// is restored by undo.
package marker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
)

// Errors describing why a marker is not valid.
var (
	ErrNoAbbreviation      = errors.New("no abbreviation in region")
	ErrNoContext           = errors.New("region does not accept abbreviations")
	ErrInvalidAbbreviation = errors.New("abbreviation is not valid")
)

// Status is the outcome of parsing a marker region.
type Status uint8

// Marker statuses.
const (
	// NotFound means the region holds no abbreviation at all.
	NotFound Status = iota
	// Invalid means abbreviation text was found but does not expand.
	Invalid
	// Valid means the abbreviation expands to a non-empty snippet.
	Valid
)

func (s Status) String() string {
	switch s {
	case NotFound:
		return "not-found"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Marker is a tracked abbreviation region.
type Marker struct {
	region       buffer.Range
	abbreviation string
	options      emmet.Options
	status       Status
	snippet      string
	err          error
	forced       bool
}

// Create parses the text in r. It never fails: a region without an
// abbreviation yields a NotFound marker and unexpandable text an Invalid one.
func Create(doc emmet.Document, eng emmet.Engine, r buffer.Range) Marker {
	m := Marker{region: r}
	text := doc.Substr(r)
	if r.IsEmpty() || !validText(text) {
		m.err = ErrNoAbbreviation
		return m
	}

	opts, ok := eng.Context(doc, r.Start)
	if !ok {
		m.err = ErrNoContext
		return m
	}

	m.abbreviation = text
	m.options = opts
	return m.parse(eng)
}

// Force creates a forced marker over r. A forced marker stays attached
// while its region is empty or its text does not parse, until the caret
// leaves it or it is cancelled.
func Force(doc emmet.Document, eng emmet.Engine, r buffer.Range) Marker {
	m := Create(doc, eng, r)
	m.forced = true
	if m.status == NotFound {
		if opts, ok := eng.Context(doc, r.Start); ok {
			m.options = opts
		}
	}
	return m
}

// FromExtraction builds a marker from an extracted abbreviation.
func FromExtraction(exp emmet.Expander, x emmet.Extraction) Marker {
	m := Marker{region: x.Range}
	if !validText(x.Abbreviation) {
		m.err = ErrNoAbbreviation
		return m
	}
	m.abbreviation = x.Abbreviation
	m.options = x.Options
	return m.parse(exp)
}

// FromLine extracts the abbreviation ending at pt and builds a marker for
// it. It returns false when extraction finds nothing.
func FromLine(doc emmet.Document, eng emmet.Engine, pt buffer.ByteOffset) (Marker, bool) {
	x, ok := eng.Extract(doc, pt)
	if !ok {
		return Marker{}, false
	}
	return FromExtraction(eng, x), true
}

// Update re-slices the marker to [begin, end) and parses it again.
func (m Marker) Update(doc emmet.Document, eng emmet.Engine, begin, end buffer.ByteOffset) Marker {
	r := buffer.Range{Start: begin, End: end}
	if m.forced {
		return Force(doc, eng, r)
	}
	return Create(doc, eng, r)
}

// Validate re-reads the current region and parses it under the options the
// marker was created with. Calling it again without an edit in between
// returns an equal marker.
func (m Marker) Validate(doc emmet.Document, exp emmet.Expander) Marker {
	text := doc.Substr(m.region)
	if m.region.IsEmpty() || !validText(text) {
		return Marker{region: m.region, options: m.options, err: ErrNoAbbreviation, forced: m.forced}
	}
	if m.status == NotFound || text == m.abbreviation {
		return m
	}
	next := Marker{region: m.region, abbreviation: text, options: m.options, forced: m.forced}
	return next.parse(exp)
}

func (m Marker) parse(exp emmet.Expander) Marker {
	snippet, err := exp.Expand(m.abbreviation, m.options)
	switch {
	case err != nil:
		m.status, m.snippet, m.err = Invalid, "", err
	case snippet == "":
		m.status, m.snippet, m.err = Invalid, "", emmet.ErrEmptyExpansion
	default:
		m.status, m.snippet, m.err = Valid, snippet, nil
	}
	return m
}

// WithRegion returns the marker with its region replaced. The parse state
// is kept; call Validate to re-parse.
func (m Marker) WithRegion(r buffer.Range) Marker {
	m.region = r
	return m
}

// Reset clears the parse cache, keeping only the region and whether the
// marker is forced.
func (m Marker) Reset() Marker {
	return Marker{region: m.region, forced: m.forced}
}

// Region returns the marked range.
func (m Marker) Region() buffer.Range { return m.region }

// Abbreviation returns the parsed abbreviation text.
func (m Marker) Abbreviation() string { return m.abbreviation }

// Options returns the options the abbreviation was parsed under.
func (m Marker) Options() emmet.Options { return m.options }

// Status returns the parse outcome.
func (m Marker) Status() Status { return m.status }

// Valid reports whether the abbreviation expands.
func (m Marker) Valid() bool { return m.status == Valid }

// Err returns the reason the marker is not valid, or nil.
func (m Marker) Err() error { return m.err }

// Forced reports whether the marker was created by an explicit request
// rather than by typing.
func (m Marker) Forced() bool { return m.forced }

// Live reports whether the marker may stay attached: its region is not
// empty, or it is forced.
func (m Marker) Live() bool { return m.forced || !m.region.IsEmpty() }

// IsStylesheet reports whether the marker holds a stylesheet abbreviation.
func (m Marker) IsStylesheet() bool { return m.options.IsStylesheet() }

// Contains reports whether pt lies in the region. The end of the region
// counts as inside, matching caret semantics.
func (m Marker) Contains(pt buffer.ByteOffset) bool {
	return m.region.ContainsInclusive(pt)
}

// ContainsSelection reports whether both ends of sel lie in the region.
func (m Marker) ContainsSelection(sel cursor.Selection) bool {
	return m.Contains(sel.Start()) && m.Contains(sel.End())
}

// Snippet returns the expansion of a valid marker.
func (m Marker) Snippet() (string, error) {
	if m.status != Valid {
		return "", fmt.Errorf("%w: %q", ErrInvalidAbbreviation, m.abbreviation)
	}
	return m.snippet, nil
}

func (m Marker) String() string {
	if m.forced {
		return fmt.Sprintf("Marker(%s %q %s forced)", m.region, m.abbreviation, m.status)
	}
	return fmt.Sprintf("Marker(%s %q %s)", m.region, m.abbreviation, m.status)
}

func validText(s string) bool {
	return s != "" && !strings.ContainsAny(s, "\r\n")
}
