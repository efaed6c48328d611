package preview

import (
	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
)

// Policy forwards preview requests allowed by the preview setting.
// Disallowed requests hide the current preview instead.
type Policy struct {
	// Types lists the abbreviation types that get a preview.
	Types emmet.TypeSet

	// Next receives the allowed requests.
	Next Controller
}

// NewPolicy wraps next with the given allowed types.
func NewPolicy(types emmet.TypeSet, next Controller) *Policy {
	if next == nil {
		next = Nop{}
	}
	return &Policy{Types: types, Next: next}
}

// Allows reports whether m would be previewed.
func (p *Policy) Allows(m marker.Marker, block bool) bool {
	if !p.Types.Has(m.Options().Type) || m.Abbreviation() == "" {
		return false
	}
	// A lone element previews as itself; not worth an overlay unless asked
	// for explicitly.
	if !block && !m.Forced() && m.Valid() && emmet.IsSimpleMarkup(m.Abbreviation()) {
		return false
	}
	return true
}

// Toggle implements Controller.
func (p *Policy) Toggle(m marker.Marker, caret buffer.ByteOffset, block bool) {
	if !p.Allows(m, block) {
		p.Next.Hide()
		return
	}
	p.Next.Toggle(m, caret, block)
}

// Hide implements Controller.
func (p *Policy) Hide() {
	p.Next.Hide()
}

var _ Controller = (*Policy)(nil)
