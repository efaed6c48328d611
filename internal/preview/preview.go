// Package preview shows what the abbreviation under the caret expands to.
//
// A Controller receives show and hide requests from the tracker. Policy
// filters requests by settings before they reach a renderer, and Screen
// draws the preview onto a tcell screen.
package preview

import (
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
)

// Controller displays marker previews.
type Controller interface {
	// Toggle shows or refreshes the preview of m near caret. block selects
	// the boxed rendering used for stylesheet abbreviations.
	Toggle(m marker.Marker, caret buffer.ByteOffset, block bool)

	// Hide removes any shown preview. It is safe to call at any time.
	Hide()
}

// Nop is a Controller that shows nothing.
type Nop struct{}

// Toggle implements Controller.
func (Nop) Toggle(marker.Marker, buffer.ByteOffset, bool) {}

// Hide implements Controller.
func (Nop) Hide() {}

var _ Controller = Nop{}
