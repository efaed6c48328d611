package app

import (
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
	"github.com/dshills/abbrmark/internal/preview"
)

// PreviewState describes the preview a document shows.
type PreviewState struct {
	Visible      bool
	Abbreviation string
	Block        bool
	Caret        buffer.ByteOffset
}

// previewRecorder remembers the last request it forwarded.
type previewRecorder struct {
	state PreviewState
	next  preview.Controller
}

func (r *previewRecorder) Toggle(m marker.Marker, caret buffer.ByteOffset, block bool) {
	r.state = PreviewState{Visible: true, Abbreviation: m.Abbreviation(), Block: block, Caret: caret}
	r.next.Toggle(m, caret, block)
}

func (r *previewRecorder) Hide() {
	r.state = PreviewState{}
	r.next.Hide()
}

var _ preview.Controller = (*previewRecorder)(nil)
