package tracker

import (
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
)

// Host command names the classifier reacts to.
const (
	CommandCommitCompletion = "commit_completion"
	CommandUndo             = "undo"
	CommandRedo             = "redo"
)

// Event is something the host reports about a buffer.
type Event interface {
	Kind() string
}

// Activated reports that the buffer gained focus.
type Activated struct{ Caret buffer.ByteOffset }

// CaretMoved reports a selection change without a text change.
type CaretMoved struct{ Caret buffer.ByteOffset }

// TextModified reports a text change. Caret is the caret after the edit.
type TextModified struct{ Caret buffer.ByteOffset }

// CompletionQuery asks for completions at Caret.
type CompletionQuery struct{ Caret buffer.ByteOffset }

// PreCommand is sent before the host runs a command.
type PreCommand struct{ Name string }

// PostCommand is sent after the host ran a command.
type PostCommand struct {
	Name  string
	Caret buffer.ByteOffset
}

// Closed reports that the buffer was closed.
type Closed struct{}

func (Activated) Kind() string       { return "activated" }
func (CaretMoved) Kind() string      { return "caret-moved" }
func (TextModified) Kind() string    { return "text-modified" }
func (CompletionQuery) Kind() string { return "completion-query" }
func (PreCommand) Kind() string      { return "pre-command" }
func (PostCommand) Kind() string     { return "post-command" }
func (Closed) Kind() string          { return "closed" }

// Command is a side effect requested by a transition.
type Command interface {
	Kind() string
}

// Attach makes Marker the buffer's marker.
type Attach struct{ Marker marker.Marker }

// Dispose detaches the marker, clears its persisted region and hides the
// preview.
type Dispose struct{}

// ClearRegion erases the persisted region and keeps the marker.
type ClearRegion struct{}

// ShowPreview shows the preview of Marker near Caret.
type ShowPreview struct {
	Marker marker.Marker
	Caret  buffer.ByteOffset
	Block  bool
}

// HidePreview hides the preview.
type HidePreview struct{}

// ReplaceRegion replaces Range with an expanded snippet. An empty snippet
// erases Range.
type ReplaceRegion struct {
	Range   buffer.Range
	Snippet string
}

// Complete answers a completion query.
type Complete struct{ Items []Completion }

func (Attach) Kind() string        { return "attach" }
func (Dispose) Kind() string       { return "dispose" }
func (ClearRegion) Kind() string   { return "clear-region" }
func (ShowPreview) Kind() string   { return "show-preview" }
func (HidePreview) Kind() string   { return "hide-preview" }
func (ReplaceRegion) Kind() string { return "replace-region" }
func (Complete) Kind() string      { return "complete" }

// Completion is the synthetic completion entry offered for a valid marker.
type Completion struct {
	// Abbreviation is the raw text shown as the entry's trigger.
	Abbreviation string
	// Annotation labels the entry's source.
	Annotation string
	// Snippet is inserted when the entry is committed.
	Snippet string
	// Range is the text the snippet replaces.
	Range buffer.Range
}

// Label returns the trigger and annotation separated by a tab.
func (c Completion) Label() string {
	return c.Abbreviation + "\t" + c.Annotation
}
