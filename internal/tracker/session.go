package tracker

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
	"github.com/dshills/abbrmark/internal/marker"
	"github.com/dshills/abbrmark/internal/preview"
)

// Context query keys answered by QueryContext.
const (
	ContextAbbreviation = "emmet_abbreviation"
	ContextHasMarker    = "has_emmet_abbreviation_mark"
)

// ErrNoHost is returned when a replacement is requested without a host.
var ErrNoHost = errors.New("session has no host to edit")

// Host performs edits on behalf of the session.
type Host interface {
	// ReplaceWithSnippet replaces r with snippet, placing the caret at the
	// snippet's first tab stop.
	ReplaceWithSnippet(r buffer.Range, snippet string) error
}

// Session drives a classifier for one open buffer. Events are expected
// one at a time from the host's event loop.
type Session struct {
	id         buffer.ID
	classifier *Classifier
	registry   *marker.Registry
	preview    preview.Controller
	host       Host
	logger     *zap.Logger
	widget     bool

	lastCaret buffer.ByteOffset
	stored    *marker.Marker
	quiet     int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPreview sets the preview controller.
func WithPreview(c preview.Controller) SessionOption {
	return func(s *Session) { s.preview = c }
}

// WithHost sets the host that performs snippet replacements.
func WithHost(h Host) SessionOption {
	return func(s *Session) { s.host = h }
}

// WithLogger sets the logger for transitions.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// AsWidget marks the buffer as an auxiliary input panel. Widget buffers
// never track abbreviations.
func AsWidget() SessionOption {
	return func(s *Session) { s.widget = true }
}

// NewSession creates a session for the buffer id. The buffer must be open
// in registry.
func NewSession(id buffer.ID, classifier *Classifier, registry *marker.Registry, opts ...SessionOption) *Session {
	s := &Session{
		id:         id,
		classifier: classifier,
		registry:   registry,
		preview:    preview.Nop{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the buffer the session tracks.
func (s *Session) ID() buffer.ID { return s.id }

// LastCaret returns the last caret position the session saw.
func (s *Session) LastCaret() buffer.ByteOffset { return s.lastCaret }

// Marker returns the attached marker.
func (s *Session) Marker() (marker.Marker, bool) {
	return s.registry.Get(s.id)
}

// Activated handles the buffer gaining focus.
func (s *Session) Activated(caret buffer.ByteOffset) {
	if s.widget {
		return
	}
	s.dispatch(Activated{Caret: caret})
}

// SelectionModified handles a caret or selection change.
func (s *Session) SelectionModified(caret buffer.ByteOffset) {
	if s.widget {
		return
	}
	s.dispatch(CaretMoved{Caret: caret})
}

// Modified handles a text change. Edits made by the session itself only
// move the remembered caret.
func (s *Session) Modified(caret buffer.ByteOffset) {
	if s.widget {
		return
	}
	if s.quiet > 0 {
		s.lastCaret = caret
		s.logger.Debug("ignoring own edit", zap.Stringer("buffer", s.id), zap.Int64("caret", caret))
		return
	}
	s.dispatch(TextModified{Caret: caret})
}

// QueryCompletions returns the completions offered at caret.
func (s *Session) QueryCompletions(caret buffer.ByteOffset) []Completion {
	if s.widget {
		return nil
	}
	for _, cmd := range s.dispatch(CompletionQuery{Caret: caret}) {
		if c, ok := cmd.(Complete); ok {
			return c.Items
		}
	}
	return nil
}

// PreCommand runs before the host executes the named command.
func (s *Session) PreCommand(name string) {
	if s.widget {
		return
	}
	s.dispatch(PreCommand{Name: name})
}

// PostCommand runs after the host executed the named command.
func (s *Session) PostCommand(name string, caret buffer.ByteOffset) {
	if s.widget {
		return
	}
	s.dispatch(PostCommand{Name: name, Caret: caret})
}

// Close disposes the marker of a closing buffer.
func (s *Session) Close() {
	if s.widget {
		return
	}
	s.dispatch(Closed{})
}

// Expand replaces the marker under caret with its expansion.
func (s *Session) Expand(caret buffer.ByteOffset) error {
	if s.widget {
		return nil
	}
	next, cmds := s.classifier.Expand(s.state(), caret)
	return s.apply("expand", next, cmds)
}

// Force starts a forced marker over r. The caret is expected inside r.
func (s *Session) Force(r buffer.Range, caret buffer.ByteOffset) error {
	if s.widget {
		return nil
	}
	next, cmds := s.classifier.Force(s.state(), r, caret)
	return s.apply("force", next, cmds)
}

// Cancel stops tracking the current marker, erasing a forced marker's text.
func (s *Session) Cancel() error {
	if s.widget {
		return nil
	}
	next, cmds := s.classifier.Cancel(s.state())
	return s.apply("cancel", next, cmds)
}

// Quiet runs fn with text change handling suspended. Use it for edits the
// tracker must not classify, such as committing a completion.
func (s *Session) Quiet(fn func() error) error {
	s.quiet++
	defer func() { s.quiet-- }()
	return fn()
}

// QueryContext answers the keybinding context queries. handled is false
// for keys the session does not know.
func (s *Session) QueryContext(key string, sels []cursor.Selection) (value, handled bool) {
	switch key {
	case ContextAbbreviation:
		m, ok := s.registry.Get(s.id)
		if !ok {
			return false, true
		}
		for _, sel := range sels {
			if m.ContainsSelection(sel) {
				return true, true
			}
		}
		return false, true
	case ContextHasMarker:
		_, ok := s.registry.Get(s.id)
		return ok, true
	default:
		return false, false
	}
}

func (s *Session) state() State {
	st := State{LastCaret: s.lastCaret, Stored: s.stored}
	if m, ok := s.registry.Get(s.id); ok {
		st.Marker = &m
	}
	if r, ok := s.registry.Region(s.id); ok {
		st.Persisted = &r
	}
	return st
}

func (s *Session) dispatch(ev Event) []Command {
	next, cmds := s.classifier.Step(s.state(), ev)
	if err := s.apply(ev.Kind(), next, cmds); err != nil {
		s.logger.Warn("tracker command failed", zap.String("event", ev.Kind()), zap.Error(err))
	}
	return cmds
}

// apply keeps what the session remembers of next and runs cmds.
func (s *Session) apply(event string, next State, cmds []Command) error {
	s.lastCaret = next.LastCaret
	s.stored = next.Stored
	s.log(event, cmds)
	return s.run(cmds)
}

func (s *Session) run(cmds []Command) error {
	var errs []error
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case Attach:
			s.registry.Attach(s.id, c.Marker)
		case Dispose:
			s.registry.Dispose(s.id)
			s.preview.Hide()
		case ClearRegion:
			s.registry.ClearRegion(s.id)
		case ShowPreview:
			s.preview.Toggle(c.Marker, c.Caret, c.Block)
		case HidePreview:
			s.preview.Hide()
		case ReplaceRegion:
			if err := s.replace(c); err != nil {
				errs = append(errs, err)
			}
		case Complete:
		}
	}
	return errors.Join(errs...)
}

func (s *Session) replace(c ReplaceRegion) error {
	if s.host == nil {
		return ErrNoHost
	}
	return s.Quiet(func() error {
		if err := s.host.ReplaceWithSnippet(c.Range, c.Snippet); err != nil {
			return fmt.Errorf("replace %s: %w", c.Range, err)
		}
		return nil
	})
}

func (s *Session) log(event string, cmds []Command) {
	if ce := s.logger.Check(zap.DebugLevel, "tracker transition"); ce != nil {
		kinds := make([]string, len(cmds))
		for i, cmd := range cmds {
			kinds[i] = cmd.Kind()
		}
		ce.Write(
			zap.String("event", event),
			zap.Stringer("buffer", s.id),
			zap.Int64("caret", s.lastCaret),
			zap.Strings("commands", kinds),
		)
	}
}
