// Package app hosts documents for abbreviation tracking: it owns the
// buffers, runs editing commands through pre/post hooks and reports every
// edit and caret move to the document's tracking session.
package app

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/abbrmark/internal/config"
	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
	"github.com/dshills/abbrmark/internal/preview"
)

// trackerHook names the built-in hooks that forward commands to sessions.
const trackerHook = "tracker"

// Editor owns the open documents and the command table.
type Editor struct {
	mu sync.Mutex

	cfg      *config.Config
	logger   *zap.Logger
	expander emmet.Expander
	closer   io.Closer
	toolkit  *emmet.Toolkit
	registry *marker.Registry
	preview  preview.Controller

	docs     map[buffer.ID]*Document
	order    []buffer.ID
	handlers map[string]Handler
	hooks    hookManager
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithPreview sets the controller that renders previews for all documents.
func WithPreview(c preview.Controller) Option {
	return func(e *Editor) {
		if c != nil {
			e.preview = c
		}
	}
}

// WithExpander replaces the Lua expansion engine.
func WithExpander(exp emmet.Expander) Option {
	return func(e *Editor) { e.expander = exp }
}

// New creates an editor for cfg. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) (*Editor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Editor{
		cfg:      cfg,
		logger:   zap.NewNop(),
		preview:  preview.Nop{},
		docs:     make(map[buffer.ID]*Document),
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.expander == nil {
		luaOpts := []emmet.LuaOption{emmet.WithTimeout(cfg.Engine.Timeout())}
		if cfg.Engine.Script != "" {
			luaOpts = append(luaOpts, emmet.WithScriptFile(cfg.Engine.Script))
		}
		lua, err := emmet.NewLuaEngine(luaOpts...)
		if err != nil {
			return nil, fmt.Errorf("starting expansion engine: %w", err)
		}
		e.expander, e.closer = lua, lua
	}
	e.toolkit = emmet.NewToolkit(e.expander)
	e.registry = marker.NewRegistry(cfg.Abbreviation.RegionKey)

	registerBuiltins(e)
	e.RegisterHook(NewPreCommandFunc(trackerHook, PrioritySystem, func(doc *Document, cmd Command) bool {
		doc.session.PreCommand(cmd.Name)
		return true
	}))
	e.RegisterHook(NewPostCommandFunc(trackerHook, PrioritySystem, func(doc *Document, cmd Command, _ error) {
		doc.session.PostCommand(cmd.Name, doc.Caret())
	}))
	return e, nil
}

// Config returns the current configuration.
func (e *Editor) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Expander returns the expansion engine.
func (e *Editor) Expander() emmet.Expander { return e.expander }

// Logger returns the editor logger.
func (e *Editor) Logger() *zap.Logger { return e.logger }

// Reconfigure applies cfg. Editing and preview settings take effect
// immediately; marking settings apply to documents opened afterwards.
func (e *Editor) Reconfigure(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	docs := e.documentsLocked()
	e.mu.Unlock()

	for _, d := range docs {
		d.policy.Types = cfg.Abbreviation.PreviewTypes()
	}
	e.logger.Info("configuration applied", zap.Int("documents", len(docs)))
}

// Expand expands abbr as if it were the whole content of a document of
// the given syntax, and returns the result without tab stops.
func (e *Editor) Expand(abbr, syntax string) (string, error) {
	doc := e.Open(abbr, WithName("expand"), WithSyntax(syntax), AsWidget())
	defer func() { _ = e.CloseDocument(doc.ID()) }()

	opts, ok := e.toolkit.Context(doc, 0)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoAbbreviation, syntax)
	}
	snippet, err := e.expander.Expand(abbr, opts)
	if err != nil {
		return "", err
	}
	text, _ := emmet.PlainSnippet(snippet)
	return text, nil
}

// Open creates a document holding text.
func (e *Editor) Open(text string, opts ...DocumentOption) *Document {
	d := newDocument(e, text, opts...)

	e.mu.Lock()
	e.docs[d.ID()] = d
	e.order = append(e.order, d.ID())
	e.mu.Unlock()

	e.logger.Debug("document opened",
		zap.Stringer("buffer", d.ID()),
		zap.String("name", d.Name()),
		zap.String("syntax", d.Syntax()),
	)
	d.session.Activated(d.Caret())
	return d
}

// Document returns the open document id.
func (e *Editor) Document(id buffer.ID) (*Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	return d, nil
}

// Documents returns the open documents in the order they were opened.
func (e *Editor) Documents() []*Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentsLocked()
}

func (e *Editor) documentsLocked() []*Document {
	out := make([]*Document, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.docs[id])
	}
	return out
}

// CloseDocument closes the document id, disposing its marker.
func (e *Editor) CloseDocument(id buffer.ID) error {
	e.mu.Lock()
	d, ok := e.docs[id]
	if ok {
		delete(e.docs, id)
		for i, other := range e.order {
			if other == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	d.session.Close()
	e.registry.Close(id)
	e.logger.Debug("document closed", zap.Stringer("buffer", id))
	return nil
}

// Close closes every document and stops the expansion engine.
func (e *Editor) Close() error {
	var errs []error
	for _, d := range e.Documents() {
		if err := e.CloseDocument(d.ID()); err != nil {
			errs = append(errs, err)
		}
	}
	if e.closer != nil {
		if err := e.closer.Close(); err != nil && !errors.Is(err, emmet.ErrEngineClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Register sets the handler of the command name, replacing any previous
// one.
func (e *Editor) Register(name string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[name] = h
}

// HasCommand reports whether a handler is registered for name.
func (e *Editor) HasCommand(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.handlers[name]
	return ok
}

// RegisterHook adds a pre-command hook, a post-command hook or both.
func (e *Editor) RegisterHook(h Hook) {
	if pre, ok := h.(PreCommandHook); ok {
		e.hooks.registerPre(pre)
	}
	if post, ok := h.(PostCommandHook); ok {
		e.hooks.registerPost(post)
	}
}

// UnregisterHook removes the hooks named name.
func (e *Editor) UnregisterHook(name string) bool {
	return e.hooks.unregister(name)
}

// HookNames returns the hook names in the order they run.
func (e *Editor) HookNames() (pre, post []string) {
	return e.hooks.names()
}

// Execute runs cmd against doc: pre-command hooks, the handler, then
// post-command hooks. A cancelled command runs no handler and no
// post-command hooks.
func (e *Editor) Execute(doc *Document, cmd Command) error {
	e.mu.Lock()
	h, ok := e.handlers[cmd.Name]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}

	if cmd.Name != CmdAutoComplete && cmd.Name != CmdCommitCompletion {
		doc.completions = nil
	}
	if !e.hooks.runPre(doc, cmd) {
		e.logger.Debug("command cancelled", zap.String("command", cmd.Name))
		return NewOperationError(cmd.Name, doc.Name(), ErrCancelled)
	}

	err := h(doc, cmd.Args)
	e.hooks.runPost(doc, cmd, err)

	if ce := e.logger.Check(zap.DebugLevel, "command executed"); ce != nil {
		ce.Write(
			zap.Stringer("command", cmd),
			zap.Stringer("buffer", doc.ID()),
			zap.Int64("caret", doc.Caret()),
			zap.Error(err),
		)
	}
	if err != nil {
		return NewOperationError(cmd.Name, doc.Name(), err)
	}
	return nil
}
