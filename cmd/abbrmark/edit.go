package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/dshills/abbrmark/internal/app"
	"github.com/dshills/abbrmark/internal/config"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/logging"
	"github.com/dshills/abbrmark/internal/preview"
	"github.com/dshills/abbrmark/internal/tracker"
)

const editHelp = "Tab expand  ^E abbreviation mode  Esc cancel  ^Space complete  ^R remove tag  ^Z/^Y undo/redo  ^S save  ^Q quit"

func newEditCmd(st *state) *cobra.Command {
	var syntax string
	cmd := &cobra.Command{
		Use:   "edit [FILE]",
		Short: "Edit a file in the terminal with abbreviation tracking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNotTerminal
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			if syntax == "" {
				syntax = syntaxFor(path)
			}
			return runEdit(cmd.Context(), st, path, syntax)
		},
	}
	cmd.Flags().StringVarP(&syntax, "syntax", "s", "", "Buffer syntax; guessed from the file extension when empty")
	return cmd
}

// terminal is one interactive editing session on a tcell screen.
type terminal struct {
	screen tcell.Screen
	pv     *preview.Screen
	ed     *app.Editor
	doc    *app.Document
	logger *zap.Logger

	path   string
	status string
	top    int
	dirty  bool
}

func runEdit(ctx context.Context, st *state, path, syntax string) error {
	var text string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		text = string(data)
	}

	// Log lines on stderr would tear the screen.
	logger := st.logger
	if st.cfg.Log.File == "" {
		logger = logging.Nop()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnablePaste()

	t := &terminal{screen: screen, logger: logger, path: path}
	t.pv = preview.NewScreen(screen, t.locate, preview.DefaultStyles())

	ed, err := app.New(st.cfg, app.WithLogger(logger), app.WithPreview(t.pv))
	if err != nil {
		return err
	}
	defer ed.Close()
	t.ed = ed

	name := path
	if name == "" {
		name = "untitled"
	}
	t.doc = ed.Open(text, app.WithName(name), app.WithSyntax(syntax))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if st.configPath != "" {
		go t.watchConfig(ctx, st.configPath)
	}

	t.status = editHelp
	t.draw()
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			if cfg, ok := ev.Data().(*config.Config); ok {
				ed.Reconfigure(cfg)
				t.status = "configuration reloaded"
			}
		case *tcell.EventKey:
			if t.handleKey(ev) {
				return nil
			}
		}
		t.draw()
	}
}

// watchConfig posts every valid reload of path to the event loop.
func (t *terminal) watchConfig(ctx context.Context, path string) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			t.logger.Warn("configuration reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(cfg))
	})
	if err != nil {
		t.logger.Warn("configuration watch stopped", zap.String("path", path), zap.Error(err))
	}
}

// handleKey runs the command bound to ev and reports whether to quit.
func (t *terminal) handleKey(ev *tcell.EventKey) bool {
	var cmd app.Command
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlS:
		t.save()
		return false
	case tcell.KeyCtrlZ:
		cmd = app.NewCommand(app.CmdUndo)
	case tcell.KeyCtrlY:
		cmd = app.NewCommand(app.CmdRedo)
	case tcell.KeyCtrlR:
		cmd = app.NewCommand(app.CmdRemoveTag)
	case tcell.KeyCtrlE:
		cmd = app.NewCommand(app.CmdEnterAbbreviation)
	case tcell.KeyEscape:
		cmd = app.NewCommand(app.CmdCancelAbbreviation)
	case tcell.KeyCtrlSpace:
		cmd = app.NewCommand(app.CmdAutoComplete)
	case tcell.KeyTab:
		if inside, _ := t.doc.QueryContext(tracker.ContextAbbreviation); inside {
			cmd = app.NewCommand(app.CmdExpand)
		} else {
			cmd = app.NewCommand(app.CmdInsert, "text", "\t")
		}
	case tcell.KeyEnter:
		if len(t.doc.Completions()) > 0 {
			cmd = app.NewCommand(app.CmdCommitCompletion)
		} else {
			cmd = app.NewCommand(app.CmdInsert, "text", "\n")
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		cmd = app.NewCommand(app.CmdLeftDelete)
	case tcell.KeyLeft:
		cmd = app.NewCommand(app.CmdMove, "to", t.prevRune())
	case tcell.KeyRight:
		cmd = app.NewCommand(app.CmdMove, "to", t.nextRune())
	case tcell.KeyUp:
		cmd = app.NewCommand(app.CmdMove, "to", t.verticalTarget(-1))
	case tcell.KeyDown:
		cmd = app.NewCommand(app.CmdMove, "to", t.verticalTarget(1))
	case tcell.KeyHome:
		cmd = app.NewCommand(app.CmdMove, "to", t.doc.Line(t.doc.Caret()).Start)
	case tcell.KeyEnd:
		cmd = app.NewCommand(app.CmdMove, "to", t.doc.Line(t.doc.Caret()).End)
	case tcell.KeyRune:
		cmd = app.NewCommand(app.CmdInsert, "text", string(ev.Rune()))
	default:
		return false
	}

	before := t.doc.Text()
	if err := t.ed.Execute(t.doc, cmd); err != nil {
		t.status = err.Error()
	} else if comps := t.doc.Completions(); len(comps) > 0 {
		t.status = "Enter: " + strings.ReplaceAll(comps[0].Label(), "\t", "  ")
	} else {
		t.status = ""
	}
	if t.doc.Text() != before {
		t.dirty = true
	}
	return false
}

func (t *terminal) save() {
	if t.path == "" {
		t.status = "no file name; start with abbrmark edit FILE"
		return
	}
	if err := os.WriteFile(t.path, []byte(t.doc.Text()), 0o644); err != nil {
		t.status = err.Error()
		return
	}
	t.dirty = false
	t.status = "saved " + t.path
	t.logger.Info("file saved", zap.String("path", t.path), zap.Int64("bytes", t.doc.Len()))
}

func (t *terminal) prevRune() buffer.ByteOffset {
	caret := t.doc.Caret()
	_, size := utf8.DecodeLastRuneInString(t.doc.Substr(buffer.NewRange(0, caret)))
	return caret - buffer.ByteOffset(size)
}

func (t *terminal) nextRune() buffer.ByteOffset {
	caret := t.doc.Caret()
	_, size := utf8.DecodeRuneInString(t.doc.Substr(buffer.NewRange(caret, t.doc.Len())))
	return caret + buffer.ByteOffset(size)
}

// verticalTarget returns the offset dir lines away at the caret's column.
func (t *terminal) verticalTarget(dir int) buffer.ByteOffset {
	caret := t.doc.Caret()
	line := t.doc.Line(caret)
	col := t.width(t.doc.Substr(buffer.NewRange(line.Start, caret)))

	var target buffer.Range
	switch {
	case dir < 0 && line.Start == 0:
		return 0
	case dir < 0:
		target = t.doc.Line(line.Start - 1)
	case line.End >= t.doc.Len():
		return t.doc.Len()
	default:
		target = t.doc.Line(line.End + 1)
	}

	text := t.doc.Substr(target)
	g := uniseg.NewGraphemes(text)
	x := 0
	for g.Next() {
		w := t.width(g.Str())
		if x+w > col {
			from, _ := g.Positions()
			return target.Start + buffer.ByteOffset(from)
		}
		x += w
	}
	return target.End
}

// width returns the display width of s, with tabs expanded.
func (t *terminal) width(s string) int {
	tab := t.ed.Config().Editor.TabWidth
	n := 0
	for _, part := range strings.SplitAfter(s, "\t") {
		if strings.HasSuffix(part, "\t") {
			n += uniseg.StringWidth(strings.TrimSuffix(part, "\t"))
			n += tab - n%tab
			continue
		}
		n += uniseg.StringWidth(part)
	}
	return n
}

// locate maps pt to screen coordinates, for the caret and for previews.
func (t *terminal) locate(pt buffer.ByteOffset) (x, y int) {
	line := t.doc.Line(pt)
	row := strings.Count(t.doc.Substr(buffer.NewRange(0, line.Start)), "\n")
	return t.width(t.doc.Substr(buffer.NewRange(line.Start, pt))), row - t.top
}

func (t *terminal) draw() {
	width, height := t.screen.Size()
	rows := max(height-1, 1)

	_, caretRow := t.locate(t.doc.Caret())
	caretRow += t.top
	switch {
	case caretRow < t.top:
		t.top = caretRow
	case caretRow >= t.top+rows:
		t.top = caretRow - rows + 1
	}

	t.screen.Clear()
	lines := strings.Split(t.doc.Text(), "\n")
	for y := 0; y < rows && t.top+y < len(lines); y++ {
		t.drawLine(y, lines[t.top+y], tcell.StyleDefault)
	}

	status := t.doc.Name()
	if t.dirty {
		status += " [+]"
	}
	if t.status != "" {
		status += "  " + t.status
	}
	bar := tcell.StyleDefault.Reverse(true)
	for x := range width {
		t.screen.SetContent(x, height-1, ' ', nil, bar)
	}
	t.drawLine(height-1, status, bar)

	// The screen beneath any preview was just repainted.
	t.pv.Invalidate()
	if p := t.doc.Preview(); p.Visible {
		if m, ok := t.doc.Marker(); ok {
			t.pv.Toggle(m, p.Caret, p.Block)
		}
	}

	x, y := t.locate(t.doc.Caret())
	t.screen.ShowCursor(x, y)
	t.screen.Show()
}

func (t *terminal) drawLine(y int, text string, style tcell.Style) {
	width, _ := t.screen.Size()
	tab := t.ed.Config().Editor.TabWidth
	x := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() && x < width {
		runes := g.Runes()
		if runes[0] == '\t' {
			x += tab - x%tab
			continue
		}
		t.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
}
