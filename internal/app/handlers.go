package app

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/engine/cursor"
	"github.com/dshills/abbrmark/internal/tag"
)

// pairs maps the characters auto-pairing closes to their closers.
var pairs = map[byte]byte{'(': ')', '[': ']', '{': '}', '"': '"', '\'': '\''}

func isCloser(c byte) bool {
	return c == ')' || c == ']' || c == '}' || c == '"' || c == '\''
}

// registerBuiltins registers the standard command handlers.
func registerBuiltins(e *Editor) {
	e.Register(CmdInsert, handleInsert)
	e.Register(CmdLeftDelete, handleLeftDelete)
	e.Register(CmdMove, handleMove)
	e.Register(CmdSelect, handleSelect)
	e.Register(CmdUndo, handleUndo)
	e.Register(CmdRedo, handleRedo)
	e.Register(CmdExpand, handleExpand)
	e.Register(CmdRemoveTag, handleRemoveTag)
	e.Register(CmdAutoComplete, handleAutoComplete)
	e.Register(CmdCommitCompletion, handleCommitCompletion)
	e.Register(CmdEnterAbbreviation, handleEnterAbbreviation)
	e.Register(CmdCancelAbbreviation, handleCancelAbbreviation)
}

// handleInsert types args["text"] over the primary selection. A single
// opening bracket or quote typed at a caret gets its closer, and typing a
// closer right before the same character steps over it.
func handleInsert(d *Document, args Args) error {
	text, ok, err := args.String("text")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing text", ErrInvalidArgument)
	}

	sel := d.eng.Selections()[0].Range()
	var closer string
	if d.editor.Config().Editor.AutoPair && sel.IsEmpty() && len(text) == 1 {
		next, hasNext := d.eng.Buffer().ByteAt(sel.Start)
		if hasNext && next == text[0] && isCloser(next) {
			d.eng.MoveTo(sel.Start + 1)
			d.session.SelectionModified(d.Caret())
			return nil
		}
		if c, ok := pairs[text[0]]; ok {
			closer = string(c)
		}
	}

	err = d.eng.Edit(CmdInsert, func() error {
		if _, err := d.eng.Replace(sel, text+closer); err != nil {
			return err
		}
		d.eng.MoveTo(sel.Start + buffer.ByteOffset(len(text)))
		return nil
	})
	if err != nil {
		return err
	}
	d.edited()
	return nil
}

// handleLeftDelete erases the primary selection, or the character before
// the caret. Deleting between an auto-paired opener and its closer erases
// both.
func handleLeftDelete(d *Document, _ Args) error {
	sel := d.eng.Selections()[0].Range()
	if sel.IsEmpty() {
		if sel.Start == 0 {
			return nil
		}
		before := d.eng.Substr(buffer.NewRange(0, sel.Start))
		_, size := utf8.DecodeLastRuneInString(before)
		sel.Start -= buffer.ByteOffset(size)

		prev, _ := d.eng.Buffer().ByteAt(sel.Start)
		next, hasNext := d.eng.Buffer().ByteAt(sel.End)
		if c, ok := pairs[prev]; ok && hasNext && next == c && d.editor.Config().Editor.AutoPair {
			sel.End++
		}
	}

	err := d.eng.Edit(CmdLeftDelete, func() error {
		return d.eng.Delete(sel)
	})
	if err != nil {
		return err
	}
	d.edited()
	return nil
}

// handleMove moves the caret to args["to"], or by args["by"].
func handleMove(d *Document, args Args) error {
	to, hasTo, err := args.Int("to")
	if err != nil {
		return err
	}
	by, hasBy, err := args.Int("by")
	if err != nil {
		return err
	}
	switch {
	case hasTo:
	case hasBy:
		to = d.Caret() + by
	default:
		return fmt.Errorf("%w: move needs to or by", ErrInvalidArgument)
	}
	d.eng.MoveTo(max(to, 0))
	d.session.SelectionModified(d.Caret())
	return nil
}

// handleSelect selects from args["anchor"] to args["head"].
func handleSelect(d *Document, args Args) error {
	anchor, okA, err := args.Int("anchor")
	if err != nil {
		return err
	}
	head, okH, err := args.Int("head")
	if err != nil {
		return err
	}
	if !okA || !okH {
		return fmt.Errorf("%w: select needs anchor and head", ErrInvalidArgument)
	}
	d.eng.SetSelections(cursor.NewSelection(max(anchor, 0), max(head, 0)))
	d.session.SelectionModified(d.Caret())
	return nil
}

// handleUndo reverts the last edit group. The session learns about it from
// the post-command hook, not as a text change.
func handleUndo(d *Document, _ Args) error {
	return d.session.Quiet(func() error {
		_, err := d.eng.Undo()
		return err
	})
}

func handleRedo(d *Document, _ Args) error {
	return d.session.Quiet(func() error {
		_, err := d.eng.Redo()
		return err
	})
}

// handleExpand replaces the abbreviation under the caret with its
// expansion, as one undo group.
func handleExpand(d *Document, _ Args) error {
	return d.eng.Edit(CmdExpand, func() error {
		return d.session.Expand(d.Caret())
	})
}

// handleRemoveTag removes the innermost tag pair around the caret.
func handleRemoveTag(d *Document, _ Args) error {
	t, ok := tag.Find(d.Text(), d.Caret())
	if !ok {
		return ErrNoTag
	}
	err := d.eng.Edit(CmdRemoveTag, func() error {
		return tag.Remove(d.eng, t)
	})
	if err != nil {
		return err
	}
	d.edited()
	return nil
}

// handleAutoComplete queries completions at the caret.
func handleAutoComplete(d *Document, _ Args) error {
	d.completions = d.session.QueryCompletions(d.Caret())
	return nil
}

// handleCommitCompletion inserts completion args["index"], zero by
// default, from the last auto_complete. The marker is already gone: the
// tracker disposes it before the command runs.
func handleCommitCompletion(d *Document, args Args) error {
	idx, _, err := args.Int("index")
	if err != nil {
		return err
	}
	if idx < 0 || idx >= int64(len(d.completions)) {
		return fmt.Errorf("%w: index %d of %d", ErrNoCompletion, idx, len(d.completions))
	}
	item := d.completions[idx]
	d.completions = nil

	err = d.eng.Edit(CmdCommitCompletion, func() error {
		return d.session.Quiet(func() error {
			return d.ReplaceWithSnippet(item.Range, item.Snippet)
		})
	})
	if errors.Is(err, buffer.ErrRangeInvalid) {
		return fmt.Errorf("%w: completion range %s is stale", ErrNoCompletion, item.Range)
	}
	return err
}

// handleEnterAbbreviation starts a forced marker over the primary
// selection. It is tracked even while empty, so an abbreviation can be
// typed where typing alone would not start one.
func handleEnterAbbreviation(d *Document, _ Args) error {
	return d.session.Force(d.eng.Selections()[0].Range(), d.Caret())
}

// handleCancelAbbreviation stops tracking. Text typed into a forced marker
// is removed, as one undo group.
func handleCancelAbbreviation(d *Document, _ Args) error {
	return d.eng.Edit(CmdCancelAbbreviation, d.session.Cancel)
}
