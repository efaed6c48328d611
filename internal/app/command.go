package app

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Built-in command names.
const (
	CmdInsert             = "insert"
	CmdLeftDelete         = "left_delete"
	CmdMove               = "move"
	CmdSelect             = "select"
	CmdUndo               = "undo"
	CmdRedo               = "redo"
	CmdExpand             = "expand_abbreviation"
	CmdRemoveTag          = "remove_tag"
	CmdAutoComplete       = "auto_complete"
	CmdCommitCompletion   = "commit_completion"
	CmdEnterAbbreviation  = "enter_abbreviation_mode"
	CmdCancelAbbreviation = "cancel_abbreviation"
)

// Command is a named request against a document.
type Command struct {
	Name string
	Args Args
}

// NewCommand creates a command from alternating key/value pairs.
func NewCommand(name string, kv ...any) Command {
	cmd := Command{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if cmd.Args == nil {
			cmd.Args = make(Args)
		}
		cmd.Args[key] = kv[i+1]
	}
	return cmd
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, 0, len(c.Args))
	for _, k := range slices.Sorted(maps.Keys(c.Args)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c.Args[k]))
	}
	return c.Name + "(" + strings.Join(parts, ",") + ")"
}

// Args holds command arguments. Numbers may arrive as any integer or
// float type, as produced by JSON decoding.
type Args map[string]any

// Int returns the integer argument key.
func (a Args) Int(key string) (int64, bool, error) {
	v, ok := a[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, true, fmt.Errorf("%w: %s=%v is not an integer", ErrInvalidArgument, key, v)
		}
		return int64(n), true, nil
	default:
		return 0, true, fmt.Errorf("%w: %s=%v is not a number", ErrInvalidArgument, key, v)
	}
}

// String returns the string argument key.
func (a Args) String(key string) (string, bool, error) {
	v, ok := a[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, fmt.Errorf("%w: %s=%v is not a string", ErrInvalidArgument, key, v)
	}
	return s, true, nil
}

// Handler executes a command against a document.
type Handler func(doc *Document, args Args) error
