package app

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/dshills/abbrmark/internal/engine/buffer"
)

// Script is a recorded editing session: a starting document and the
// commands run against it.
//
// The JSON form is
//
//	{
//	  "name": "list",
//	  "syntax": "html",
//	  "text": "",
//	  "caret": 0,
//	  "steps": [
//	    {"type": "ul>li*3"},
//	    {"command": "expand_abbreviation"},
//	    {"command": "move", "args": {"by": -2}}
//	  ]
//	}
//
// A "type" step inserts its text one character at a time, the way a user
// would type it.
type Script struct {
	Name   string
	Syntax string
	Text   string
	Caret  buffer.ByteOffset
	Steps  []Command
}

// ParseScript decodes a JSON script.
func ParseScript(data []byte) (*Script, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidScript)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidScript)
	}

	s := &Script{
		Name:   root.Get("name").String(),
		Syntax: root.Get("syntax").String(),
		Text:   root.Get("text").String(),
		Caret:  root.Get("caret").Int(),
	}
	if s.Name == "" {
		s.Name = "script"
	}
	if s.Syntax == "" {
		s.Syntax = "html"
	}
	if s.Caret < 0 || s.Caret > buffer.ByteOffset(len(s.Text)) {
		return nil, fmt.Errorf("%w: caret %d outside text", ErrInvalidScript, s.Caret)
	}

	var err error
	root.Get("steps").ForEach(func(key, step gjson.Result) bool {
		if typed := step.Get("type"); typed.Exists() {
			for _, r := range typed.String() {
				s.Steps = append(s.Steps, NewCommand(CmdInsert, "text", string(r)))
			}
			return true
		}
		name := step.Get("command").String()
		if name == "" {
			err = fmt.Errorf("%w: step %s has neither type nor command", ErrInvalidScript, key)
			return false
		}
		cmd := Command{Name: name}
		if args := step.Get("args"); args.IsObject() {
			cmd.Args = make(Args)
			args.ForEach(func(k, v gjson.Result) bool {
				cmd.Args[k.String()] = v.Value()
				return true
			})
		}
		s.Steps = append(s.Steps, cmd)
		return true
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MarkerState describes the attached marker after a step.
type MarkerState struct {
	Abbreviation string
	Region       buffer.Range
	Status       string
}

// Frame is the document state after one replayed step.
type Frame struct {
	Step        int
	Command     string
	Text        string
	Caret       buffer.ByteOffset
	Marker      *MarkerState
	Preview     PreviewState
	Completions []string
	Err         string
}

// Replay runs s in a fresh document of ed and returns one frame per step.
// A failing step is recorded in its frame and the replay continues.
func Replay(ed *Editor, s *Script) ([]Frame, error) {
	doc := ed.Open(s.Text, WithName(s.Name), WithSyntax(s.Syntax), WithCaret(s.Caret))
	defer func() { _ = ed.CloseDocument(doc.ID()) }()

	frames := make([]Frame, 0, len(s.Steps))
	for i, cmd := range s.Steps {
		f := Frame{Step: i, Command: cmd.String()}
		if err := ed.Execute(doc, cmd); err != nil {
			f.Err = err.Error()
			if errors.Is(err, ErrUnknownCommand) {
				ed.Logger().Warn("replay step skipped", zap.Int("step", i), zap.String("command", cmd.Name))
			}
		}
		f.Text = doc.Text()
		f.Caret = doc.Caret()
		if m, ok := doc.Marker(); ok {
			f.Marker = &MarkerState{
				Abbreviation: m.Abbreviation(),
				Region:       m.Region(),
				Status:       m.Status().String(),
			}
		}
		f.Preview = doc.Preview()
		for _, c := range doc.Completions() {
			f.Completions = append(f.Completions, c.Label())
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// Report renders frames as indented JSON.
func Report(name string, frames []Frame) ([]byte, error) {
	out := []byte(`{"frames":[]}`)
	out, err := sjson.SetBytes(out, "name", name)
	if err != nil {
		return nil, err
	}

	var failed int
	for _, f := range frames {
		frame, err := frameJSON(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.Step, err)
		}
		if out, err = sjson.SetRawBytes(out, "frames.-1", frame); err != nil {
			return nil, err
		}
		if f.Err != "" {
			failed++
		}
	}
	if out, err = sjson.SetBytes(out, "summary.steps", len(frames)); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "summary.failed", failed); err != nil {
		return nil, err
	}
	return pretty.Pretty(out), nil
}

type jsonField struct {
	path  string
	value any
}

func frameJSON(f Frame) ([]byte, error) {
	fields := []jsonField{
		{"step", f.Step},
		{"command", f.Command},
		{"text", f.Text},
		{"caret", f.Caret},
		{"preview.visible", f.Preview.Visible},
	}
	if f.Preview.Visible {
		fields = append(fields,
			jsonField{"preview.abbreviation", f.Preview.Abbreviation},
			jsonField{"preview.block", f.Preview.Block},
		)
	}
	if f.Marker != nil {
		fields = append(fields,
			jsonField{"marker.abbreviation", f.Marker.Abbreviation},
			jsonField{"marker.region", []int64{f.Marker.Region.Start, f.Marker.Region.End}},
			jsonField{"marker.status", f.Marker.Status},
		)
	}
	if len(f.Completions) > 0 {
		fields = append(fields, jsonField{"completions", f.Completions})
	}
	if f.Err != "" {
		fields = append(fields, jsonField{"error", f.Err})
	}

	out := []byte(`{}`)
	for _, fl := range fields {
		var err error
		if out, err = sjson.SetBytes(out, fl.path, fl.value); err != nil {
			return nil, err
		}
	}
	if f.Marker == nil {
		return sjson.SetRawBytes(out, "marker", []byte("null"))
	}
	return out, nil
}
