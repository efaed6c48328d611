package preview

import (
	"errors"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/abbrmark/internal/emmet"
	"github.com/dshills/abbrmark/internal/engine/buffer"
	"github.com/dshills/abbrmark/internal/marker"
)

// Locator maps a buffer offset to screen coordinates.
type Locator func(pt buffer.ByteOffset) (x, y int)

// Styles are the styles used to draw previews.
type Styles struct {
	Text   tcell.Style
	Border tcell.Style
	Error  tcell.Style
}

// DefaultStyles returns dimmed text with a red error style.
func DefaultStyles() Styles {
	return Styles{
		Text:   tcell.StyleDefault.Dim(true),
		Border: tcell.StyleDefault.Foreground(tcell.ColorGray),
		Error:  tcell.StyleDefault.Foreground(tcell.ColorRed),
	}
}

// tabText replaces tabs in preview text.
const tabText = "  "

type cellPos struct{ x, y int }

type savedCell struct {
	mainc rune
	combc []rune
	style tcell.Style
}

// Screen draws previews over the cells of a tcell screen. The cells it
// covers are saved and put back when the preview is hidden or redrawn.
type Screen struct {
	mu      sync.Mutex
	screen  tcell.Screen
	locate  Locator
	styles  Styles
	saved   map[cellPos]savedCell
	visible bool
}

// NewScreen creates a preview renderer. locate positions the preview
// relative to the text it describes.
func NewScreen(screen tcell.Screen, locate Locator, styles Styles) *Screen {
	return &Screen{
		screen: screen,
		locate: locate,
		styles: styles,
		saved:  make(map[cellPos]savedCell),
	}
}

// Toggle implements Controller. The preview starts on the row below the
// caret, aligned with the start of the marker.
func (s *Screen) Toggle(m marker.Marker, caret buffer.ByteOffset, block bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.restoreLocked()

	lines, failed := previewLines(m)
	x, _ := s.locate(m.Region().Start)
	_, y := s.locate(caret)

	style := s.styles.Text
	if failed {
		style = s.styles.Error
	}
	if block {
		s.drawBlock(x, y+1, lines, style, m.IsStylesheet() && !failed)
	} else {
		for i, line := range lines {
			s.drawText(x, y+1+i, line, style)
		}
	}
	s.visible = true
	s.screen.Show()
}

// Hide implements Controller.
func (s *Screen) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.visible {
		return
	}
	s.restoreLocked()
	s.screen.Show()
}

// Invalidate forgets the covered cells. Call it after repainting the
// screen, so the next Toggle or Hide does not restore stale content.
func (s *Screen) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.saved)
	s.visible = false
}

// Visible reports whether a preview is drawn.
func (s *Screen) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

var _ Controller = (*Screen)(nil)

func (s *Screen) restoreLocked() {
	for pos, c := range s.saved {
		s.screen.SetContent(pos.x, pos.y, c.mainc, c.combc, c.style)
	}
	clear(s.saved)
	s.visible = false
}

func (s *Screen) drawBlock(x, y int, lines []string, style tcell.Style, swatches bool) {
	inner := 0
	for _, line := range lines {
		inner = max(inner, uniseg.StringWidth(line))
	}

	colors := make([]tcell.Color, len(lines))
	if swatches {
		found := false
		for i, line := range lines {
			if c, ok := hexColor(line); ok {
				colors[i] = c
				found = true
			}
		}
		if found {
			inner += 3
		}
	}

	border := s.styles.Border
	s.drawText(x, y, "┌"+strings.Repeat("─", inner+2)+"┐", border)
	for i, line := range lines {
		row := y + 1 + i
		s.drawText(x, row, "│ ", border)
		s.drawText(x+2, row, line, style)
		if colors[i] != tcell.ColorDefault {
			swatch := tcell.StyleDefault.Background(colors[i])
			s.drawText(x+2+inner-2, row, "  ", swatch)
		}
		s.drawText(x+2+inner, row, " │", border)
	}
	s.drawText(x, y+1+len(lines), "└"+strings.Repeat("─", inner+2)+"┘", border)
}

// drawText draws text from column x, clipped to the screen. It returns the
// column after the last cell drawn.
func (s *Screen) drawText(x, y int, text string, style tcell.Style) int {
	width, height := s.screen.Size()
	if y < 0 || y >= height {
		return x
	}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		if x >= 0 {
			runes := g.Runes()
			s.save(x, y)
			s.screen.SetContent(x, y, runes[0], runes[1:], style)
			for i := 1; i < w; i++ {
				s.save(x+i, y)
			}
		}
		x += w
	}
	return x
}

func (s *Screen) save(x, y int) {
	pos := cellPos{x, y}
	if _, ok := s.saved[pos]; ok {
		return
	}
	mainc, combc, style, _ := s.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	s.saved[pos] = savedCell{mainc: mainc, combc: combc, style: style}
}

// previewLines returns the lines to draw for m and whether they describe
// an error.
func previewLines(m marker.Marker) ([]string, bool) {
	if m.Valid() {
		snippet, _ := m.Snippet()
		text, _ := emmet.PlainSnippet(snippet)
		text = strings.ReplaceAll(text, "\t", tabText)
		return strings.Split(text, "\n"), false
	}

	lines := []string{m.Abbreviation()}
	var perr *emmet.ParseError
	switch {
	case errors.As(m.Err(), &perr):
		if p := perr.Pointer(); p != "" {
			lines = append(lines, p)
		}
		lines = append(lines, perr.Msg)
	case m.Err() != nil:
		lines = append(lines, m.Err().Error())
	}
	return lines, true
}

// hexColor finds the first "#rgb" or "#rrggbb" colour in text.
func hexColor(text string) (tcell.Color, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '#' {
			continue
		}
		n := 0
		for i+1+n < len(text) && isHex(text[i+1+n]) {
			n++
		}
		hex := text[i+1 : i+1+n]
		switch n {
		case 3:
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		case 6:
		default:
			continue
		}
		c, err := colorful.Hex("#" + hex)
		if err != nil {
			continue
		}
		r, g, b := c.RGB255()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b)), true
	}
	return tcell.ColorDefault, false
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
