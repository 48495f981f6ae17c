package terminal

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ---------------------------------------------------------------------------
// Renderer adapter – project screen + copy mode onto a host buffer
// ---------------------------------------------------------------------------

// Rect is a rectangle in host cell coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Surface is the abstract cell buffer the host draws. Paint writes at
// most Width×Height cells into it and leaves everything else alone.
// An empty text means a blank cell.
type Surface interface {
	SetCell(x, y int, text string, attrs Attrs)
}

// CursorRequest is where and how the host should place its cursor.
// Visible is false when the cursor is hidden, scrolled out of the
// viewport, or copy mode is showing a snapshot.
type CursorRequest struct {
	X, Y    int
	Style   CursorStyle
	Visible bool
}

// Paint projects the visible rows of screen (or of the frozen snapshot
// while copy mode is active), the selection overlay and the cursor
// onto dst. Styling is translated verbatim; the selection and the
// copy cursor are conveyed by flipping the inverse attribute.
func Paint(screen *Screen, cm *CopyMode, dst Surface, area Rect) CursorRequest {
	src := screen
	if cm.Active() {
		src = cm.Frozen()
	}
	g := src.ActiveGrid()

	rows := min(g.ScreenRows(), area.Height)
	cols := min(g.Cols(), area.Width)
	offset := g.ViewOffset()

	low, high, haveSel := CopyPos{}, CopyPos{}, false
	if cm.Active() {
		low, high, haveSel = cm.Selection()
	}

	for v := 0; v < rows; v++ {
		ys := v - offset
		row := g.RowAt(ys)
		for x := 0; x < cols; x++ {
			var cell Cell
			if row != nil {
				cell = row.Cell(x)
			}
			if cell.IsWideContinuation() {
				continue
			}
			attrs := cell.Attrs()
			if haveSel && inSelection(low, high, ys, x) {
				attrs.Flags ^= AttrInverse
			}
			if cm.Active() {
				if c := cm.Cursor(); c.Y == ys && c.X == x {
					attrs.Flags ^= AttrInverse
				}
			}
			dst.SetCell(area.X+x, area.Y+v, cell.Text(), attrs)
		}
	}

	return cursorRequest(src, cm, area, rows, cols, offset)
}

func cursorRequest(src *Screen, cm *CopyMode, area Rect, rows, cols, offset int) CursorRequest {
	if cm.Active() || !src.Mode(ModeCursorVisible) {
		return CursorRequest{Style: src.CursorStyle()}
	}
	c := src.CursorPos()
	v := c.Row + offset
	if v >= rows || c.Col >= cols {
		return CursorRequest{Style: src.CursorStyle()}
	}
	return CursorRequest{
		X:       area.X + c.Col,
		Y:       area.Y + v,
		Style:   src.CursorStyle(),
		Visible: true,
	}
}

// inSelection reports whether snapshot cell (y, x) falls inside the
// row-major inclusive range [low, high].
func inSelection(low, high CopyPos, y, x int) bool {
	if y < low.Y || y > high.Y {
		return false
	}
	if y == low.Y && x < low.X {
		return false
	}
	if y == high.Y && x > high.X {
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// String rendering – for hosts that compose frames from text
// ---------------------------------------------------------------------------

// cellBuffer is the Surface behind RenderString.
type cellBuffer struct {
	width, height int
	text          []string
	attrs         []Attrs
}

func newCellBuffer(width, height int) *cellBuffer {
	return &cellBuffer{
		width:  width,
		height: height,
		text:   make([]string, width*height),
		attrs:  make([]Attrs, width*height),
	}
}

func (b *cellBuffer) SetCell(x, y int, text string, attrs Attrs) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := y*b.width + x
	b.text[i] = text
	b.attrs[i] = attrs
}

// RenderString paints the session into a width×height buffer and
// serialises it as ANSI-styled lines, resetting the rendition at each
// line break. The terminal cursor is shown by inverting its cell,
// since a string frame cannot move the host cursor.
func RenderString(screen *Screen, cm *CopyMode, width, height int) string {
	buf := newCellBuffer(width, height)
	cur := Paint(screen, cm, buf, Rect{Width: width, Height: height})
	if cur.Visible {
		i := cur.Y*width + cur.X
		buf.attrs[i].Flags ^= AttrInverse
	}

	var out strings.Builder
	out.Grow(width*height + height*8)
	for y := 0; y < height; y++ {
		if y > 0 {
			out.WriteString("\x1b[0m\n")
		}
		prev := Attrs{}
		first := true
		for x := 0; x < width; x++ {
			i := y*width + x
			a := buf.attrs[i]
			if first || a != prev {
				out.WriteString(sgrSequence(a))
				prev = a
				first = false
			}
			t := buf.text[i]
			if t == "" {
				t = " "
			}
			out.WriteString(t)
			// Wide glyphs cover the following cell, which Paint left
			// untouched.
			if runewidth.StringWidth(t) == 2 {
				x++
			}
		}
	}
	out.WriteString("\x1b[0m")
	return out.String()
}

// sgrSequence produces the escape sequence selecting the given
// rendition from a reset state.
func sgrSequence(a Attrs) string {
	parts := []string{"0"}
	if a.Has(AttrBold) {
		parts = append(parts, "1")
	}
	if a.Has(AttrDim) {
		parts = append(parts, "2")
	}
	if a.Has(AttrItalic) {
		parts = append(parts, "3")
	}
	if a.Has(AttrUnderline) {
		parts = append(parts, "4")
	}
	if a.Has(AttrBlink) {
		parts = append(parts, "5")
	}
	if a.Has(AttrInverse) {
		parts = append(parts, "7")
	}
	if a.Has(AttrStrike) {
		parts = append(parts, "9")
	}
	parts = appendColor(parts, a.FG, 38, 30, 90)
	parts = appendColor(parts, a.BG, 48, 40, 100)
	return "\x1b[" + strings.Join(parts, ";") + "m"
}

func appendColor(parts []string, c Color, ext, std, bright int) []string {
	switch {
	case c.IsDefault():
		return parts
	case c.IsIndexed():
		n := int(c.Index())
		if n < 8 {
			return append(parts, fmt.Sprintf("%d", std+n))
		}
		if n < 16 {
			return append(parts, fmt.Sprintf("%d", bright+n-8))
		}
		return append(parts, fmt.Sprintf("%d;5;%d", ext, n))
	default:
		r, g, b := c.RGB()
		return append(parts, fmt.Sprintf("%d;2;%d;%d;%d", ext, r, g, b))
	}
}
