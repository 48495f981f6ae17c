package terminal

import (
	"strings"

	"github.com/rivo/uniseg"
)

// ---------------------------------------------------------------------------
// Grid – screen rows + scrollback, cursor, scroll region
// ---------------------------------------------------------------------------

// Pos is a 0-indexed cursor position on the visible screen.
type Pos struct {
	Row int
	Col int
}

// SavedCursor is the state captured by DECSC and restored by DECRC.
type SavedCursor struct {
	Row         int
	Col         int
	Attrs       Attrs
	PendingWrap bool
	Origin      bool
}

// Grid stores the cells of one screen layer: the visible rows plus a
// bounded scrollback of evicted rows. The row slice holds scrollback
// first; the last ScreenRows entries are the visible screen.
//
// Grid knows geometry only. Escape-sequence semantics live in Screen.
type Grid struct {
	rows       []Row
	cols       int
	screenRows int

	scrollbackCap int

	cursor      Pos
	pendingWrap bool
	saved       *SavedCursor

	// Scroll region, 0-indexed inclusive.
	top    int
	bottom int

	// How far the user has scrolled the view above the live bottom.
	// View state, not content state.
	viewOffset   int
	followOutput bool

	tabStops []bool
}

// NewGrid allocates a blank grid of the given dimensions.
func NewGrid(rows, cols, scrollbackCap int) *Grid {
	g := &Grid{
		cols:          cols,
		screenRows:    rows,
		scrollbackCap: scrollbackCap,
		bottom:        rows - 1,
		followOutput:  true,
	}
	g.rows = make([]Row, rows)
	for i := range g.rows {
		g.rows[i] = newRow(cols)
	}
	g.tabStops = defaultTabStops(cols)
	return g
}

func defaultTabStops(cols int) []bool {
	stops := make([]bool, cols)
	for i := 8; i < cols; i += 8 {
		stops[i] = true
	}
	return stops
}

// Cols returns the column count.
func (g *Grid) Cols() int { return g.cols }

// ScreenRows returns the visible row count.
func (g *Grid) ScreenRows() int { return g.screenRows }

// ScrollbackLen returns the number of history rows above the screen.
func (g *Grid) ScrollbackLen() int { return len(g.rows) - g.screenRows }

// Cursor returns the cursor position.
func (g *Grid) Cursor() Pos { return g.cursor }

// PendingWrap reports whether the next printable character wraps first.
func (g *Grid) PendingWrap() bool { return g.pendingWrap }

// ClearPendingWrap drops a pending wrap, as explicit cursor motion does.
func (g *Grid) ClearPendingWrap() { g.pendingWrap = false }

// ViewOffset returns how many rows above the bottom the view sits.
func (g *Grid) ViewOffset() int { return g.viewOffset }

// SetFollowOutput controls whether new output snaps the view back to
// the live bottom.
func (g *Grid) SetFollowOutput(follow bool) { g.followOutput = follow }

// ScrollRegion returns the inclusive (top, bottom) scroll region.
func (g *Grid) ScrollRegion() (int, int) { return g.top, g.bottom }

// screenRow returns the visible row r. Out of bounds returns nil.
func (g *Grid) screenRow(r int) *Row {
	if r < 0 || r >= g.screenRows {
		return nil
	}
	return &g.rows[g.ScrollbackLen()+r]
}

// ScreenRow returns the visible row r, or nil if out of bounds.
func (g *Grid) ScreenRow(r int) *Row { return g.screenRow(r) }

// RowAt addresses rows in snapshot coordinates: y in
// [-ScrollbackLen, ScreenRows-1], where negative y reaches into
// scrollback. Out of range returns nil.
func (g *Grid) RowAt(y int) *Row {
	idx := g.ScrollbackLen() + y
	if idx < 0 || idx >= len(g.rows) {
		return nil
	}
	return &g.rows[idx]
}

// CellAt returns the cell at the cursor-space position. Out of bounds
// returns a blank cell.
func (g *Grid) CellAt(row, col int) Cell {
	r := g.screenRow(row)
	if r == nil {
		return EmptyCell()
	}
	return r.Cell(col)
}

// SetCursor moves the cursor, clamped to the screen.
func (g *Grid) SetCursor(row, col int) {
	g.cursor = Pos{Row: clamp(row, 0, g.screenRows-1), Col: clamp(col, 0, g.cols-1)}
	g.pendingWrap = false
}

// SetCol moves the cursor column, clamped.
func (g *Grid) SetCol(col int) {
	g.cursor.Col = clamp(col, 0, g.cols-1)
}

// SetRow moves the cursor row, clamped.
func (g *Grid) SetRow(row int) {
	g.cursor.Row = clamp(row, 0, g.screenRows-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ---------------------------------------------------------------------------
// Saved cursor
// ---------------------------------------------------------------------------

// SaveCursor records the cursor, attributes and wrap state.
func (g *Grid) SaveCursor(attrs Attrs, origin bool) {
	g.saved = &SavedCursor{
		Row:         g.cursor.Row,
		Col:         g.cursor.Col,
		Attrs:       attrs,
		PendingWrap: g.pendingWrap,
		Origin:      origin,
	}
}

// RestoreCursor reinstates a previously saved cursor. The returned
// attributes and origin flag belong to the interpreter; ok is false
// when nothing was saved.
func (g *Grid) RestoreCursor() (attrs Attrs, origin bool, ok bool) {
	if g.saved == nil {
		return Attrs{}, false, false
	}
	s := g.saved
	g.cursor = Pos{Row: clamp(s.Row, 0, g.screenRows-1), Col: clamp(s.Col, 0, g.cols-1)}
	g.pendingWrap = s.PendingWrap
	return s.Attrs, s.Origin, true
}

// ---------------------------------------------------------------------------
// Scroll region and vertical motion
// ---------------------------------------------------------------------------

// SetScrollRegion sets the inclusive scroll region. top >= bottom is a
// no-op; bounds are clamped to the screen.
func (g *Grid) SetScrollRegion(top, bottom int) {
	top = clamp(top, 0, g.screenRows-1)
	bottom = clamp(bottom, 0, g.screenRows-1)
	if top >= bottom {
		return
	}
	g.top = top
	g.bottom = bottom
}

// Index performs a line feed: at the region bottom the region scrolls
// up one row, otherwise the cursor moves down (stopping at the screen
// edge outside the region).
func (g *Grid) Index() {
	if g.cursor.Row == g.bottom {
		g.ScrollUp(1)
	} else if g.cursor.Row < g.screenRows-1 {
		g.cursor.Row++
	}
}

// ReverseIndex is the mirror of Index at the region top.
func (g *Grid) ReverseIndex() {
	if g.cursor.Row == g.top {
		g.ScrollDown(1)
	} else if g.cursor.Row > 0 {
		g.cursor.Row--
	}
}

// ScrollUp moves region content up n rows. Rows evicted from a region
// covering the whole screen go to scrollback when the grid keeps one;
// otherwise they are discarded.
func (g *Grid) ScrollUp(n int) {
	if n <= 0 {
		return
	}
	if g.top == 0 && g.bottom == g.screenRows-1 && g.scrollbackCap > 0 {
		for i := 0; i < n; i++ {
			g.rows = append(g.rows, newRow(g.cols))
			if g.ScrollbackLen() > g.scrollbackCap {
				g.rows = g.rows[1:]
			}
		}
		if g.viewOffset > 0 {
			g.viewOffset = min(g.viewOffset+n, g.ScrollbackLen())
		}
		return
	}
	g.rotateUp(g.top, g.bottom, n)
}

// ScrollDown moves region content down n rows; discarded rows fall off
// the region bottom.
func (g *Grid) ScrollDown(n int) {
	if n <= 0 {
		return
	}
	g.rotateDown(g.top, g.bottom, n)
}

// rotateUp shifts rows in the inclusive visible range [top, bottom] up
// by n, blanking the freed rows at the bottom. Evicted rows are
// discarded.
func (g *Grid) rotateUp(top, bottom, n int) {
	if top >= bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	base := g.ScrollbackLen()
	for r := top; r <= bottom-n; r++ {
		g.rows[base+r] = g.rows[base+r+n]
	}
	for r := bottom - n + 1; r <= bottom; r++ {
		g.rows[base+r] = newRow(g.cols)
	}
}

// rotateDown shifts rows in [top, bottom] down by n, blanking the
// freed rows at the top.
func (g *Grid) rotateDown(top, bottom, n int) {
	if top >= bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	base := g.ScrollbackLen()
	for r := bottom; r >= top+n; r-- {
		g.rows[base+r] = g.rows[base+r-n]
	}
	for r := top; r < top+n; r++ {
		g.rows[base+r] = newRow(g.cols)
	}
}

// InsertLines opens n blank lines at the cursor row, pushing rows
// below it toward the region bottom. No effect outside the region.
func (g *Grid) InsertLines(n int) {
	if g.cursor.Row < g.top || g.cursor.Row > g.bottom {
		return
	}
	g.rotateDown(g.cursor.Row, g.bottom, n)
}

// DeleteLines removes n lines at the cursor row, pulling rows below it
// up and blanking the region bottom. No effect outside the region.
func (g *Grid) DeleteLines(n int) {
	if g.cursor.Row < g.top || g.cursor.Row > g.bottom {
		return
	}
	g.rotateUp(g.cursor.Row, g.bottom, n)
}

// ---------------------------------------------------------------------------
// Erase operations
// ---------------------------------------------------------------------------

// ClearBelow erases from the cursor to the end of the screen.
func (g *Grid) ClearBelow(attrs Attrs) {
	if row := g.screenRow(g.cursor.Row); row != nil {
		row.Erase(g.cursor.Col, g.cols, attrs)
		row.SetWrapped(false)
	}
	for r := g.cursor.Row + 1; r < g.screenRows; r++ {
		row := g.screenRow(r)
		row.Erase(0, g.cols, attrs)
		row.SetWrapped(false)
	}
}

// ClearAbove erases from the start of the screen through the cursor.
func (g *Grid) ClearAbove(attrs Attrs) {
	for r := 0; r < g.cursor.Row; r++ {
		row := g.screenRow(r)
		row.Erase(0, g.cols, attrs)
		row.SetWrapped(false)
	}
	if row := g.screenRow(g.cursor.Row); row != nil {
		row.Erase(0, g.cursor.Col+1, attrs)
	}
}

// ClearAll erases the entire visible screen. Scrollback is untouched
// and the cursor does not move.
func (g *Grid) ClearAll(attrs Attrs) {
	for r := 0; r < g.screenRows; r++ {
		row := g.screenRow(r)
		row.Erase(0, g.cols, attrs)
		row.SetWrapped(false)
	}
}

// ClearScrollback drops all history rows.
func (g *Grid) ClearScrollback() {
	sb := g.ScrollbackLen()
	if sb == 0 {
		return
	}
	g.rows = g.rows[sb:]
	g.viewOffset = 0
}

// Clear blanks screen and scrollback and homes the cursor.
func (g *Grid) Clear() {
	g.rows = make([]Row, g.screenRows)
	for i := range g.rows {
		g.rows[i] = newRow(g.cols)
	}
	g.cursor = Pos{}
	g.pendingWrap = false
	g.viewOffset = 0
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write places one grapheme cluster at the cursor with the given
// attributes, resolving a pending wrap first and splitting wide
// characters into a WideLeft/WideContinuation pair. Zero-width input
// merges into the previously written cell.
func (g *Grid) Write(text string, attrs Attrs, autoWrap bool) {
	width := uniseg.StringWidth(text)
	if width <= 0 {
		g.mergeCombining(text)
		return
	}
	if width > 2 {
		width = 2
	}

	if g.pendingWrap {
		g.pendingWrap = false
		if row := g.screenRow(g.cursor.Row); row != nil {
			row.SetWrapped(true)
		}
		g.Index()
		g.cursor.Col = 0
	}

	row := g.screenRow(g.cursor.Row)
	if row == nil {
		return
	}
	col := g.cursor.Col

	g.clearWidePair(row, col)
	if width == 2 {
		g.clearWidePair(row, col+1)
		row.SetCell(col, WideLeftCell(text, attrs))
		if col+1 < g.cols {
			row.SetCell(col+1, WideContinuationCell(attrs))
		}
	} else {
		row.SetCell(col, GlyphCell(text, attrs))
	}

	newCol := col + width
	if newCol >= g.cols {
		g.cursor.Col = g.cols - 1
		if autoWrap {
			g.pendingWrap = true
		}
	} else {
		g.cursor.Col = newCol
	}

	if g.followOutput {
		g.viewOffset = 0
	}
}

// mergeCombining appends a zero-width cluster to the cell the cursor
// last wrote into.
func (g *Grid) mergeCombining(text string) {
	row := g.screenRow(g.cursor.Row)
	if row == nil {
		return
	}
	col := g.cursor.Col
	if !g.pendingWrap {
		col--
	}
	if col < 0 {
		return
	}
	if row.Cell(col).IsWideContinuation() {
		col--
	}
	if col < 0 {
		return
	}
	c := row.Cell(col)
	if c.IsEmpty() || len(c.text)+len(text) > 16 {
		return
	}
	c.text += text
	row.SetCell(col, c)
}

// clearWidePair blanks the partner half when the cell at col belongs
// to a wide pair, so overwrites never leave an orphan continuation.
func (g *Grid) clearWidePair(row *Row, col int) {
	if col < 0 || col >= g.cols {
		return
	}
	c := row.Cell(col)
	if c.IsWideLeft() && col+1 < g.cols && row.Cell(col+1).IsWideContinuation() {
		row.SetCell(col+1, EmptyCell())
	}
	if c.IsWideContinuation() && col > 0 && row.Cell(col-1).IsWideLeft() {
		row.SetCell(col-1, EmptyCell())
	}
}

// ---------------------------------------------------------------------------
// Tab stops
// ---------------------------------------------------------------------------

// NextTabStop returns the column of the next tab stop after col, or
// the last column when none remains.
func (g *Grid) NextTabStop(col int) int {
	for c := col + 1; c < g.cols; c++ {
		if g.tabStops[c] {
			return c
		}
	}
	return g.cols - 1
}

// SetTabStop marks a tab stop at the cursor column (HTS).
func (g *Grid) SetTabStop() {
	if g.cursor.Col < len(g.tabStops) {
		g.tabStops[g.cursor.Col] = true
	}
}

// ClearTabStop removes the tab stop at the cursor column (TBC 0).
func (g *Grid) ClearTabStop() {
	if g.cursor.Col < len(g.tabStops) {
		g.tabStops[g.cursor.Col] = false
	}
}

// ClearAllTabStops removes every tab stop (TBC 3).
func (g *Grid) ClearAllTabStops() {
	for i := range g.tabStops {
		g.tabStops[i] = false
	}
}

// ---------------------------------------------------------------------------
// View scrolling
// ---------------------------------------------------------------------------

// ScrollViewUp moves the view up into scrollback by n rows.
func (g *Grid) ScrollViewUp(n int) {
	g.viewOffset = min(g.viewOffset+n, g.ScrollbackLen())
}

// ScrollViewDown moves the view back toward the live bottom by n rows.
func (g *Grid) ScrollViewDown(n int) {
	g.viewOffset = max(g.viewOffset-n, 0)
}

// ScrollViewToBottom snaps the view to the live screen.
func (g *Grid) ScrollViewToBottom() { g.viewOffset = 0 }

// ---------------------------------------------------------------------------
// Resize
// ---------------------------------------------------------------------------

// Resize clips or extends the grid to the new dimensions. Content is
// not reflowed: rows are truncated or padded on the right, and screen
// rows are dropped from or added at the bottom. Scrollback survives.
func (g *Grid) Resize(rows, cols int) {
	if rows < 1 || cols < 1 {
		return
	}
	if cols != g.cols {
		for i := range g.rows {
			g.rows[i].resizeTo(cols)
		}
		g.cols = cols
		g.tabStops = defaultTabStops(cols)
	}
	for rows < g.screenRows {
		g.rows = g.rows[:len(g.rows)-1]
		g.screenRows--
	}
	for rows > g.screenRows {
		g.rows = append(g.rows, newRow(cols))
		g.screenRows++
	}
	g.top = 0
	g.bottom = rows - 1
	g.cursor = Pos{Row: clamp(g.cursor.Row, 0, rows-1), Col: clamp(g.cursor.Col, 0, cols-1)}
	g.pendingWrap = false
	g.viewOffset = min(g.viewOffset, g.ScrollbackLen())
}

// ---------------------------------------------------------------------------
// Selection text extraction
// ---------------------------------------------------------------------------

// SelectedText concatenates the glyphs between the row-major low and
// high snapshot positions (inclusive). Trailing blanks on each row,
// the last one included, are trimmed and a newline separates rows unless the
// source row soft-wrapped. Rows outside the snapshot read as blank.
func (g *Grid) SelectedText(lowX, lowY, highX, highY int) string {
	if highY < lowY || (highY == lowY && highX < lowX) {
		lowX, lowY, highX, highY = highX, highY, lowX, lowY
	}
	var b strings.Builder
	for y := lowY; y <= highY; y++ {
		x0, x1 := 0, g.cols-1
		if y == lowY {
			x0 = lowX
		}
		if y == highY {
			x1 = highX
		}
		row := g.RowAt(y)

		var line strings.Builder
		if row != nil {
			for x := x0; x <= x1 && x < g.cols; x++ {
				c := row.Cell(x)
				switch {
				case c.IsWideContinuation():
				case c.IsEmpty():
					line.WriteByte(' ')
				default:
					line.WriteString(c.text)
				}
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		if y < highY && (row == nil || !row.Wrapped()) {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Clone
// ---------------------------------------------------------------------------

// clone returns a deep, independent copy of the grid.
func (g *Grid) clone() *Grid {
	dup := *g
	dup.rows = make([]Row, len(g.rows))
	for i := range g.rows {
		dup.rows[i] = g.rows[i].clone()
	}
	dup.tabStops = make([]bool, len(g.tabStops))
	copy(dup.tabStops, g.tabStops)
	if g.saved != nil {
		s := *g.saved
		dup.saved = &s
	}
	return &dup
}
