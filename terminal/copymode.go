package terminal

// ---------------------------------------------------------------------------
// Copy mode – frozen snapshot navigation and selection
// ---------------------------------------------------------------------------

// CopyPos is a position in snapshot coordinates: X is the column,
// Y the row, where negative rows reach up into scrollback and
// Y = ScreenRows-1 is the bottom of the frozen screen.
type CopyPos struct {
	X int
	Y int
}

// rowMajorLess orders snapshot positions.
func rowMajorLess(a, b CopyPos) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// CopyMoveDir enumerates copy-mode cursor motions.
type CopyMoveDir int

const (
	CopyMoveUp CopyMoveDir = iota
	CopyMoveDown
	CopyMoveLeft
	CopyMoveRight
	CopyMoveLineStart
	CopyMoveLineEnd
	CopyMovePageUp
	CopyMovePageDown
	CopyMoveTop
	CopyMoveBottom
	CopyMoveWordLeft
	CopyMoveWordRight
)

// CopyMode is a non-destructive reader's view of the screen at the
// moment it was entered. The snapshot is a deep copy: live output
// keeps flowing into the real screen without disturbing it. Only the
// cursor and the selection anchor ever change.
type CopyMode struct {
	frozen *Screen
	cursor CopyPos
	anchor *CopyPos
}

// EnterCopyMode freezes the given screen and starts the copy cursor at
// start (clamped into the snapshot).
func EnterCopyMode(live *Screen, start CopyPos) *CopyMode {
	m := &CopyMode{frozen: live.Clone()}
	m.cursor = m.clampPos(start)
	return m
}

// Active reports whether copy mode is engaged. Safe on a nil receiver.
func (m *CopyMode) Active() bool { return m != nil && m.frozen != nil }

// Frozen returns the snapshot screen.
func (m *CopyMode) Frozen() *Screen { return m.frozen }

// Cursor returns the copy cursor.
func (m *CopyMode) Cursor() CopyPos { return m.cursor }

// Anchor returns the selection anchor, if one is set.
func (m *CopyMode) Anchor() (CopyPos, bool) {
	if m.anchor == nil {
		return CopyPos{}, false
	}
	return *m.anchor, true
}

// SetAnchor starts (or restarts) a selection at the cursor.
func (m *CopyMode) SetAnchor() {
	p := m.cursor
	m.anchor = &p
}

// EnsureAnchor sets the anchor only when none exists yet, as a mouse
// drag does.
func (m *CopyMode) EnsureAnchor() {
	if m.anchor == nil {
		m.SetAnchor()
	}
}

// SetCursor moves the copy cursor to an arbitrary snapshot position.
func (m *CopyMode) SetCursor(p CopyPos) {
	m.cursor = m.clampPos(p)
}

func (m *CopyMode) grid() *Grid { return m.frozen.ActiveGrid() }

func (m *CopyMode) clampPos(p CopyPos) CopyPos {
	g := m.grid()
	return CopyPos{
		X: clamp(p.X, 0, g.Cols()-1),
		Y: clamp(p.Y, -g.ScrollbackLen(), g.ScreenRows()-1),
	}
}

// Move applies one cursor motion.
func (m *CopyMode) Move(dir CopyMoveDir) {
	g := m.grid()
	c := m.cursor
	switch dir {
	case CopyMoveUp:
		c.Y--
	case CopyMoveDown:
		c.Y++
	case CopyMoveLeft:
		c.X--
	case CopyMoveRight:
		c.X++
	case CopyMoveLineStart:
		c.X = 0
	case CopyMoveLineEnd:
		c.X = g.Cols() - 1
	case CopyMovePageUp:
		c.Y -= g.ScreenRows() - 1
	case CopyMovePageDown:
		c.Y += g.ScreenRows() - 1
	case CopyMoveTop:
		c.Y = -g.ScrollbackLen()
	case CopyMoveBottom:
		c.Y = g.ScreenRows() - 1
	case CopyMoveWordLeft:
		m.cursor = m.wordLeft()
		return
	case CopyMoveWordRight:
		m.cursor = m.wordRight()
		return
	}
	m.cursor = m.clampPos(c)
}

// ---------------------------------------------------------------------------
// Word motion
// ---------------------------------------------------------------------------

type charClass uint8

const (
	classBlank charClass = iota
	classWord
	classOther
)

// classAt categorises the cell under p: word characters follow the
// POSIX definition [A-Za-z0-9_]; empty cells and spaces are blank;
// everything else forms its own run class.
func (m *CopyMode) classAt(p CopyPos) charClass {
	row := m.grid().RowAt(p.Y)
	if row == nil {
		return classBlank
	}
	c := row.Cell(p.X)
	if c.IsWideContinuation() {
		c = row.Cell(p.X - 1)
	}
	text := c.Text()
	if text == "" || text == " " {
		return classBlank
	}
	r := []rune(text)[0]
	if r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') {
		return classWord
	}
	return classOther
}

// stepRight advances p one cell, wrapping to the next row. ok is false
// at the bottom-right corner.
func (m *CopyMode) stepRight(p CopyPos) (CopyPos, bool) {
	g := m.grid()
	if p.X+1 < g.Cols() {
		return CopyPos{X: p.X + 1, Y: p.Y}, true
	}
	if p.Y+1 <= g.ScreenRows()-1 {
		return CopyPos{X: 0, Y: p.Y + 1}, true
	}
	return p, false
}

// stepLeft retreats p one cell, wrapping to the previous row. ok is
// false at the top-left of the snapshot.
func (m *CopyMode) stepLeft(p CopyPos) (CopyPos, bool) {
	g := m.grid()
	if p.X > 0 {
		return CopyPos{X: p.X - 1, Y: p.Y}, true
	}
	if p.Y > -g.ScrollbackLen() {
		return CopyPos{X: g.Cols() - 1, Y: p.Y - 1}, true
	}
	return p, false
}

// wordRight moves to the start of the next word: it finishes the run
// under the cursor, then skips blanks.
func (m *CopyMode) wordRight() CopyPos {
	p := m.cursor
	cls := m.classAt(p)
	for m.classAt(p) == cls {
		next, ok := m.stepRight(p)
		if !ok {
			return p
		}
		p = next
	}
	for m.classAt(p) == classBlank {
		next, ok := m.stepRight(p)
		if !ok {
			return p
		}
		p = next
	}
	return p
}

// wordLeft moves to the start of the previous word: it steps off the
// current position, skips blanks, then walks to the head of the run.
func (m *CopyMode) wordLeft() CopyPos {
	p, ok := m.stepLeft(m.cursor)
	if !ok {
		return m.cursor
	}
	for m.classAt(p) == classBlank {
		prev, ok := m.stepLeft(p)
		if !ok {
			return p
		}
		p = prev
	}
	cls := m.classAt(p)
	for {
		prev, ok := m.stepLeft(p)
		if !ok || m.classAt(prev) != cls {
			return p
		}
		p = prev
	}
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// Selection returns the ordered selection range. ok is false when no
// anchor is set.
func (m *CopyMode) Selection() (low, high CopyPos, ok bool) {
	if m.anchor == nil {
		return CopyPos{}, CopyPos{}, false
	}
	low, high = *m.anchor, m.cursor
	if rowMajorLess(high, low) {
		low, high = high, low
	}
	return low, high, true
}

// SelectedText extracts the selected region as plain text. Without an
// anchor the selection is an empty point and the result is "".
func (m *CopyMode) SelectedText() string {
	low, high, ok := m.Selection()
	if !ok {
		return ""
	}
	return m.grid().SelectedText(low.X, low.Y, high.X, high.Y)
}
