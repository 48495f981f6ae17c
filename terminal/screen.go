package terminal

import "errors"

// ErrResizeRejected is returned when a resize to zero rows or columns
// is requested. The screen keeps its previous size.
var ErrResizeRejected = errors.New("terminal: resize rejected: rows and cols must be at least 1")

// ---------------------------------------------------------------------------
// Modes
// ---------------------------------------------------------------------------

// Mode is a bit-set of terminal modes toggled by DECSET/DECRST.
type Mode uint16

const (
	ModeCursorVisible Mode = 1 << iota
	ModeAutoWrap
	ModeOrigin
	ModeAppCursorKeys
	ModeBracketedPaste
	ModeAltScreen
	ModeMouseClick
	ModeMouseDrag
	ModeMouseMotion
	ModeMouseSGR
)

// defaultModes is the power-on mode set, also restored by RIS.
const defaultModes = ModeCursorVisible | ModeAutoWrap

// CursorStyle is the shape requested via DECSCUSR.
type CursorStyle uint8

const (
	CursorStyleDefault CursorStyle = iota
	CursorBlinkingBlock
	CursorSteadyBlock
	CursorBlinkingUnderline
	CursorSteadyUnderline
	CursorBlinkingBar
	CursorSteadyBar
)

// BellPolicy says what BEL does.
type BellPolicy uint8

const (
	BellIgnore BellPolicy = iota
	BellForward
)

// ClipboardAccess restricts what OSC 52 may do with the host clipboard.
type ClipboardAccess uint8

const (
	ClipboardReadWrite ClipboardAccess = iota
	ClipboardReadOnly
	ClipboardDisabled
)

// ---------------------------------------------------------------------------
// Screen – VT interpreter over two grids
// ---------------------------------------------------------------------------

// Screen applies parsed actions to terminal state: a primary grid with
// scrollback, an alternate grid for full-screen applications, the
// current rendition, modes, title and cursor style. Replies the
// interpreter owes the application (DA, DSR, OSC 52 reads) are queued
// on the screen until the session flushes them to the PTY.
//
// Screen is not safe for concurrent use; the owning Session serialises
// access.
type Screen struct {
	parser    *Parser
	primary   *Grid
	alternate *Grid

	attrs       Attrs
	modes       Mode
	title       string
	iconName    string
	cursorStyle CursorStyle

	pendingReplies [][]byte

	bellPolicy BellPolicy
	onBell     func()

	clipboardAccess ClipboardAccess
	clipboard       Clipboard
}

// NewScreen allocates a screen of the given dimensions. scrollbackCap
// bounds the primary grid's history; the alternate grid never keeps
// any.
func NewScreen(rows, cols, scrollbackCap int) *Screen {
	return &Screen{
		parser:    NewParser(),
		primary:   NewGrid(rows, cols, scrollbackCap),
		alternate: NewGrid(rows, cols, 0),
		modes:     defaultModes,
	}
}

// SetBell installs the host bell callback used when the policy is
// BellForward.
func (s *Screen) SetBell(policy BellPolicy, fn func()) {
	s.bellPolicy = policy
	s.onBell = fn
}

// SetClipboard installs the OSC 52 clipboard bridge.
func (s *Screen) SetClipboard(access ClipboardAccess, c Clipboard) {
	s.clipboardAccess = access
	s.clipboard = c
}

// SetFollowOutput controls whether new output snaps the scrolled view
// back to the bottom.
func (s *Screen) SetFollowOutput(follow bool) {
	s.primary.SetFollowOutput(follow)
	s.alternate.SetFollowOutput(follow)
}

// ActiveGrid returns the grid currently receiving writes.
func (s *Screen) ActiveGrid() *Grid {
	if s.modes&ModeAltScreen != 0 {
		return s.alternate
	}
	return s.primary
}

// PrimaryGrid returns the primary grid regardless of the active mode.
func (s *Screen) PrimaryGrid() *Grid { return s.primary }

// Mode reports whether every bit in m is set.
func (s *Screen) Mode(m Mode) bool { return s.modes&m == m }

// Title returns the window title set by OSC 0/2.
func (s *Screen) Title() string { return s.title }

// IconName returns the icon name set by OSC 0/1.
func (s *Screen) IconName() string { return s.iconName }

// CursorStyle returns the style requested via DECSCUSR.
func (s *Screen) CursorStyle() CursorStyle { return s.cursorStyle }

// CursorPos returns the active grid's cursor.
func (s *Screen) CursorPos() Pos { return s.ActiveGrid().Cursor() }

// Attrs returns the current rendition.
func (s *Screen) Attrs() Attrs { return s.attrs }

// TakePendingReplies hands over the queued reply byte strings and
// clears the queue.
func (s *Screen) TakePendingReplies() [][]byte {
	r := s.pendingReplies
	s.pendingReplies = nil
	return r
}

func (s *Screen) reply(b []byte) {
	s.pendingReplies = append(s.pendingReplies, b)
}

// SetSize resizes both grids. Zero rows or columns is rejected and the
// size is unchanged.
func (s *Screen) SetSize(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return ErrResizeRejected
	}
	s.primary.Resize(rows, cols)
	s.alternate.Resize(rows, cols)
	return nil
}

// Process feeds raw output bytes through the parser and applies every
// completed action. Malformed input degrades to ignored actions; it
// never stops the stream.
func (s *Screen) Process(data []byte) {
	for _, a := range s.parser.Feed(data) {
		s.Apply(a)
	}
}

// Apply executes one parsed action.
func (s *Screen) Apply(a Action) {
	switch a.Kind {
	case ActionPrint:
		s.ActiveGrid().Write(a.Text, s.attrs, s.Mode(ModeAutoWrap))
	case ActionControl:
		s.control(a.Byte)
	case ActionEsc:
		s.escape(a)
	case ActionCSI:
		s.csi(a)
	case ActionOSC:
		s.osc(a)
	case ActionDCS, ActionIgnored:
	}
}

// ---------------------------------------------------------------------------
// Control codes
// ---------------------------------------------------------------------------

func (s *Screen) control(b byte) {
	g := s.ActiveGrid()
	switch b {
	case 0x07: // BEL
		if s.bellPolicy == BellForward && s.onBell != nil {
			s.onBell()
		}
	case 0x08: // BS
		if c := g.Cursor(); c.Col > 0 {
			g.SetCol(c.Col - 1)
			g.ClearPendingWrap()
		}
	case 0x09: // HT
		g.SetCol(g.NextTabStop(g.Cursor().Col))
		g.ClearPendingWrap()
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		g.Index()
		g.ClearPendingWrap()
	case 0x0D: // CR
		g.SetCol(0)
		g.ClearPendingWrap()
	case 0x0E, 0x0F: // SO/SI – charset shifts, not implemented
	}
}

// ---------------------------------------------------------------------------
// Escape sequences
// ---------------------------------------------------------------------------

func (s *Screen) escape(a Action) {
	if len(a.Intermediates) > 0 {
		// Charset designations (ESC ( B etc.) and friends.
		return
	}
	g := s.ActiveGrid()
	switch a.Byte {
	case '7': // DECSC
		g.SaveCursor(s.attrs, s.Mode(ModeOrigin))
	case '8': // DECRC
		if attrs, origin, ok := g.RestoreCursor(); ok {
			s.attrs = attrs
			s.setModeFlag(ModeOrigin, origin)
		}
	case 'D': // IND
		g.Index()
		g.ClearPendingWrap()
	case 'E': // NEL
		g.Index()
		g.SetCol(0)
		g.ClearPendingWrap()
	case 'M': // RI
		g.ReverseIndex()
		g.ClearPendingWrap()
	case 'H': // HTS
		g.SetTabStop()
	case 'c': // RIS
		s.fullReset()
	}
}

// fullReset restores power-on state: both grids blank, default
// rendition and modes, no title.
func (s *Screen) fullReset() {
	s.primary.Clear()
	s.primary.SetScrollRegion(0, s.primary.ScreenRows()-1)
	s.alternate.Clear()
	s.alternate.SetScrollRegion(0, s.alternate.ScreenRows()-1)
	s.attrs.Reset()
	s.modes = defaultModes
	s.title = ""
	s.iconName = ""
	s.cursorStyle = CursorStyleDefault
}

func (s *Screen) setModeFlag(m Mode, on bool) {
	if on {
		s.modes |= m
	} else {
		s.modes &^= m
	}
}

// ---------------------------------------------------------------------------
// Clone
// ---------------------------------------------------------------------------

// Clone returns a deep, independent copy of the screen for copy-mode
// snapshots. The copy shares nothing with the live screen: later
// output cannot disturb it. Host bridges are not carried over.
func (s *Screen) Clone() *Screen {
	dup := *s
	dup.parser = NewParser()
	dup.primary = s.primary.clone()
	dup.alternate = s.alternate.clone()
	dup.pendingReplies = nil
	dup.onBell = nil
	dup.clipboard = nil
	return &dup
}
