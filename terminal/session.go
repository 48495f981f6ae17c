package terminal

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrConfigRejected is returned by Start when the initial size is
// invalid. No session is created.
var ErrConfigRejected = errors.New("terminal: initial size must be at least 1x1")

// Options configures a session.
type Options struct {
	Rows, Cols    int
	ScrollbackCap int
	FollowOutput  bool

	BellPolicy BellPolicy
	OnBell     func()

	Osc52     ClipboardAccess
	Clipboard Clipboard

	Redraw      RedrawSignal
	Keybindings Keybindings

	// Dir and Env apply to the spawned child (Start only).
	Dir string
	Env []string
}

// DefaultOptions returns the stock session configuration.
func DefaultOptions() Options {
	return Options{
		Rows:          24,
		Cols:          80,
		ScrollbackCap: 10000,
		FollowOutput:  true,
		Osc52:         ClipboardReadWrite,
		Keybindings:   DefaultKeybindings(),
	}
}

// Session owns one terminal: the screen (parser included), the PTY it
// talks to, copy-mode state and the keybinding table. A session runs
// two goroutines' worth of traffic: the PTY reader ingests output
// under the screen mutex, and the host thread renders and feeds input
// under the same mutex. Replies the interpreter owes the application
// are flushed to the PTY before the reader releases the mutex, so a
// query's answer can never be observed out of order with the output
// that produced it.
type Session struct {
	mu       sync.Mutex
	screen   *Screen
	copyMode *CopyMode
	keybinds Keybindings

	pty     Pty
	proc    *processPty // set by Start; nil for Attach
	writeMu sync.Mutex

	clipboard Clipboard
	redraw    RedrawSignal
	dirty     atomic.Bool
	shutdown  atomic.Bool

	alive    atomic.Bool
	readDone chan struct{}
}

// Start spawns argv (the user's shell when empty) under a new PTY and
// begins reading its output.
func Start(argv []string, opts Options) (*Session, error) {
	if opts.Rows < 1 || opts.Cols < 1 {
		return nil, ErrConfigRejected
	}
	proc, err := startProcessPty(argv, opts.Rows, opts.Cols, opts.Dir, opts.Env)
	if err != nil {
		return nil, err
	}
	s := newSession(proc, opts)
	s.proc = proc
	go s.readLoop()
	return s, nil
}

// Attach wires a session to a caller-supplied PTY. The caller owns
// process lifecycle; the session only reads, writes and resizes.
func Attach(pty Pty, opts Options) (*Session, error) {
	if opts.Rows < 1 || opts.Cols < 1 {
		return nil, ErrConfigRejected
	}
	s := newSession(pty, opts)
	go s.readLoop()
	return s, nil
}

func newSession(pty Pty, opts Options) *Session {
	screen := NewScreen(opts.Rows, opts.Cols, opts.ScrollbackCap)
	screen.SetFollowOutput(opts.FollowOutput)
	screen.SetBell(opts.BellPolicy, opts.OnBell)
	screen.SetClipboard(opts.Osc52, opts.Clipboard)

	kb := opts.Keybindings
	if kb == (Keybindings{}) {
		kb = DefaultKeybindings()
	}

	s := &Session{
		screen:    screen,
		keybinds:  kb,
		pty:       pty,
		clipboard: opts.Clipboard,
		redraw:    opts.Redraw,
		readDone:  make(chan struct{}),
	}
	s.alive.Store(true)
	return s
}

// ---------------------------------------------------------------------------
// Reader
// ---------------------------------------------------------------------------

func (s *Session) readLoop() {
	defer close(s.readDone)
	buf := make([]byte, 8192)
	for {
		if s.shutdown.Load() {
			break
		}
		n, err := s.pty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.screen.Process(buf[:n])
			// Flush interpreter replies before releasing the screen,
			// so the reply precedes any later output on the wire.
			for _, reply := range s.screen.TakePendingReplies() {
				s.writePty(reply)
			}
			s.mu.Unlock()
			s.markDirty()
		}
		if err != nil {
			if errors.Is(err, ErrReadWouldBlock) {
				if s.shutdown.Load() {
					break
				}
				time.Sleep(5 * time.Millisecond)
				continue
			}
			break
		}
	}
	s.alive.Store(false)
	s.markDirty()
}

func (s *Session) writePty(b []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for len(b) > 0 {
		n, err := s.pty.Write(b)
		if err != nil {
			return
		}
		b = b[n:]
	}
}

func (s *Session) markDirty() {
	s.dirty.Store(true)
	if s.redraw != nil {
		s.redraw.RequestRedraw()
	}
}

// ContentChanged consumes and resets the redraw flag.
func (s *Session) ContentChanged() bool { return s.dirty.Swap(false) }

// IsAlive reports whether the PTY is still delivering output.
func (s *Session) IsAlive() bool { return s.alive.Load() }

// ExitStatus returns the child's exit code once it has exited. ok is
// false while the child runs or when the session was attached to a
// foreign PTY.
func (s *Session) ExitStatus() (code int, ok bool) {
	if s.proc == nil {
		return 0, false
	}
	return s.proc.ExitStatus()
}

// Close shuts the session down: the child is killed, the PTY closed,
// and the reader drains out on EOF or error.
func (s *Session) Close() {
	s.shutdown.Store(true)
	_ = s.pty.Close()
	<-s.readDone
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

// HandleKey routes one key event: copy-mode navigation when engaged,
// otherwise encoding to PTY input bytes. It reports whether the event
// was consumed.
func (s *Session) HandleKey(ev KeyEvent) bool {
	if ev.Kind != KeyPress {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.copyMode.Active() {
		return s.copyModeKey(ev)
	}

	if s.keybinds.EnterCopyMode.Matches(ev) {
		s.enterCopyModeLocked()
		return true
	}

	bytes := EncodeKey(ev, s.screen.Mode(ModeAppCursorKeys))
	if len(bytes) == 0 {
		return false
	}
	s.writePty(bytes)
	return true
}

func (s *Session) copyModeKey(ev KeyEvent) bool {
	kb := &s.keybinds
	m := s.copyMode

	switch {
	case kb.CopyExit.Matches(ev) || kb.CopyExitAlt.Matches(ev):
		s.copyMode = nil
	case kb.CopyAndExit.Matches(ev) || kb.CopyAndExitAlt.Matches(ev):
		s.copyToClipboard(m.SelectedText())
		s.copyMode = nil
	case kb.CopySelection.Matches(ev):
		s.copyToClipboard(m.SelectedText())
	case kb.CopyStartSel.Matches(ev) || kb.CopyStartSelAlt.Matches(ev):
		m.SetAnchor()
	case kb.CopyMoveUp.Matches(ev) || kb.CopyMoveUpAlt.Matches(ev):
		m.Move(CopyMoveUp)
	case kb.CopyMoveDown.Matches(ev) || kb.CopyMoveDownAlt.Matches(ev):
		m.Move(CopyMoveDown)
	case kb.CopyMoveLeft.Matches(ev) || kb.CopyMoveLeftAlt.Matches(ev):
		m.Move(CopyMoveLeft)
	case kb.CopyMoveRight.Matches(ev) || kb.CopyMoveRightAlt.Matches(ev):
		m.Move(CopyMoveRight)
	case kb.CopyLineStart.Matches(ev) || kb.CopyLineStartAlt.Matches(ev):
		m.Move(CopyMoveLineStart)
	case kb.CopyLineEnd.Matches(ev) || kb.CopyLineEndAlt.Matches(ev):
		m.Move(CopyMoveLineEnd)
	case kb.CopyPageUp.Matches(ev) || kb.CopyPageUpAlt.Matches(ev):
		m.Move(CopyMovePageUp)
	case kb.CopyPageDown.Matches(ev) || kb.CopyPageDownAlt.Matches(ev):
		m.Move(CopyMovePageDown)
	case kb.CopyTop.Matches(ev):
		m.Move(CopyMoveTop)
	case kb.CopyBottom.Matches(ev):
		m.Move(CopyMoveBottom)
	case kb.CopyWordLeft.Matches(ev):
		m.Move(CopyMoveWordLeft)
	case kb.CopyWordRight.Matches(ev):
		m.Move(CopyMoveWordRight)
	default:
		return false
	}
	s.markDirty()
	return true
}

// copyToClipboard pushes text to the host clipboard. Failures are
// swallowed; an empty selection copies nothing.
func (s *Session) copyToClipboard(text string) bool {
	if text == "" || s.clipboard == nil {
		return false
	}
	return s.clipboard.SetText(text) == nil
}

// WritePaste sends pasted text to the application, bracketing it when
// the application asked for bracketed paste.
func (s *Session) WritePaste(text string) {
	s.mu.Lock()
	bracketed := s.screen.Mode(ModeBracketedPaste)
	s.mu.Unlock()
	if bracketed {
		s.writePty([]byte("\x1b[200~"))
		s.writePty([]byte(text))
		s.writePty([]byte("\x1b[201~"))
		return
	}
	s.writePty([]byte(text))
}

// ---------------------------------------------------------------------------
// Mouse
// ---------------------------------------------------------------------------

// HandleMouse routes one mouse event. area is the content rectangle
// the terminal is painted into; coordinates outside it are ignored for
// presses. Wheel events scroll the view; left press/drag drive copy
// mode and selection.
func (s *Session) HandleMouse(ev MouseEvent, area Rect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	x := ev.Col - area.X
	y := ev.Row - area.Y

	switch ev.Kind {
	case MouseWheelUp:
		s.displayGridLocked().ScrollViewUp(3)
		s.markDirty()
		return true
	case MouseWheelDown:
		s.displayGridLocked().ScrollViewDown(3)
		s.markDirty()
		return true
	case MouseDown:
		if ev.Button != MouseLeft {
			return false
		}
		if x < 0 || y < 0 || x >= area.Width || y >= area.Height {
			return false
		}
		if s.copyMode.Active() {
			s.copyMode.SetCursor(s.snapshotPos(x, y))
		} else {
			s.enterCopyModeAtLocked(x, y)
		}
		s.markDirty()
		return true
	case MouseDrag:
		if ev.Button != MouseLeft {
			return false
		}
		if !s.copyMode.Active() {
			s.enterCopyModeAtLocked(x, y)
			s.copyMode.SetAnchor()
		} else {
			s.copyMode.EnsureAnchor()
			s.copyMode.SetCursor(s.snapshotPos(x, y))
		}
		s.markDirty()
		return true
	case MouseUp:
		// Selection stays active after release.
		return s.copyMode.Active()
	}
	return false
}

// snapshotPos translates content coordinates to snapshot coordinates,
// accounting for how far the displayed grid is scrolled.
func (s *Session) snapshotPos(x, y int) CopyPos {
	return CopyPos{X: x, Y: y - s.displayGridLocked().ViewOffset()}
}

// displayGridLocked is the grid the user currently sees: the frozen
// one in copy mode, the live one otherwise.
func (s *Session) displayGridLocked() *Grid {
	if s.copyMode.Active() {
		return s.copyMode.Frozen().ActiveGrid()
	}
	return s.screen.ActiveGrid()
}

// ---------------------------------------------------------------------------
// Copy mode entry and state
// ---------------------------------------------------------------------------

// EnterCopyMode freezes the screen with the cursor at the bottom-right
// of the visible area.
func (s *Session) EnterCopyMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterCopyModeLocked()
	s.markDirty()
}

func (s *Session) enterCopyModeLocked() {
	g := s.screen.ActiveGrid()
	s.copyMode = EnterCopyMode(s.screen, CopyPos{X: g.Cols() - 1, Y: g.ScreenRows() - 1})
}

func (s *Session) enterCopyModeAtLocked(x, y int) {
	start := s.snapshotPos(x, y)
	s.copyMode = EnterCopyMode(s.screen, start)
}

// ExitCopyMode discards the snapshot and any selection.
func (s *Session) ExitCopyMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copyMode = nil
	s.markDirty()
}

// CopyModeActive reports whether copy mode is engaged.
func (s *Session) CopyModeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyMode.Active()
}

// SelectedText returns the current copy-mode selection as plain text.
func (s *Session) SelectedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.copyMode.Active() {
		return ""
	}
	return s.copyMode.SelectedText()
}

// ---------------------------------------------------------------------------
// Geometry and view
// ---------------------------------------------------------------------------

// Resize adjusts the screen and the PTY. Zero dimensions are rejected
// and nothing changes.
func (s *Session) Resize(rows, cols int) error {
	s.mu.Lock()
	if err := s.screen.SetSize(rows, cols); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	_ = s.pty.Resize(rows, cols)
	s.markDirty()
	return nil
}

// ScrollViewUp scrolls the displayed grid up into history.
func (s *Session) ScrollViewUp(n int) {
	s.mu.Lock()
	s.displayGridLocked().ScrollViewUp(n)
	s.mu.Unlock()
	s.markDirty()
}

// ScrollViewDown scrolls the displayed grid back toward the bottom.
func (s *Session) ScrollViewDown(n int) {
	s.mu.Lock()
	s.displayGridLocked().ScrollViewDown(n)
	s.mu.Unlock()
	s.markDirty()
}

// ScrollViewToBottom snaps the displayed grid to the live bottom.
func (s *Session) ScrollViewToBottom() {
	s.mu.Lock()
	s.displayGridLocked().ScrollViewToBottom()
	s.mu.Unlock()
	s.markDirty()
}

// Title returns the window title the application set.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Title()
}

// Paint projects the session onto dst under the screen mutex, so the
// host always observes a consistent frame.
func (s *Session) Paint(dst Surface, area Rect) CursorRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Paint(s.screen, s.copyMode, dst, area)
}

// View renders the session as an ANSI-styled string of exactly
// width×height cells, for string-based hosts.
func (s *Session) View(width, height int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RenderString(s.screen, s.copyMode, width, height)
}

// WithScreen runs fn with the screen under the session mutex. For
// host-side inspection; fn must not retain the screen.
func (s *Session) WithScreen(fn func(*Screen)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.screen)
}
