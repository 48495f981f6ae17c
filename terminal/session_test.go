package terminal

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePty is an in-memory Pty: tests feed output chunks through a
// channel and observe writes in an ordered event log.
type fakePty struct {
	mu   sync.Mutex
	in   chan []byte
	log  []string
	rows int
	cols int

	closeOnce sync.Once
}

func newFakePty() *fakePty {
	return &fakePty{in: make(chan []byte, 16)}
}

func (f *fakePty) feed(s string) { f.in <- []byte(s) }

func (f *fakePty) Read(p []byte) (int, error) {
	chunk, ok := <-f.in
	if !ok {
		return 0, io.EOF
	}
	f.mu.Lock()
	f.log = append(f.log, "read:"+string(chunk))
	f.mu.Unlock()
	return copy(p, chunk), nil
}

func (f *fakePty) Write(p []byte) (int, error) {
	f.mu.Lock()
	f.log = append(f.log, "write:"+string(p))
	f.mu.Unlock()
	return len(p), nil
}

func (f *fakePty) Resize(rows, cols int) error {
	f.mu.Lock()
	f.rows, f.cols = rows, cols
	f.mu.Unlock()
	return nil
}

func (f *fakePty) Close() error {
	f.closeOnce.Do(func() { close(f.in) })
	return nil
}

func (f *fakePty) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// writes returns only the write events, in order.
func (f *fakePty) writes() []string {
	var out []string
	for _, e := range f.events() {
		if rest, ok := strings.CutPrefix(e, "write:"); ok {
			out = append(out, rest)
		}
	}
	return out
}

// fakeClipboard records SetText calls.
type fakeClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *fakeClipboard) SetText(t string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = t
	return nil
}

func (c *fakeClipboard) GetText() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// startTestSession attaches a session to a fake PTY.
func startTestSession(t *testing.T, opts Options) (*Session, *fakePty) {
	t.Helper()
	pty := newFakePty()
	sess, err := Attach(pty, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sess.Close)
	return sess, pty
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Rows = 3
	opts.Cols = 10
	return opts
}

// screenRowText reads a visible row under the session lock.
func screenRowText(s *Session, r int) string {
	var out string
	s.WithScreen(func(scr *Screen) {
		out = scr.ActiveGrid().ScreenRow(r).String()
	})
	return out
}

// ---------------------------------------------------------------------------
// Output ingestion
// ---------------------------------------------------------------------------

func TestSession_ProcessesOutput(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	pty.feed("hello")
	waitFor(t, "output on screen", func() bool {
		return screenRowText(sess, 0) == "hello"
	})
	if !sess.ContentChanged() {
		t.Error("ContentChanged should report after output")
	}
	if sess.ContentChanged() {
		t.Error("ContentChanged should consume the flag")
	}
}

func TestSession_EOFMarksNotAlive(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	if !sess.IsAlive() {
		t.Fatal("session should start alive")
	}
	pty.Close()
	waitFor(t, "reader exit", func() bool { return !sess.IsAlive() })
	// The screen is retained for viewing.
	sess.WithScreen(func(scr *Screen) {
		if scr.ActiveGrid().ScreenRows() != 3 {
			t.Error("screen lost after EOF")
		}
	})
}

func TestSession_AttachRejectsInvalidSize(t *testing.T) {
	opts := testOptions()
	opts.Rows = 0
	if _, err := Attach(newFakePty(), opts); err != ErrConfigRejected {
		t.Fatalf("err = %v, want ErrConfigRejected", err)
	}
}

// ---------------------------------------------------------------------------
// Reply causality
// ---------------------------------------------------------------------------

func TestSession_ReplyPrecedesNextChunk(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	pty.feed("\x1b[6n")
	pty.feed("X")
	waitFor(t, "second chunk applied", func() bool {
		return screenRowText(sess, 0) == "X"
	})

	events := pty.events()
	var replyIdx, secondReadIdx = -1, -1
	for i, e := range events {
		if strings.HasPrefix(e, "write:\x1b[") && strings.HasSuffix(e, "R") {
			replyIdx = i
		}
		if e == "read:X" {
			secondReadIdx = i
		}
	}
	if replyIdx == -1 {
		t.Fatalf("no CPR reply written; events: %q", events)
	}
	if secondReadIdx != -1 && replyIdx > secondReadIdx {
		t.Errorf("reply written after the next chunk was read: %q", events)
	}
}

// ---------------------------------------------------------------------------
// Key input
// ---------------------------------------------------------------------------

func TestSession_KeyWritesToPty(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	if !sess.HandleKey(KeyEvent{Code: KeyRune, Rune: 'a'}) {
		t.Fatal("printable key not consumed")
	}
	if got := pty.writes(); len(got) != 1 || got[0] != "a" {
		t.Errorf("writes = %q, want [a]", got)
	}
}

func TestSession_ReleaseEventsIgnored(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	if sess.HandleKey(KeyEvent{Code: KeyRune, Rune: 'a', Kind: KeyRelease}) {
		t.Error("release event consumed")
	}
	if len(pty.writes()) != 0 {
		t.Error("release event produced PTY input")
	}
}

func TestSession_ArrowsHonourApplicationCursorMode(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	sess.HandleKey(KeyEvent{Code: KeyUp})

	pty.feed("\x1b[?1h")
	waitFor(t, "mode applied", func() bool {
		var on bool
		sess.WithScreen(func(scr *Screen) { on = scr.Mode(ModeAppCursorKeys) })
		return on
	})
	sess.HandleKey(KeyEvent{Code: KeyUp})

	got := pty.writes()
	if len(got) != 2 || got[0] != "\x1b[A" || got[1] != "\x1bOA" {
		t.Errorf("writes = %q, want [ESC[A ESCOA]", got)
	}
}

func TestSession_UnknownKeyNotConsumed(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	if sess.HandleKey(KeyEvent{Code: KeyCode(99)}) {
		t.Error("unknown key consumed")
	}
	if len(pty.writes()) != 0 {
		t.Error("unknown key produced PTY input")
	}
}

func TestSession_BracketedPaste(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	sess.WritePaste("plain")

	pty.feed("\x1b[?2004h")
	waitFor(t, "bracketed paste on", func() bool {
		var on bool
		sess.WithScreen(func(scr *Screen) { on = scr.Mode(ModeBracketedPaste) })
		return on
	})
	sess.WritePaste("wrapped")

	joined := strings.Join(pty.writes(), "")
	if !strings.HasPrefix(joined, "plain") {
		t.Errorf("writes = %q, want plain paste first", joined)
	}
	if !strings.Contains(joined, "\x1b[200~wrapped\x1b[201~") {
		t.Errorf("writes = %q, want bracketed paste", joined)
	}
}

// ---------------------------------------------------------------------------
// Copy mode via keys
// ---------------------------------------------------------------------------

func TestSession_CopyModeKeysNoBytesEmitted(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	pty.feed("hello")
	waitFor(t, "output", func() bool { return screenRowText(sess, 0) == "hello" })

	sess.HandleKey(KeyEvent{Code: KeyRune, Rune: 'x', Mods: ModCtrl})
	if !sess.CopyModeActive() {
		t.Fatal("copy mode not entered")
	}

	before := len(pty.writes())
	sess.HandleKey(KeyEvent{Code: KeyUp})
	sess.HandleKey(KeyEvent{Code: KeyRune, Rune: 'k'})
	sess.HandleKey(KeyEvent{Code: KeyRune, Rune: ' '})
	if got := len(pty.writes()); got != before {
		t.Errorf("copy-mode keys wrote %d extra chunks to the PTY", got-before)
	}

	sess.HandleKey(KeyEvent{Code: KeyEsc})
	if sess.CopyModeActive() {
		t.Error("Esc did not leave copy mode")
	}
}

func TestSession_CopyAndExitWritesClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	opts := testOptions()
	opts.Clipboard = clip
	sess, pty := startTestSession(t, opts)

	pty.feed("hello")
	waitFor(t, "output", func() bool { return screenRowText(sess, 0) == "hello" })

	area := Rect{Width: 10, Height: 3}
	sess.HandleMouse(MouseEvent{Kind: MouseDown, Button: MouseLeft, Col: 0, Row: 0}, area)
	sess.HandleMouse(MouseEvent{Kind: MouseDrag, Button: MouseLeft, Col: 4, Row: 0}, area)
	sess.HandleKey(KeyEvent{Code: KeyEnter})

	if clip.text != "hello" {
		t.Errorf("clipboard = %q, want hello", clip.text)
	}
	if sess.CopyModeActive() {
		t.Error("copy-and-exit left copy mode active")
	}
}

// ---------------------------------------------------------------------------
// Mouse
// ---------------------------------------------------------------------------

func TestSession_MouseDragEqualsKeyboardSelection(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	pty.feed("alpha\r\nbeta\r\ngamma")
	waitFor(t, "output", func() bool { return screenRowText(sess, 2) == "gamma" })

	area := Rect{Width: 10, Height: 3}
	p := CopyPos{X: 1, Y: 0}
	q := CopyPos{X: 3, Y: 2}

	sess.HandleMouse(MouseEvent{Kind: MouseDown, Button: MouseLeft, Col: p.X, Row: p.Y}, area)
	sess.HandleMouse(MouseEvent{Kind: MouseDrag, Button: MouseLeft, Col: q.X, Row: q.Y}, area)
	viaMouse := sess.SelectedText()

	var viaKeys string
	sess.WithScreen(func(scr *Screen) {
		m := EnterCopyMode(scr, p)
		m.SetAnchor()
		m.SetCursor(q)
		viaKeys = m.SelectedText()
	})

	if viaMouse == "" || viaMouse != viaKeys {
		t.Errorf("mouse selection %q != keyboard selection %q", viaMouse, viaKeys)
	}
}

func TestSession_MouseDownOutsideAreaIgnored(t *testing.T) {
	sess, _ := startTestSession(t, testOptions())
	area := Rect{X: 2, Y: 2, Width: 10, Height: 3}
	if sess.HandleMouse(MouseEvent{Kind: MouseDown, Button: MouseLeft, Col: 0, Row: 0}, area) {
		t.Error("press outside the area consumed")
	}
	if sess.CopyModeActive() {
		t.Error("press outside the area entered copy mode")
	}
}

func TestSession_WheelScrollsView(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	pty.feed("1\r\n2\r\n3\r\n4\r\n5\r\n6")
	waitFor(t, "output", func() bool { return screenRowText(sess, 2) == "6" })

	area := Rect{Width: 10, Height: 3}
	sess.HandleMouse(MouseEvent{Kind: MouseWheelUp}, area)

	var offset int
	sess.WithScreen(func(scr *Screen) { offset = scr.ActiveGrid().ViewOffset() })
	if offset != 3 {
		t.Errorf("view offset = %d after wheel, want 3", offset)
	}

	sess.HandleMouse(MouseEvent{Kind: MouseWheelDown}, area)
	sess.WithScreen(func(scr *Screen) { offset = scr.ActiveGrid().ViewOffset() })
	if offset != 0 {
		t.Errorf("view offset = %d after wheel down, want 0", offset)
	}
}

// ---------------------------------------------------------------------------
// Resize
// ---------------------------------------------------------------------------

func TestSession_ResizePropagatesToPty(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	if err := sess.Resize(10, 40); err != nil {
		t.Fatal(err)
	}
	pty.mu.Lock()
	rows, cols := pty.rows, pty.cols
	pty.mu.Unlock()
	if rows != 10 || cols != 40 {
		t.Errorf("pty size = %dx%d, want 10x40", rows, cols)
	}
}

func TestSession_ResizeRejectsZero(t *testing.T) {
	sess, pty := startTestSession(t, testOptions())
	if err := sess.Resize(0, 40); err != ErrResizeRejected {
		t.Fatalf("err = %v, want ErrResizeRejected", err)
	}
	pty.mu.Lock()
	rows := pty.rows
	pty.mu.Unlock()
	if rows != 0 {
		t.Error("rejected resize still reached the PTY")
	}
}
