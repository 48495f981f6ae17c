package terminal

import (
	"reflect"
	"testing"
)

// process feeds a string of raw output through the screen.
func process(s *Screen, input string) {
	s.Process([]byte(input))
}

// rowText returns the trimmed text of a visible row.
func rowText(s *Screen, r int) string {
	return s.ActiveGrid().ScreenRow(r).String()
}

// ---------------------------------------------------------------------------
// Basic output
// ---------------------------------------------------------------------------

func TestScreen_HelloWorld(t *testing.T) {
	s := NewScreen(5, 20, 100)
	process(s, "Hello\r\nWorld")

	if got := s.CursorPos(); got != (Pos{Row: 1, Col: 5}) {
		t.Errorf("cursor = %+v, want (1,5)", got)
	}
	if got := rowText(s, 0); got != "Hello" {
		t.Errorf("row 0 = %q, want Hello", got)
	}
	if got := rowText(s, 1); got != "World" {
		t.Errorf("row 1 = %q, want World", got)
	}
	if s.ActiveGrid().ScreenRow(0).Wrapped() {
		t.Error("row 0 should not be wrapped")
	}
}

func TestScreen_CarriageReturnOverwrites(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "AAAA\rBB")
	if got := rowText(s, 0); got != "BBAA" {
		t.Errorf("row 0 = %q, want BBAA", got)
	}
}

func TestScreen_BackspaceAtColumnZeroStays(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "\b\bX")
	if got := rowText(s, 0); got != "X" {
		t.Errorf("row 0 = %q, want X", got)
	}
}

func TestScreen_TabAdvancesToNextStop(t *testing.T) {
	s := NewScreen(3, 20, 0)
	process(s, "a\tb")
	if got := s.ActiveGrid().CellAt(0, 8).Text(); got != "b" {
		t.Errorf("cell (0,8) = %q, want b", got)
	}
}

func TestScreen_WideCharacter(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "あX")

	g := s.ActiveGrid()
	if !g.CellAt(0, 0).IsWideLeft() {
		t.Error("cell (0,0) should be WideLeft")
	}
	if !g.CellAt(0, 1).IsWideContinuation() {
		t.Error("cell (0,1) should be WideContinuation")
	}
	if got := g.CellAt(0, 2).Text(); got != "X" {
		t.Errorf("cell (0,2) = %q, want X", got)
	}
	if got := s.CursorPos(); got != (Pos{Row: 0, Col: 3}) {
		t.Errorf("cursor = %+v, want (0,3)", got)
	}
}

// ---------------------------------------------------------------------------
// Wrap discipline through the interpreter
// ---------------------------------------------------------------------------

func TestScreen_WrapDiscipline(t *testing.T) {
	s := NewScreen(3, 5, 0)
	process(s, "abcde")
	g := s.ActiveGrid()

	if got := g.Cursor(); got != (Pos{Row: 0, Col: 4}) {
		t.Fatalf("cursor = %+v, want (0,4)", got)
	}
	if !g.PendingWrap() {
		t.Fatal("pending wrap not set")
	}

	process(s, "f")
	if got := g.Cursor(); got != (Pos{Row: 1, Col: 1}) {
		t.Errorf("cursor = %+v, want (1,1)", got)
	}
	if got := rowText(s, 0); got != "abcde" {
		t.Errorf("row 0 = %q, want abcde", got)
	}
	if !g.ScreenRow(0).Wrapped() {
		t.Error("row 0 not marked wrapped")
	}
}

func TestScreen_AutoWrapDisabled(t *testing.T) {
	s := NewScreen(3, 5, 0)
	process(s, "\x1b[?7labcdefgh")
	if got := s.CursorPos(); got != (Pos{Row: 0, Col: 4}) {
		t.Errorf("cursor = %+v, want pinned (0,4)", got)
	}
	if got := rowText(s, 1); got != "" {
		t.Errorf("row 1 = %q, want blank", got)
	}
}

func TestScreen_CursorMotionClearsPendingWrap(t *testing.T) {
	s := NewScreen(3, 5, 0)
	process(s, "abcde")
	if !s.ActiveGrid().PendingWrap() {
		t.Fatal("setup: pending wrap expected")
	}
	process(s, "\x1b[1A")
	if s.ActiveGrid().PendingWrap() {
		t.Error("CUU did not clear pending wrap")
	}
}

// ---------------------------------------------------------------------------
// Scrollback behaviour
// ---------------------------------------------------------------------------

func TestScreen_ScrollbackRetention(t *testing.T) {
	s := NewScreen(3, 80, 10)
	process(s, "A\n\rB\n\rC\n\rD\n\rE")

	for i, want := range []string{"C", "D", "E"} {
		if got := rowText(s, i); got != want {
			t.Errorf("visible row %d = %q, want %q", i, got, want)
		}
	}
	g := s.ActiveGrid()
	if g.ScrollbackLen() != 2 {
		t.Fatalf("scrollback = %d, want 2", g.ScrollbackLen())
	}
	if got := g.RowAt(-2).String(); got != "A" {
		t.Errorf("oldest scrollback = %q, want A", got)
	}
	if got := g.RowAt(-1).String(); got != "B" {
		t.Errorf("newest scrollback = %q, want B", got)
	}
}

func TestScreen_ClearAndHome(t *testing.T) {
	s := NewScreen(3, 10, 10)
	process(s, "XYZ\x1b[H\x1b[2J")

	g := s.ActiveGrid()
	for r := 0; r < 3; r++ {
		for c := 0; c < 10; c++ {
			if !g.CellAt(r, c).IsEmpty() {
				t.Fatalf("cell (%d,%d) not empty after ED2", r, c)
			}
		}
	}
	if got := g.Cursor(); got != (Pos{Row: 0, Col: 0}) {
		t.Errorf("cursor = %+v, want (0,0)", got)
	}
	if g.ScrollbackLen() != 0 {
		t.Error("ED2 must not push cleared content into scrollback")
	}
}

func TestScreen_EraseScrollback(t *testing.T) {
	s := NewScreen(3, 10, 10)
	process(s, "A\r\nB\r\nC\r\nD\r\nE")
	if s.ActiveGrid().ScrollbackLen() == 0 {
		t.Fatal("setup: scrollback expected")
	}
	process(s, "\x1b[3J")
	if got := s.ActiveGrid().ScrollbackLen(); got != 0 {
		t.Errorf("scrollback = %d after ED3, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// Alternate screen
// ---------------------------------------------------------------------------

func TestScreen_AlternateScreenRoundTrip(t *testing.T) {
	s := NewScreen(5, 20, 100)
	process(s, "live\x1b[?1049h")
	if !s.Mode(ModeAltScreen) {
		t.Fatal("alt screen not active after 1049h")
	}
	process(s, "alt")
	process(s, "\x1b[?1049l")

	if s.Mode(ModeAltScreen) {
		t.Fatal("alt screen still active after 1049l")
	}
	if got := rowText(s, 0); got != "live" {
		t.Errorf("row 0 = %q, want live", got)
	}
	if got := s.CursorPos(); got != (Pos{Row: 0, Col: 4}) {
		t.Errorf("cursor = %+v, want restored (0,4)", got)
	}
}

func TestScreen_AlternateScreenIsolation(t *testing.T) {
	s := NewScreen(4, 20, 100)
	process(s, "one\r\ntwo\r\nthree")
	var before []string
	for r := 0; r < 4; r++ {
		before = append(before, rowText(s, r))
	}

	process(s, "\x1b[?1049h")
	process(s, "\x1b[2Jgarbage\x1b[31mmore\x1b[5;5H")
	process(s, "\x1b[?1049l")

	var after []string
	for r := 0; r < 4; r++ {
		after = append(after, rowText(s, r))
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("primary grid changed across alt screen:\nbefore %q\nafter  %q", before, after)
	}
}

func TestScreen_AlternateClearedOnEntry(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "\x1b[?1049haltX\x1b[?1049l")
	process(s, "\x1b[?1049h")
	g := s.ActiveGrid()
	for c := 0; c < 10; c++ {
		if !g.CellAt(0, c).IsEmpty() {
			t.Fatalf("alt cell (0,%d) not blank on re-entry", c)
		}
	}
}

func TestScreen_AlternateHasNoScrollback(t *testing.T) {
	s := NewScreen(3, 10, 100)
	process(s, "\x1b[?1049h")
	process(s, "1\r\n2\r\n3\r\n4\r\n5")
	if got := s.ActiveGrid().ScrollbackLen(); got != 0 {
		t.Errorf("alt scrollback = %d, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// Modes, title, cursor style
// ---------------------------------------------------------------------------

func TestScreen_DefaultModes(t *testing.T) {
	s := NewScreen(3, 10, 0)
	if !s.Mode(ModeCursorVisible) || !s.Mode(ModeAutoWrap) {
		t.Error("cursor visible and auto-wrap should be on by default")
	}
	if s.Mode(ModeAltScreen) || s.Mode(ModeBracketedPaste) {
		t.Error("alt screen / bracketed paste should be off by default")
	}
}

func TestScreen_PrivateModeToggles(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "\x1b[?25l")
	if s.Mode(ModeCursorVisible) {
		t.Error("cursor still visible after ?25l")
	}
	process(s, "\x1b[?25h")
	if !s.Mode(ModeCursorVisible) {
		t.Error("cursor not visible after ?25h")
	}
	process(s, "\x1b[?1h\x1b[?2004h")
	if !s.Mode(ModeAppCursorKeys) || !s.Mode(ModeBracketedPaste) {
		t.Error("?1h / ?2004h not honoured")
	}
}

func TestScreen_TitleAndIconName(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "\x1b]2;just title\x07")
	if s.Title() != "just title" || s.IconName() != "" {
		t.Errorf("OSC 2: title=%q icon=%q", s.Title(), s.IconName())
	}
	process(s, "\x1b]1;just icon\x07")
	if s.IconName() != "just icon" {
		t.Errorf("OSC 1: icon=%q", s.IconName())
	}
	process(s, "\x1b]0;both\x07")
	if s.Title() != "both" || s.IconName() != "both" {
		t.Errorf("OSC 0: title=%q icon=%q", s.Title(), s.IconName())
	}
}

func TestScreen_CursorStyle(t *testing.T) {
	s := NewScreen(3, 10, 0)
	cases := []struct {
		seq  string
		want CursorStyle
	}{
		{"\x1b[2 q", CursorSteadyBlock},
		{"\x1b[3 q", CursorBlinkingUnderline},
		{"\x1b[6 q", CursorSteadyBar},
		{"\x1b[0 q", CursorBlinkingBlock},
	}
	for _, tc := range cases {
		process(s, tc.seq)
		if got := s.CursorStyle(); got != tc.want {
			t.Errorf("%q: style = %d, want %d", tc.seq, got, tc.want)
		}
	}
}

func TestScreen_FullReset(t *testing.T) {
	s := NewScreen(3, 10, 10)
	process(s, "stuff\x1b[31m\x1b]0;t\x07\x1b[?25l")
	process(s, "\x1bc")

	if got := rowText(s, 0); got != "" {
		t.Errorf("row 0 = %q after RIS, want blank", got)
	}
	if s.Attrs() != (Attrs{}) {
		t.Errorf("attrs = %+v after RIS, want default", s.Attrs())
	}
	if !s.Mode(ModeCursorVisible) || !s.Mode(ModeAutoWrap) {
		t.Error("RIS should restore default modes")
	}
	if s.Title() != "" {
		t.Errorf("title = %q after RIS, want empty", s.Title())
	}
}

// ---------------------------------------------------------------------------
// Replies
// ---------------------------------------------------------------------------

func TestScreen_DeviceAttributesReply(t *testing.T) {
	s := NewScreen(3, 10, 0)
	process(s, "\x1b[c")
	replies := s.TakePendingReplies()
	if len(replies) != 1 || string(replies[0]) != "\x1b[?1;2c" {
		t.Fatalf("replies = %q, want DA1", replies)
	}
	if len(s.TakePendingReplies()) != 0 {
		t.Error("TakePendingReplies did not drain the queue")
	}
}

func TestScreen_CursorPositionReport(t *testing.T) {
	s := NewScreen(10, 40, 0)
	process(s, "\x1b[3;7H\x1b[6n")
	replies := s.TakePendingReplies()
	if len(replies) != 1 || string(replies[0]) != "\x1b[3;7R" {
		t.Fatalf("replies = %q, want CPR 3;7", replies)
	}
}

// ---------------------------------------------------------------------------
// Resize and robustness
// ---------------------------------------------------------------------------

func TestScreen_SetSizeRejectsZero(t *testing.T) {
	s := NewScreen(3, 10, 0)
	if err := s.SetSize(0, 10); err != ErrResizeRejected {
		t.Fatalf("err = %v, want ErrResizeRejected", err)
	}
	if s.ActiveGrid().ScreenRows() != 3 {
		t.Error("size changed after rejected resize")
	}
}

func TestScreen_MalformedSequencesDoNotPanic(t *testing.T) {
	s := NewScreen(3, 10, 0)
	inputs := []string{
		"\x1b[999999999999999H",
		"\x1b[;;;;;m",
		"\x1b[?h",
		"\x1b[38;2m",
		"\x1b]0;unterminated",
		"\x1b[1;2;3;4;5;6;7;8;9;10;11;12;13;14;15;16;17;18;19;20X",
		"\xff\xfe\x80\x80",
	}
	for _, in := range inputs {
		process(s, in)
	}
	// The stream keeps working after garbage.
	process(s, "\x1b[1;1Hok")
	if got := rowText(s, 0)[:2]; got != "ok" {
		t.Errorf("row 0 starts %q after recovery, want ok", got)
	}
}

// ---------------------------------------------------------------------------
// Re-chunking invariance end to end
// ---------------------------------------------------------------------------

func TestScreen_RechunkingInvariance(t *testing.T) {
	input := "Hello\r\n\x1b[31;1mred\x1b[0m あwide\x1b[2;2Hpos\x1b]0;t\x07\x1b[?1049halt\x1b[?1049l tail"

	final := func(chunk int) []string {
		s := NewScreen(5, 12, 50)
		data := []byte(input)
		for len(data) > 0 {
			n := min(chunk, len(data))
			s.Process(data[:n])
			data = data[n:]
		}
		var rows []string
		g := s.ActiveGrid()
		for y := -g.ScrollbackLen(); y < g.ScreenRows(); y++ {
			rows = append(rows, g.RowAt(y).String())
		}
		return rows
	}

	whole := final(len(input))
	for _, size := range []int{1, 2, 3, 7} {
		if got := final(size); !reflect.DeepEqual(got, whole) {
			t.Errorf("chunk %d: rows = %q, want %q", size, got, whole)
		}
	}
}
