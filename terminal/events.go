package terminal

// ---------------------------------------------------------------------------
// Input events – already-parsed key and mouse input from the host
// ---------------------------------------------------------------------------

// KeyCode identifies a key. Printable input uses KeyRune with the Rune
// field set.
type KeyCode uint8

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
)

// KeyModifiers is a bit-set of held modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModAlt
	ModCtrl
)

// KeyEventKind distinguishes presses from releases and repeats. Only
// presses are acted on.
type KeyEventKind uint8

const (
	KeyPress KeyEventKind = iota
	KeyRelease
	KeyRepeat
)

// KeyEvent is one keyboard event from the host.
type KeyEvent struct {
	Code KeyCode
	Rune rune
	Mods KeyModifiers
	Kind KeyEventKind
}

// MouseButton identifies the button involved in a mouse event.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
)

// MouseEventKind distinguishes mouse event types.
type MouseEventKind uint8

const (
	MouseDown MouseEventKind = iota
	MouseUp
	MouseDrag
	MouseMove
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is one mouse event from the host, in host cell
// coordinates.
type MouseEvent struct {
	Kind   MouseEventKind
	Button MouseButton
	Col    int
	Row    int
	Mods   KeyModifiers
}
