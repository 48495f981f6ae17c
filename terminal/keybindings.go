package terminal

import (
	"fmt"
	"strings"
	"unicode"
)

// ---------------------------------------------------------------------------
// Keybindings – user-configurable copy-mode and session bindings
// ---------------------------------------------------------------------------

// Binding describes one key chord.
type Binding struct {
	Code KeyCode
	Rune rune
	Mods KeyModifiers
}

// Matches reports whether a key press matches the binding. For rune
// chords the shift modifier is disregarded on both sides: shifted
// input already arrives as a different rune ('G', '$'), and hosts
// differ on whether they report Shift alongside it.
func (b Binding) Matches(ev KeyEvent) bool {
	if ev.Code != b.Code {
		return false
	}
	if b.Code != KeyRune {
		return ev.Mods == b.Mods
	}
	if ev.Mods&^ModShift != b.Mods&^ModShift {
		return false
	}
	return ev.Rune == b.Rune
}

// String renders the binding for help footers, e.g. "^X" or "Enter".
func (b Binding) String() string {
	var prefix string
	if b.Mods&ModCtrl != 0 {
		prefix += "^"
	}
	if b.Mods&ModAlt != 0 {
		prefix += "M-"
	}
	if b.Mods&ModShift != 0 && b.Code != KeyRune {
		prefix += "S-"
	}
	name := map[KeyCode]string{
		KeyEnter: "Enter", KeyBackspace: "Bksp", KeyTab: "Tab",
		KeyEsc: "Esc", KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left",
		KeyRight: "Right", KeyHome: "Home", KeyEnd: "End",
		KeyPageUp: "PgUp", KeyPageDown: "PgDn", KeyDelete: "Del",
	}[b.Code]
	if b.Code == KeyRune {
		if b.Rune == ' ' {
			name = "Space"
		} else {
			name = string(unicode.ToUpper(b.Rune))
			if b.Mods == 0 || b.Mods == ModShift {
				name = string(b.Rune)
			}
		}
	}
	return prefix + name
}

// Keybindings is the full binding table. Most copy-mode actions have a
// primary and an alternate chord; top, bottom and the word motions
// have one chord each.
type Keybindings struct {
	EnterCopyMode Binding
	CopySelection Binding

	CopyMoveUp        Binding
	CopyMoveUpAlt     Binding
	CopyMoveDown      Binding
	CopyMoveDownAlt   Binding
	CopyMoveLeft      Binding
	CopyMoveLeftAlt   Binding
	CopyMoveRight     Binding
	CopyMoveRightAlt  Binding
	CopyLineStart     Binding
	CopyLineStartAlt  Binding
	CopyLineEnd       Binding
	CopyLineEndAlt    Binding
	CopyPageUp        Binding
	CopyPageUpAlt     Binding
	CopyPageDown      Binding
	CopyPageDownAlt   Binding
	CopyTop           Binding
	CopyBottom        Binding
	CopyWordLeft      Binding
	CopyWordRight     Binding
	CopyStartSel      Binding
	CopyStartSelAlt   Binding
	CopyAndExit       Binding
	CopyAndExitAlt    Binding
	CopyExit          Binding
	CopyExitAlt       Binding
}

// DefaultKeybindings returns the stock binding table.
func DefaultKeybindings() Keybindings {
	r := func(ch rune, mods KeyModifiers) Binding {
		return Binding{Code: KeyRune, Rune: ch, Mods: mods}
	}
	k := func(code KeyCode) Binding { return Binding{Code: code} }
	return Keybindings{
		EnterCopyMode: r('x', ModCtrl),
		CopySelection: r('c', ModCtrl|ModShift),

		CopyMoveUp:       k(KeyUp),
		CopyMoveUpAlt:    r('k', 0),
		CopyMoveDown:     k(KeyDown),
		CopyMoveDownAlt:  r('j', 0),
		CopyMoveLeft:     k(KeyLeft),
		CopyMoveLeftAlt:  r('h', 0),
		CopyMoveRight:    k(KeyRight),
		CopyMoveRightAlt: r('l', 0),
		CopyLineStart:    k(KeyHome),
		CopyLineStartAlt: r('0', 0),
		CopyLineEnd:      k(KeyEnd),
		CopyLineEndAlt:   r('$', 0),
		CopyPageUp:       k(KeyPageUp),
		CopyPageUpAlt:    r('b', ModCtrl),
		CopyPageDown:     k(KeyPageDown),
		CopyPageDownAlt:  r('f', ModCtrl),
		CopyTop:          r('g', 0),
		CopyBottom:       r('G', 0),
		CopyWordLeft:     r('b', 0),
		CopyWordRight:    r('w', 0),
		CopyStartSel:     r(' ', 0),
		CopyStartSelAlt:  r('v', 0),
		CopyAndExit:      k(KeyEnter),
		CopyAndExitAlt:   r('y', 0),
		CopyExit:         k(KeyEsc),
		CopyExitAlt:      r('q', 0),
	}
}

// Set rebinds the named action. Names mirror the config file keys
// ("enter_copy_mode", "copy_move_up", ...).
func (k *Keybindings) Set(name, chord string) error {
	b, err := ParseBinding(chord)
	if err != nil {
		return err
	}
	target := map[string]*Binding{
		"enter_copy_mode":      &k.EnterCopyMode,
		"copy_selection":       &k.CopySelection,
		"copy_move_up":         &k.CopyMoveUp,
		"copy_move_down":       &k.CopyMoveDown,
		"copy_move_left":       &k.CopyMoveLeft,
		"copy_move_right":      &k.CopyMoveRight,
		"copy_line_start":      &k.CopyLineStart,
		"copy_line_end":        &k.CopyLineEnd,
		"copy_page_up":         &k.CopyPageUp,
		"copy_page_down":       &k.CopyPageDown,
		"copy_top":             &k.CopyTop,
		"copy_bottom":          &k.CopyBottom,
		"copy_word_left":       &k.CopyWordLeft,
		"copy_word_right":      &k.CopyWordRight,
		"copy_start_selection": &k.CopyStartSel,
		"copy_and_exit":        &k.CopyAndExit,
		"copy_exit":            &k.CopyExit,
	}[name]
	if target == nil {
		return fmt.Errorf("unknown binding name %q", name)
	}
	*target = b
	return nil
}

// ParseBinding parses chords like "ctrl+x", "ctrl+shift+c", "pageup",
// "space" or "$".
func ParseBinding(s string) (Binding, error) {
	var b Binding
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return b, fmt.Errorf("empty binding %q", s)
	}
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl", "control":
			b.Mods |= ModCtrl
		case "alt", "meta":
			b.Mods |= ModAlt
		case "shift":
			b.Mods |= ModShift
		default:
			return b, fmt.Errorf("unknown modifier %q in %q", mod, s)
		}
	}
	key := parts[len(parts)-1]
	codes := map[string]KeyCode{
		"enter": KeyEnter, "return": KeyEnter, "backspace": KeyBackspace,
		"tab": KeyTab, "esc": KeyEsc, "escape": KeyEsc,
		"up": KeyUp, "down": KeyDown, "left": KeyLeft, "right": KeyRight,
		"home": KeyHome, "end": KeyEnd,
		"pageup": KeyPageUp, "pgup": KeyPageUp,
		"pagedown": KeyPageDown, "pgdn": KeyPageDown,
		"delete": KeyDelete, "del": KeyDelete,
	}
	if code, ok := codes[key]; ok {
		b.Code = code
		return b, nil
	}
	if key == "space" {
		b.Code = KeyRune
		b.Rune = ' '
		return b, nil
	}
	runes := []rune(key)
	if len(runes) != 1 {
		return b, fmt.Errorf("unknown key %q in %q", key, s)
	}
	b.Code = KeyRune
	b.Rune = runes[0]
	return b, nil
}
