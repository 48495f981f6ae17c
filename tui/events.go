package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrick-goecommerce/termpane/terminal"
)

// keyEvent converts a Bubbletea key message to a core key event.
// ok is false for messages the core has no representation for.
func keyEvent(msg tea.KeyMsg) (terminal.KeyEvent, bool) {
	ev := terminal.KeyEvent{Kind: terminal.KeyPress}
	if msg.Alt {
		ev.Mods |= terminal.ModAlt
	}

	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return ev, false
		}
		ev.Code = terminal.KeyRune
		ev.Rune = msg.Runes[0]
		return ev, true
	case tea.KeySpace:
		ev.Code = terminal.KeyRune
		ev.Rune = ' '
		return ev, true
	case tea.KeyEnter:
		ev.Code = terminal.KeyEnter
		return ev, true
	case tea.KeyBackspace:
		ev.Code = terminal.KeyBackspace
		return ev, true
	case tea.KeyTab:
		ev.Code = terminal.KeyTab
		return ev, true
	case tea.KeyEsc:
		ev.Code = terminal.KeyEsc
		return ev, true
	case tea.KeyUp:
		ev.Code = terminal.KeyUp
		return ev, true
	case tea.KeyDown:
		ev.Code = terminal.KeyDown
		return ev, true
	case tea.KeyLeft:
		ev.Code = terminal.KeyLeft
		return ev, true
	case tea.KeyRight:
		ev.Code = terminal.KeyRight
		return ev, true
	case tea.KeyShiftUp:
		ev.Code = terminal.KeyUp
		ev.Mods |= terminal.ModShift
		return ev, true
	case tea.KeyShiftDown:
		ev.Code = terminal.KeyDown
		ev.Mods |= terminal.ModShift
		return ev, true
	case tea.KeyHome:
		ev.Code = terminal.KeyHome
		return ev, true
	case tea.KeyEnd:
		ev.Code = terminal.KeyEnd
		return ev, true
	case tea.KeyPgUp:
		ev.Code = terminal.KeyPageUp
		return ev, true
	case tea.KeyPgDown:
		ev.Code = terminal.KeyPageDown
		return ev, true
	case tea.KeyDelete:
		ev.Code = terminal.KeyDelete
		return ev, true
	}

	// Control characters arrive as their C0 byte values.
	if v := int(msg.Type); v >= 1 && v <= 26 {
		ev.Code = terminal.KeyRune
		ev.Rune = rune('a' + v - 1)
		ev.Mods |= terminal.ModCtrl
		return ev, true
	}
	return ev, false
}

// mouseEvent converts a Bubbletea mouse message to a core mouse event.
func mouseEvent(msg tea.MouseMsg) (terminal.MouseEvent, bool) {
	ev := terminal.MouseEvent{Col: msg.X, Row: msg.Y}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		ev.Kind = terminal.MouseWheelUp
		return ev, true
	case tea.MouseButtonWheelDown:
		ev.Kind = terminal.MouseWheelDown
		return ev, true
	case tea.MouseButtonLeft:
		ev.Button = terminal.MouseLeft
	case tea.MouseButtonMiddle:
		ev.Button = terminal.MouseMiddle
	case tea.MouseButtonRight:
		ev.Button = terminal.MouseRight
	}

	switch msg.Action {
	case tea.MouseActionPress:
		ev.Kind = terminal.MouseDown
	case tea.MouseActionRelease:
		ev.Kind = terminal.MouseUp
	case tea.MouseActionMotion:
		if ev.Button == terminal.MouseNone {
			ev.Kind = terminal.MouseMove
		} else {
			ev.Kind = terminal.MouseDrag
		}
	default:
		return ev, false
	}
	return ev, true
}
