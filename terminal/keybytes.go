package terminal

// EncodeKey converts a key press into the byte sequence a terminal
// application expects on its input. appCursor selects the application
// cursor-key encodings (DECCKM). Unknown keys encode to nil and the
// event should be treated as unconsumed.
func EncodeKey(ev KeyEvent, appCursor bool) []byte {
	switch ev.Code {
	case KeyRune:
		return encodeRune(ev)
	case KeyEnter:
		return []byte{'\r'}
	case KeyBackspace:
		return []byte{0x7f}
	case KeyTab:
		return []byte{'\t'}
	case KeyEsc:
		return []byte{0x1b}
	case KeyUp:
		return cursorKey('A', appCursor)
	case KeyDown:
		return cursorKey('B', appCursor)
	case KeyRight:
		return cursorKey('C', appCursor)
	case KeyLeft:
		return cursorKey('D', appCursor)
	case KeyHome:
		return []byte{0x1b, '[', 'H'}
	case KeyEnd:
		return []byte{0x1b, '[', 'F'}
	case KeyPageUp:
		return []byte{0x1b, '[', '5', '~'}
	case KeyPageDown:
		return []byte{0x1b, '[', '6', '~'}
	case KeyDelete:
		return []byte{0x1b, '[', '3', '~'}
	}
	return nil
}

func cursorKey(final byte, appCursor bool) []byte {
	if appCursor {
		return []byte{0x1b, 'O', final}
	}
	return []byte{0x1b, '[', final}
}

func encodeRune(ev KeyEvent) []byte {
	r := ev.Rune
	if r == 0 {
		return nil
	}
	if ev.Mods&ModCtrl != 0 {
		// Ctrl+letter and the punctuation controls map onto C0 bytes.
		switch {
		case r >= 'a' && r <= 'z':
			return []byte{byte(r) & 0x1F}
		case r >= 'A' && r <= 'Z':
			return []byte{byte(r-'A'+'a') & 0x1F}
		case r == '@':
			return []byte{0x00}
		case r == '[':
			return []byte{0x1b}
		case r == '\\':
			return []byte{0x1c}
		case r == ']':
			return []byte{0x1d}
		case r == '^':
			return []byte{0x1e}
		case r == '_':
			return []byte{0x1f}
		}
		return []byte(string(r))
	}
	if ev.Mods&ModAlt != 0 {
		return append([]byte{0x1b}, []byte(string(r))...)
	}
	return []byte(string(r))
}
