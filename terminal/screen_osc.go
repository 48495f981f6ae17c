package terminal

import (
	"encoding/base64"
	"strings"
)

// ---------------------------------------------------------------------------
// OSC – Operating System Commands
// ---------------------------------------------------------------------------

func (s *Screen) osc(a Action) {
	switch a.OscCmd {
	case 0:
		s.title = a.OscPayload
		s.iconName = a.OscPayload
	case 1:
		s.iconName = a.OscPayload
	case 2:
		s.title = a.OscPayload
	case 52:
		s.osc52(a.OscPayload)
	}
	// Everything else (cwd reports, hyperlinks, palette queries) is
	// ignored.
}

// osc52 bridges "OSC 52 ; Pc ; Pd" to the host clipboard. Pd is either
// base64 data to store, or "?" to read the clipboard back as a reply.
// The access policy gates both directions; failures are swallowed.
func (s *Screen) osc52(payload string) {
	if s.clipboard == nil || s.clipboardAccess == ClipboardDisabled {
		return
	}
	sel, data, ok := strings.Cut(payload, ";")
	if !ok {
		return
	}
	if sel == "" {
		sel = "c"
	}

	if data == "?" {
		text, err := s.clipboard.GetText()
		if err != nil {
			return
		}
		enc := base64.StdEncoding.EncodeToString([]byte(text))
		s.reply([]byte("\x1b]52;" + sel + ";" + enc + "\x07"))
		return
	}

	if s.clipboardAccess == ClipboardReadOnly {
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	_ = s.clipboard.SetText(string(decoded))
}
