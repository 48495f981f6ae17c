package terminal

import "fmt"

// ---------------------------------------------------------------------------
// CSI command dispatch
// ---------------------------------------------------------------------------

// param returns params[idx] when present and positive, otherwise def.
// Most CSI commands treat 0 the same as a missing parameter.
func param(params []int, idx, def int) int {
	if idx < len(params) && params[idx] > 0 {
		return params[idx]
	}
	return def
}

// paramAt returns params[idx] exactly, with def for missing entries.
// SGR and mode commands need to distinguish an explicit 0.
func paramAt(params []int, idx, def int) int {
	if idx < len(params) {
		return params[idx]
	}
	return def
}

func (s *Screen) csi(a Action) {
	if a.Private == '?' {
		switch a.Byte {
		case 'h':
			s.privateMode(a.Params, true)
		case 'l':
			s.privateMode(a.Params, false)
		}
		return
	}
	if a.Private != 0 {
		// '>' and '=' prefixed queries (DA2, modifier settings) are
		// not implemented beyond a minimal DA2 reply.
		if a.Byte == 'c' && a.Private == '>' {
			s.reply([]byte("\x1b[>0;0;0c"))
		}
		return
	}

	g := s.ActiveGrid()
	c := g.Cursor()

	switch a.Byte {
	case 'A': // CUU
		g.SetRow(c.Row - param(a.Params, 0, 1))
		g.ClearPendingWrap()
	case 'B': // CUD
		g.SetRow(c.Row + param(a.Params, 0, 1))
		g.ClearPendingWrap()
	case 'C': // CUF
		g.SetCol(c.Col + param(a.Params, 0, 1))
		g.ClearPendingWrap()
	case 'D': // CUB
		g.SetCol(c.Col - param(a.Params, 0, 1))
		g.ClearPendingWrap()
	case 'E': // CNL
		g.SetRow(c.Row + param(a.Params, 0, 1))
		g.SetCol(0)
		g.ClearPendingWrap()
	case 'F': // CPL
		g.SetRow(c.Row - param(a.Params, 0, 1))
		g.SetCol(0)
		g.ClearPendingWrap()
	case 'G': // CHA
		g.SetCol(param(a.Params, 0, 1) - 1)
		g.ClearPendingWrap()
	case 'H', 'f': // CUP / HVP
		s.moveCursorTo(param(a.Params, 0, 1)-1, param(a.Params, 1, 1)-1)
	case 'd': // VPA
		s.moveCursorTo(param(a.Params, 0, 1)-1, c.Col)
	case 'J': // ED
		s.eraseInDisplay(paramAt(a.Params, 0, 0))
	case 'K': // EL
		s.eraseInLine(paramAt(a.Params, 0, 0))
	case 'L': // IL
		g.InsertLines(param(a.Params, 0, 1))
	case 'M': // DL
		g.DeleteLines(param(a.Params, 0, 1))
	case '@': // ICH
		if row := g.ScreenRow(c.Row); row != nil {
			n := param(a.Params, 0, 1)
			for i := 0; i < n; i++ {
				row.InsertAt(c.Col, ErasedCell(s.attrs))
			}
		}
	case 'P': // DCH
		if row := g.ScreenRow(c.Row); row != nil {
			n := param(a.Params, 0, 1)
			for i := 0; i < n; i++ {
				row.DeleteAt(c.Col, s.attrs)
			}
		}
	case 'X': // ECH
		if row := g.ScreenRow(c.Row); row != nil {
			row.Erase(c.Col, c.Col+param(a.Params, 0, 1), s.attrs)
		}
	case 'S': // SU
		g.ScrollUp(param(a.Params, 0, 1))
	case 'T': // SD
		g.ScrollDown(param(a.Params, 0, 1))
	case 'g': // TBC
		switch paramAt(a.Params, 0, 0) {
		case 0:
			g.ClearTabStop()
		case 3:
			g.ClearAllTabStops()
		}
	case 'm': // SGR
		s.sgr(a.Params)
	case 'r': // DECSTBM
		top := param(a.Params, 0, 1)
		bottom := param(a.Params, 1, g.ScreenRows())
		g.SetScrollRegion(top-1, bottom-1)
	case 's': // save cursor (ANSI.SYS)
		g.SaveCursor(s.attrs, s.Mode(ModeOrigin))
	case 'u': // restore cursor
		if attrs, origin, ok := g.RestoreCursor(); ok {
			s.attrs = attrs
			s.setModeFlag(ModeOrigin, origin)
		}
	case 'c': // DA1
		s.reply([]byte("\x1b[?1;2c"))
	case 'n': // DSR
		switch paramAt(a.Params, 0, 0) {
		case 5:
			s.reply([]byte("\x1b[0n"))
		case 6:
			s.reply(fmt.Appendf(nil, "\x1b[%d;%dR", c.Row+1, c.Col+1))
		}
	case 'q': // DECSCUSR (CSI Ps SP q)
		if len(a.Intermediates) == 1 && a.Intermediates[0] == ' ' {
			s.setCursorStyle(paramAt(a.Params, 0, 0))
		}
	case 'h', 'l': // ANSI set/reset mode – nothing we honour
	}
}

// moveCursorTo places the cursor at an absolute position, honouring
// origin mode, and clears a pending wrap.
func (s *Screen) moveCursorTo(row, col int) {
	g := s.ActiveGrid()
	if s.Mode(ModeOrigin) {
		top, bottom := g.ScrollRegion()
		row = clamp(row+top, top, bottom)
	}
	g.SetCursor(row, col)
}

func (s *Screen) eraseInDisplay(mode int) {
	g := s.ActiveGrid()
	switch mode {
	case 0:
		g.ClearBelow(s.attrs)
	case 1:
		g.ClearAbove(s.attrs)
	case 2:
		g.ClearAll(s.attrs)
	case 3:
		g.ClearScrollback()
	}
}

func (s *Screen) eraseInLine(mode int) {
	g := s.ActiveGrid()
	c := g.Cursor()
	row := g.ScreenRow(c.Row)
	if row == nil {
		return
	}
	switch mode {
	case 0:
		row.Erase(c.Col, g.Cols(), s.attrs)
	case 1:
		row.Erase(0, c.Col+1, s.attrs)
	case 2:
		row.Erase(0, g.Cols(), s.attrs)
	}
}

func (s *Screen) setCursorStyle(n int) {
	switch n {
	case 0, 1:
		s.cursorStyle = CursorBlinkingBlock
	case 2:
		s.cursorStyle = CursorSteadyBlock
	case 3:
		s.cursorStyle = CursorBlinkingUnderline
	case 4:
		s.cursorStyle = CursorSteadyUnderline
	case 5:
		s.cursorStyle = CursorBlinkingBar
	case 6:
		s.cursorStyle = CursorSteadyBar
	}
}

// ---------------------------------------------------------------------------
// DEC private modes
// ---------------------------------------------------------------------------

func (s *Screen) privateMode(params []int, on bool) {
	for i := 0; i < len(params); i++ {
		switch params[i] {
		case 1: // DECCKM
			s.setModeFlag(ModeAppCursorKeys, on)
		case 6: // DECOM
			s.setModeFlag(ModeOrigin, on)
			s.ActiveGrid().SetCursor(0, 0)
		case 7: // DECAWM
			s.setModeFlag(ModeAutoWrap, on)
		case 25: // DECTCEM
			s.setModeFlag(ModeCursorVisible, on)
		case 47, 1047:
			s.switchAltScreen(on, false)
		case 1048:
			if on {
				s.ActiveGrid().SaveCursor(s.attrs, s.Mode(ModeOrigin))
			} else if attrs, origin, ok := s.ActiveGrid().RestoreCursor(); ok {
				s.attrs = attrs
				s.setModeFlag(ModeOrigin, origin)
			}
		case 1049:
			s.switchAltScreen(on, true)
		case 2004:
			s.setModeFlag(ModeBracketedPaste, on)
		case 1000:
			s.setModeFlag(ModeMouseClick, on)
		case 1002:
			s.setModeFlag(ModeMouseDrag, on)
		case 1003:
			s.setModeFlag(ModeMouseMotion, on)
		case 1006:
			s.setModeFlag(ModeMouseSGR, on)
		}
	}
}

// switchAltScreen flips between the primary and alternate grids. Entry
// always blanks the alternate; with saveCursor (mode 1049) it also
// snapshots the cursor and rendition, and leaving restores them. Re-entering while
// already active is a no-op, matching xterm.
func (s *Screen) switchAltScreen(enter, saveCursor bool) {
	if enter == s.Mode(ModeAltScreen) {
		return
	}
	if enter {
		if saveCursor {
			s.primary.SaveCursor(s.attrs, s.Mode(ModeOrigin))
		}
		s.alternate.Clear()
		s.alternate.SetScrollRegion(0, s.alternate.ScreenRows()-1)
		s.setModeFlag(ModeAltScreen, true)
		return
	}
	s.setModeFlag(ModeAltScreen, false)
	if saveCursor {
		if attrs, origin, ok := s.primary.RestoreCursor(); ok {
			s.attrs = attrs
			s.setModeFlag(ModeOrigin, origin)
		}
	}
}

// ---------------------------------------------------------------------------
// SGR – Select Graphic Rendition
// ---------------------------------------------------------------------------

func (s *Screen) sgr(params []int) {
	if len(params) == 0 {
		s.attrs.Reset()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s.attrs.Reset()
		case p == 1:
			s.attrs.Set(AttrBold)
		case p == 2:
			s.attrs.Set(AttrDim)
		case p == 3:
			s.attrs.Set(AttrItalic)
		case p == 4:
			s.attrs.Set(AttrUnderline)
		case p == 5:
			s.attrs.Set(AttrBlink)
		case p == 7:
			s.attrs.Set(AttrInverse)
		case p == 9:
			s.attrs.Set(AttrStrike)
		case p == 22:
			s.attrs.Clear(AttrBold)
			s.attrs.Clear(AttrDim)
		case p == 23:
			s.attrs.Clear(AttrItalic)
		case p == 24:
			s.attrs.Clear(AttrUnderline)
		case p == 25:
			s.attrs.Clear(AttrBlink)
		case p == 27:
			s.attrs.Clear(AttrInverse)
		case p == 29:
			s.attrs.Clear(AttrStrike)
		case p >= 30 && p <= 37:
			s.attrs.FG = IndexedColor(uint8(p - 30))
		case p == 38:
			if color, skip, ok := extendedColor(params, i); ok {
				s.attrs.FG = color
				i += skip
			} else {
				i = len(params)
			}
		case p == 39:
			s.attrs.FG = DefaultColor
		case p >= 40 && p <= 47:
			s.attrs.BG = IndexedColor(uint8(p - 40))
		case p == 48:
			if color, skip, ok := extendedColor(params, i); ok {
				s.attrs.BG = color
				i += skip
			} else {
				i = len(params)
			}
		case p == 49:
			s.attrs.BG = DefaultColor
		case p >= 90 && p <= 97:
			s.attrs.FG = IndexedColor(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			s.attrs.BG = IndexedColor(uint8(p - 100 + 8))
		}
	}
}

// extendedColor parses the 38/48 sub-sequences "5;N" (palette) and
// "2;R;G;B" (truecolour) starting at params[i]. skip is how many
// parameters beyond i were consumed.
func extendedColor(params []int, i int) (color Color, skip int, ok bool) {
	if i+1 >= len(params) {
		return 0, 0, false
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) {
			return IndexedColor(uint8(clamp(params[i+2], 0, 255))), 2, true
		}
	case 2:
		if i+4 < len(params) {
			r := uint8(clamp(params[i+2], 0, 255))
			g := uint8(clamp(params[i+3], 0, 255))
			b := uint8(clamp(params[i+4], 0, 255))
			return RGBColor(r, g, b), 4, true
		}
	}
	return 0, 0, false
}
