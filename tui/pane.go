// Package tui embeds a termpane terminal session in a Bubbletea
// program: it translates Bubbletea input messages into core events,
// renders the screen with a lipgloss border and a hotkey footer, and
// wakes the program when the PTY produces output.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patrick-goecommerce/termpane/terminal"
)

// outputMsg signals that the session produced new output.
type outputMsg struct{}

// chanSignal is a RedrawSignal that wakes the Bubbletea loop.
type chanSignal struct {
	ch chan struct{}
}

func newChanSignal() *chanSignal {
	return &chanSignal{ch: make(chan struct{}, 1)}
}

func (c *chanSignal) RequestRedraw() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func (c *chanSignal) TakeRedrawRequest() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

// Styles controls the pane chrome.
type Styles struct {
	BorderFocused   lipgloss.Style
	BorderUnfocused lipgloss.Style
	FooterKey       lipgloss.Style
	FooterText      lipgloss.Style
	FooterBadge     lipgloss.Style
}

// DefaultStyles returns the stock pane styling.
func DefaultStyles() Styles {
	return Styles{
		BorderFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")),
		BorderUnfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
		FooterKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		FooterText: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		FooterBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("3")),
	}
}

// Pane is a Bubbletea model wrapping one terminal session.
type Pane struct {
	session  *terminal.Session
	signal   *chanSignal
	keybinds terminal.Keybindings

	Title   string
	Focused bool
	Styles  Styles

	width  int
	height int
}

// NewPane starts argv inside a new session and returns the model. The
// caller should hand the session's lifetime to the pane and call
// Close when done.
func NewPane(argv []string, opts terminal.Options) (*Pane, error) {
	signal := newChanSignal()
	opts.Redraw = signal
	kb := opts.Keybindings
	if kb == (terminal.Keybindings{}) {
		kb = terminal.DefaultKeybindings()
	}
	sess, err := terminal.Start(argv, opts)
	if err != nil {
		return nil, err
	}
	return &Pane{
		session:  sess,
		signal:   signal,
		keybinds: kb,
		Focused:  true,
		Styles:   DefaultStyles(),
	}, nil
}

// Session exposes the underlying terminal session.
func (p *Pane) Session() *terminal.Session { return p.session }

// Close shuts the session down.
func (p *Pane) Close() { p.session.Close() }

// Init starts waiting for PTY output.
func (p *Pane) Init() tea.Cmd { return p.waitOutput() }

func (p *Pane) waitOutput() tea.Cmd {
	return func() tea.Msg {
		<-p.signal.ch
		return outputMsg{}
	}
}

// contentArea is the rectangle terminal cells occupy, inside the
// border and above the footer.
func (p *Pane) contentArea() terminal.Rect {
	w := p.width - 2
	h := p.height - 3 // border top/bottom + footer line
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return terminal.Rect{X: 1, Y: 1, Width: w, Height: h}
}

// Update handles Bubbletea messages.
func (p *Pane) Update(msg tea.Msg) (*Pane, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		area := p.contentArea()
		_ = p.session.Resize(area.Height, area.Width)
		return p, nil
	case tea.KeyMsg:
		if !p.Focused {
			return p, nil
		}
		if ev, ok := keyEvent(msg); ok {
			p.session.HandleKey(ev)
		}
		return p, nil
	case tea.MouseMsg:
		if ev, ok := mouseEvent(msg); ok {
			p.session.HandleMouse(ev, p.contentArea())
		}
		return p, nil
	case outputMsg:
		return p, p.waitOutput()
	}
	return p, nil
}

// View renders the pane: border, title, terminal content and the
// hotkey footer.
func (p *Pane) View() string {
	if p.width < 4 || p.height < 4 {
		return ""
	}
	area := p.contentArea()

	title := p.Title
	if t := p.session.Title(); t != "" {
		title = t
	}

	border := p.Styles.BorderUnfocused
	if p.Focused {
		border = p.Styles.BorderFocused
	}

	content := p.session.View(area.Width, area.Height)
	box := border.Width(area.Width).Render(content)
	if title != "" {
		box = overlayTitle(box, title, area.Width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, box, p.footer())
}

// overlayTitle splices the title into the top border run.
func overlayTitle(box, title string, width int) string {
	if len(title) > width-4 && width > 4 {
		title = title[:width-4]
	}
	// lipgloss has no native border titles; rendering the label after
	// the first corner keeps the frame intact.
	head, rest, ok := cutLine(box)
	if !ok {
		return box
	}
	decorated := spliceTitle(head, " "+title+" ")
	return decorated + "\n" + rest
}

func cutLine(s string) (head, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func spliceTitle(borderLine, label string) string {
	runes := []rune(borderLine)
	labelRunes := []rune(label)
	if len(runes) < len(labelRunes)+4 {
		return borderLine
	}
	copy(runes[2:], labelRunes)
	return string(runes)
}

// footer renders the hotkey hints, switching content in copy mode.
func (p *Pane) footer() string {
	kb := &p.keybinds
	key := p.Styles.FooterKey.Render
	txt := p.Styles.FooterText.Render

	if p.session.CopyModeActive() {
		return p.Styles.FooterBadge.Render(" COPY ") + " " +
			key(kb.CopyMoveUp.String()+"/"+kb.CopyMoveDown.String()) + txt(" move ") +
			key(kb.CopyStartSel.String()) + txt(" select ") +
			key(kb.CopyAndExit.String()) + txt(" copy ") +
			key(kb.CopyWordRight.String()+"/"+kb.CopyWordLeft.String()) + txt(" word ") +
			key(kb.CopyTop.String()+"/"+kb.CopyBottom.String()) + txt(" top/bot ") +
			key(kb.CopyExit.String()) + txt(" exit")
	}
	status := ""
	if !p.session.IsAlive() {
		status = " " + p.Styles.FooterBadge.Render(" EXITED ")
	}
	return key(kb.EnterCopyMode.String()) + txt(" copy mode ") +
		key(kb.CopySelection.String()) + txt(" copy ") +
		txt("wheel scroll") + status
}
