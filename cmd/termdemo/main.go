// Command termdemo runs a single termpane terminal inside a Bubbletea
// program: a shell in a bordered pane with scrollback, copy mode and
// clipboard integration.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/patrick-goecommerce/termpane/clipboardx"
	"github.com/patrick-goecommerce/termpane/config"
	"github.com/patrick-goecommerce/termpane/tui"
)

type model struct {
	pane *tui.Pane
}

func (m model) Init() tea.Cmd { return m.pane.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyCtrlQ {
		return m, tea.Quit
	}
	pane, cmd := m.pane.Update(msg)
	m.pane = pane
	return m, cmd
}

func (m model) View() string { return m.pane.View() }

func main() {
	cfg := config.Load()
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintln(os.Stderr, "termdemo:", err)
	}
	opts.Clipboard = clipboardx.New()

	pane, err := tui.NewPane(cfg.ShellArgv(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "termdemo:", err)
		os.Exit(1)
	}
	defer pane.Close()
	pane.Title = "termdemo — ctrl+q quits"

	p := tea.NewProgram(model{pane: pane}, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "termdemo:", err)
		os.Exit(1)
	}
}
