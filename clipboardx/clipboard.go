// Package clipboardx bridges the terminal core to the system
// clipboard. It prefers github.com/atotto/clipboard and falls back to
// an in-process buffer when no system clipboard is reachable (headless
// hosts, stripped-down containers), so copy mode keeps working
// everywhere.
package clipboardx

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Bridge implements the core's Clipboard interface.
type Bridge struct {
	mu       sync.Mutex
	internal string
}

// New returns a clipboard bridge.
func New() *Bridge {
	return &Bridge{}
}

// SetText stores text on the system clipboard. The internal buffer is
// always updated, so a failed system write still leaves the text
// retrievable in-process.
func (b *Bridge) SetText(text string) error {
	b.mu.Lock()
	b.internal = text
	b.mu.Unlock()
	return clipboard.WriteAll(text)
}

// GetText reads the system clipboard, falling back to the internal
// buffer.
func (b *Bridge) GetText() (string, error) {
	if text, err := clipboard.ReadAll(); err == nil && text != "" {
		return text, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.internal, nil
}
