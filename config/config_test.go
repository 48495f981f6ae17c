package config

import (
	"testing"

	"github.com/patrick-goecommerce/termpane/terminal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ScrollbackCap != 10000 {
		t.Errorf("scrollback_cap = %d, want 10000", cfg.ScrollbackCap)
	}
	if cfg.Rows != 24 || cfg.Cols != 80 {
		t.Errorf("size = %dx%d, want 24x80", cfg.Rows, cfg.Cols)
	}
	if !cfg.FollowOutput {
		t.Error("follow_output should default to true")
	}
	if cfg.Osc52Clipboard != "read_write" {
		t.Errorf("osc52_clipboard = %q, want read_write", cfg.Osc52Clipboard)
	}
}

func TestSanitize_Bounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 0
	cfg.Cols = -3
	cfg.ScrollbackCap = -1
	cfg.Bell = "loud"
	cfg.Osc52Clipboard = "maybe"

	cfg = Sanitize(cfg)
	if cfg.Rows != 1 || cfg.Cols != 1 {
		t.Errorf("size = %dx%d, want clamped 1x1", cfg.Rows, cfg.Cols)
	}
	if cfg.ScrollbackCap != 0 {
		t.Errorf("scrollback_cap = %d, want clamped 0", cfg.ScrollbackCap)
	}
	if cfg.Bell != "ignore" {
		t.Errorf("bell = %q, want ignore fallback", cfg.Bell)
	}
	if cfg.Osc52Clipboard != "read_write" {
		t.Errorf("osc52_clipboard = %q, want read_write fallback", cfg.Osc52Clipboard)
	}
}

func TestOptions_Mapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 30
	cfg.Cols = 100
	cfg.Bell = "forward"
	cfg.Osc52Clipboard = "read_only"
	cfg.Keybindings = map[string]string{"enter_copy_mode": "ctrl+g"}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Rows != 30 || opts.Cols != 100 {
		t.Errorf("size = %dx%d, want 30x100", opts.Rows, opts.Cols)
	}
	if opts.BellPolicy != terminal.BellForward {
		t.Error("bell policy not mapped")
	}
	if opts.Osc52 != terminal.ClipboardReadOnly {
		t.Error("osc52 policy not mapped")
	}
	ev := terminal.KeyEvent{Code: terminal.KeyRune, Rune: 'g', Mods: terminal.ModCtrl}
	if !opts.Keybindings.EnterCopyMode.Matches(ev) {
		t.Error("keybinding override not applied")
	}
}

func TestOptions_BadBindingReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keybindings = map[string]string{"enter_copy_mode": "hyper+x"}
	opts, err := cfg.Options()
	if err == nil {
		t.Fatal("bad chord not reported")
	}
	// Defaults survive the failed override.
	ev := terminal.KeyEvent{Code: terminal.KeyRune, Rune: 'x', Mods: terminal.ModCtrl}
	if !opts.Keybindings.EnterCopyMode.Matches(ev) {
		t.Error("default binding lost after failed override")
	}
}

func TestParseColor(t *testing.T) {
	if got := ParseColor("default"); got != terminal.DefaultColor {
		t.Errorf("default = %v", got)
	}
	if got := ParseColor("4"); got != terminal.IndexedColor(4) {
		t.Errorf("4 = %v, want Indexed(4)", got)
	}
	if got := ParseColor("#102030"); got != terminal.RGBColor(0x10, 0x20, 0x30) {
		t.Errorf("#102030 = %v", got)
	}
	if got := ParseColor("nonsense"); got != terminal.DefaultColor {
		t.Errorf("nonsense = %v, want default", got)
	}
}

func TestShellArgv(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ShellArgv(); got != nil {
		t.Errorf("empty shell argv = %v, want nil", got)
	}
	cfg.Shell = "bash -l"
	got := cfg.ShellArgv()
	if len(got) != 2 || got[0] != "bash" || got[1] != "-l" {
		t.Errorf("argv = %v, want [bash -l]", got)
	}
}
