// Package config loads and provides termpane configuration.
//
// On first run, a default YAML config is written to ~/.termpane.yaml.
// Subsequent runs read and merge that file with built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/patrick-goecommerce/termpane/terminal"
)

// Config holds all user-configurable settings.
type Config struct {
	// Shell is the command spawned in new sessions. Empty means the
	// user's login shell.
	Shell string `yaml:"shell"`

	// Rows and Cols are the initial screen size before the host
	// resizes the pane.
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	// ScrollbackCap bounds how many history rows the primary screen
	// keeps. Zero disables scrollback.
	ScrollbackCap int `yaml:"scrollback_cap"`

	// FollowOutput snaps the view to the bottom on new output.
	FollowOutput bool `yaml:"follow_output"`

	// DefaultFG and DefaultBG are colour names: "default", a palette
	// index ("4"), or "#rrggbb", read by ParseColor. Options does not
	// carry them into the session and the widget does not apply them.
	DefaultFG string `yaml:"default_fg"`
	DefaultBG string `yaml:"default_bg"`

	// Bell is "ignore" or "forward".
	Bell string `yaml:"bell"`

	// Osc52Clipboard is "disabled", "read_only" or "read_write".
	Osc52Clipboard string `yaml:"osc52_clipboard"`

	// Keybindings overrides individual chords by action name, e.g.
	//   enter_copy_mode: ctrl+x
	Keybindings map[string]string `yaml:"keybindings"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Shell:          "",
		Rows:           24,
		Cols:           80,
		ScrollbackCap:  10000,
		FollowOutput:   true,
		DefaultFG:      "default",
		DefaultBG:      "default",
		Bell:           "ignore",
		Osc52Clipboard: "read_write",
	}
}

// configPath returns the path to ~/.termpane.yaml.
func configPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".termpane.yaml")
}

// Load reads the config file, falling back to defaults for missing
// fields and clamping out-of-range values.
func Load() Config {
	cfg := DefaultConfig()

	p := configPath()
	if p == "" {
		return cfg
	}

	data, err := os.ReadFile(p)
	if err != nil {
		// No config file yet – write defaults for future editing.
		writeDefaults(p, cfg)
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)
	return Sanitize(cfg)
}

// Sanitize applies bounds and normalises enum fields.
func Sanitize(cfg Config) Config {
	if cfg.Rows < 1 {
		cfg.Rows = 1
	}
	if cfg.Cols < 1 {
		cfg.Cols = 1
	}
	if cfg.ScrollbackCap < 0 {
		cfg.ScrollbackCap = 0
	}
	if cfg.ScrollbackCap > 1000000 {
		cfg.ScrollbackCap = 1000000
	}
	switch cfg.Bell {
	case "ignore", "forward":
	default:
		cfg.Bell = "ignore"
	}
	switch cfg.Osc52Clipboard {
	case "disabled", "read_only", "read_write":
	default:
		cfg.Osc52Clipboard = "read_write"
	}
	return cfg
}

// writeDefaults persists the default configuration to disk.
func writeDefaults(path string, cfg Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	header := []byte("# termpane configuration\n# Edit this file to customise defaults.\n\n")
	_ = os.WriteFile(path, append(header, data...), 0644)
}

// Options converts the configuration into session options. Unknown
// binding names or unparsable chords are reported; the returned
// options are still usable with the offending bindings left at their
// defaults.
func (c Config) Options() (terminal.Options, error) {
	opts := terminal.DefaultOptions()
	opts.Rows = c.Rows
	opts.Cols = c.Cols
	opts.ScrollbackCap = c.ScrollbackCap
	opts.FollowOutput = c.FollowOutput

	if c.Bell == "forward" {
		opts.BellPolicy = terminal.BellForward
	}
	switch c.Osc52Clipboard {
	case "disabled":
		opts.Osc52 = terminal.ClipboardDisabled
	case "read_only":
		opts.Osc52 = terminal.ClipboardReadOnly
	}

	var firstErr error
	for name, chord := range c.Keybindings {
		if err := opts.Keybindings.Set(name, chord); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("keybinding %s: %w", name, err)
		}
	}
	return opts, firstErr
}

// ParseColor turns a config colour name into a terminal colour.
func ParseColor(name string) terminal.Color {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" || name == "default" {
		return terminal.DefaultColor
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return terminal.RGBColor(uint8(v>>16), uint8(v>>8), uint8(v))
		}
		return terminal.DefaultColor
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n <= 255 {
		return terminal.IndexedColor(uint8(n))
	}
	return terminal.DefaultColor
}

// ShellArgv splits the configured shell into an argv slice. Empty
// means "use the platform default".
func (c Config) ShellArgv() []string {
	fields := strings.Fields(c.Shell)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
