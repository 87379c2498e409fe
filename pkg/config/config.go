// Package config loads panejump's YAML configuration.
package config

import (
	"time"

	"github.com/b/panejump/pkg/paths"
)

// Config is the top-level configuration.
type Config struct {
	// PluginID is the navigator's own pane id on the host, hidden from the
	// list. Nil when unset: tmux hosts have no such pane, and a zero default
	// would hide pane %0.
	PluginID     *uint32           `mapstructure:"plugin_id" yaml:"plugin_id,omitempty"`
	PollInterval time.Duration     `mapstructure:"poll_interval" yaml:"poll_interval"`
	SkipCommands []string          `mapstructure:"skip_commands" yaml:"skip_commands"`
	Keybinds     map[string]string `mapstructure:"keybinds" yaml:"keybinds"`
	Style        Style             `mapstructure:"style" yaml:"style"`
}

// Style controls the pane list colors and markers.
type Style struct {
	SelectedFg  string `mapstructure:"selected_fg" yaml:"selected_fg"`
	SelectedBg  string `mapstructure:"selected_bg" yaml:"selected_bg"`
	StarMarker  string `mapstructure:"star_marker" yaml:"star_marker"`
	FocusMarker string `mapstructure:"focus_marker" yaml:"focus_marker"`
}

const defaultPollInterval = 500 * time.Millisecond

// DefaultConfig returns the built-in configuration. Keybinds is left empty;
// the navigator falls back to its own default keys.
func DefaultConfig() Config {
	return Config{
		PollInterval: defaultPollInterval,
		SkipCommands: []string{},
		Keybinds:     map[string]string{},
		Style: Style{
			StarMarker: " *",
		},
	}
}

// DefaultConfigPath returns ~/.config/panejump/config.yaml or its override.
func DefaultConfigPath() string {
	return paths.ConfigPath()
}
