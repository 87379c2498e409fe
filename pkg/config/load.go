package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/b/panejump/pkg/keybind"
)

var (
	ErrConfigExists    = errors.New("config already exists")
	ErrInvalidInterval = errors.New("poll_interval must be positive")
)

// Load reads configuration from path. If path is empty, DefaultConfigPath is
// used. A missing file yields DefaultConfig.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("poll_interval", cfg.PollInterval)
	v.SetDefault("skip_commands", cfg.SkipCommands)
	v.SetDefault("style.selected_fg", cfg.Style.SelectedFg)
	v.SetDefault("style.selected_bg", cfg.Style.SelectedBg)
	v.SetDefault("style.star_marker", cfg.Style.StarMarker)
	v.SetDefault("style.focus_marker", cfg.Style.FocusMarker)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// SetConfigFile reports a missing file as a plain fs error.
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.Keybinds == nil {
		cfg.Keybinds = map[string]string{}
	}
	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidInterval, cfg.PollInterval)
	}
	return cfg, nil
}

// document is the on-disk shape written by WriteDefault.
type document struct {
	PluginID     *uint32           `yaml:"plugin_id,omitempty"`
	PollInterval string            `yaml:"poll_interval"`
	SkipCommands []string          `yaml:"skip_commands"`
	Keybinds     map[string]string `yaml:"keybinds"`
	Style        Style             `yaml:"style"`
}

// defaultKeybinds spells out every action with its built-in key so the
// written file documents what can be changed.
func defaultKeybinds() map[string]string {
	kb := keybind.Default()
	out := make(map[string]string)
	for _, actions := range [][]string{keybind.GlobalActions, keybind.PluginActions} {
		for _, action := range actions {
			if key, ok := kb.Get(action); ok {
				out[action] = key.String()
			}
		}
	}
	return out
}

// WriteDefault writes the default configuration to path (DefaultConfigPath
// when empty) and returns the path written.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w at %s", ErrConfigExists, path)
		}
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(document{
		PluginID:     cfg.PluginID,
		PollInterval: cfg.PollInterval.String(),
		SkipCommands: cfg.SkipCommands,
		Keybinds:     defaultKeybinds(),
		Style:        cfg.Style,
	})
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}
