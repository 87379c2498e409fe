package tmux

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/b/panejump/pkg/keybind"
)

var ErrNoBindings = errors.New("no key bindings in config")

// Binding is one bind stanza addressed to a plugin.
type Binding struct {
	Mode     keybind.InputMode
	Key      keybind.Key
	PluginID uint32
	Action   string
}

var bindingPattern = regexp.MustCompile(`(?s)keybinds\s*\{\s*(\w+)\s*\{\s*bind\s+"((?:[^"\\]|\\.)*)"\s*\{\s*MessagePluginId\s+(\d+)\s*\{\s*name\s+"((?:[^"\\]|\\.)*)"\s*\}`)

// ParseBindings extracts the bindings from keybind configuration text.
func ParseBindings(config string) ([]Binding, error) {
	matches := bindingPattern.FindAllStringSubmatch(config, -1)
	if len(matches) == 0 {
		return nil, ErrNoBindings
	}

	bindings := make([]Binding, 0, len(matches))
	for _, m := range matches {
		mode, err := keybind.ParseMode(m[1])
		if err != nil {
			return nil, err
		}
		desc, err := keybind.UnquoteString(m[2])
		if err != nil {
			return nil, err
		}
		key, err := keybind.ParseKey(desc)
		if err != nil {
			return nil, err
		}
		action, err := keybind.UnquoteString(m[4])
		if err != nil {
			return nil, err
		}
		id, err := strconv.ParseUint(m[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("plugin id %q: %w", m[3], err)
		}
		bindings = append(bindings, Binding{
			Mode:     mode,
			Key:      key,
			PluginID: uint32(id),
			Action:   action,
		})
	}
	return bindings, nil
}
