package tmux

import (
	"errors"
	"fmt"
	"strings"

	"github.com/b/panejump/pkg/keybind"
)

var ErrUnsupportedKey = errors.New("key has no tmux equivalent")

var tmuxKeyNames = map[keybind.BareKey]string{
	keybind.KeyPageDown:  "NPage",
	keybind.KeyPageUp:    "PPage",
	keybind.KeyLeft:      "Left",
	keybind.KeyDown:      "Down",
	keybind.KeyUp:        "Up",
	keybind.KeyRight:     "Right",
	keybind.KeyHome:      "Home",
	keybind.KeyEnd:       "End",
	keybind.KeyBackspace: "BSpace",
	keybind.KeyDelete:    "DC",
	keybind.KeyInsert:    "IC",
	keybind.KeyTab:       "Tab",
	keybind.KeyEsc:       "Escape",
	keybind.KeyEnter:     "Enter",
}

// TmuxKey translates a key into tmux's bind-key syntax, e.g. "Alt y"
// becomes "M-y".
func TmuxKey(k keybind.Key) (string, error) {
	if k.Mods&keybind.ModSuper != 0 {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, k)
	}

	var name string
	switch {
	case k.Bare == keybind.KeyChar && k.Rune == ' ':
		name = "Space"
	case k.Bare == keybind.KeyChar:
		name = string(k.Rune)
	case k.Bare >= keybind.KeyF1 && k.Bare <= keybind.KeyF12:
		name = fmt.Sprintf("F%d", int(k.Bare-keybind.KeyF1)+1)
	default:
		var ok bool
		if name, ok = tmuxKeyNames[k.Bare]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, k)
		}
	}

	var b strings.Builder
	if k.Mods&keybind.ModCtrl != 0 {
		b.WriteString("C-")
	}
	if k.Mods&keybind.ModAlt != 0 {
		b.WriteString("M-")
	}
	if k.Mods&keybind.ModShift != 0 {
		b.WriteString("S-")
	}
	b.WriteString(name)
	return b.String(), nil
}
