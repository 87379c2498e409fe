package keybind

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadEscape = errors.New("bad escape in config string")

const keybindTemplate = `
keybinds {
    %s {
        bind %s {
            MessagePluginId %d {
                name %s
            }
        }
    }
}
`

// CreateKeybindConfig renders a host configuration stanza that binds key,
// in mode, to a message named action sent to the plugin instance pluginID.
func CreateKeybindConfig(mode InputMode, pluginID uint32, key Key, action string) string {
	return fmt.Sprintf(keybindTemplate, strings.ToLower(mode.String()), QuoteString(key.String()), pluginID, QuoteString(action))
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// QuoteString renders s as a double-quoted config string, escaping
// backslashes and double quotes.
func QuoteString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

// UnquoteString reverses QuoteString for the body of a quoted string, without
// the surrounding quotes. Only \\ and \" are accepted as escapes.
func UnquoteString(body string) (string, error) {
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(body) || (body[i+1] != '\\' && body[i+1] != '"') {
			return "", fmt.Errorf("%w: %q", ErrBadEscape, body)
		}
		i++
		b.WriteByte(body[i])
	}
	return b.String(), nil
}
