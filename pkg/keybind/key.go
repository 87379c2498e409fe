// Package keybind parses key descriptors, holds the plugin's key map and
// renders the host configuration stanzas that bind global keys to the plugin.
package keybind

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyKey        = errors.New("empty key descriptor")
	ErrUnknownKey      = errors.New("unknown key")
	ErrUnknownModifier = errors.New("unknown modifier")
)

// ParseError reports a descriptor that could not be parsed.
type ParseError struct {
	Action     string
	Descriptor string
	Err        error
}

func (e *ParseError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("parse key %q: %v", e.Descriptor, e.Err)
	}
	return fmt.Sprintf("parse key %q for %s: %v", e.Descriptor, e.Action, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// BareKey is a key without modifiers.
type BareKey uint8

const (
	KeyChar BareKey = iota
	KeyPageDown
	KeyPageUp
	KeyLeft
	KeyDown
	KeyUp
	KeyRight
	KeyHome
	KeyEnd
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyTab
	KeyEsc
	KeyEnter
	KeyCapsLock
	KeyScrollLock
	KeyNumLock
	KeyPrintScreen
	KeyPause
	KeyMenu
)

var bareKeyNames = map[BareKey]string{
	KeyPageDown:    "PageDown",
	KeyPageUp:      "PageUp",
	KeyLeft:        "Left",
	KeyDown:        "Down",
	KeyUp:          "Up",
	KeyRight:       "Right",
	KeyHome:        "Home",
	KeyEnd:         "End",
	KeyBackspace:   "Backspace",
	KeyDelete:      "Delete",
	KeyInsert:      "Insert",
	KeyF1:          "F1",
	KeyF2:          "F2",
	KeyF3:          "F3",
	KeyF4:          "F4",
	KeyF5:          "F5",
	KeyF6:          "F6",
	KeyF7:          "F7",
	KeyF8:          "F8",
	KeyF9:          "F9",
	KeyF10:         "F10",
	KeyF11:         "F11",
	KeyF12:         "F12",
	KeyTab:         "Tab",
	KeyEsc:         "Esc",
	KeyEnter:       "Enter",
	KeyCapsLock:    "CapsLock",
	KeyScrollLock:  "ScrollLock",
	KeyNumLock:     "NumLock",
	KeyPrintScreen: "PrintScreen",
	KeyPause:       "Pause",
	KeyMenu:        "Menu",
}

// bareKeyByName is keyed by lowercase name, matching the host parser which
// compares case-insensitively.
var bareKeyByName = func() map[string]BareKey {
	m := make(map[string]BareKey, len(bareKeyNames))
	for k, name := range bareKeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// Modifier is a bit set of key modifiers.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

// Printed in this order, which is also the host's ordering.
var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModSuper, "Super"},
}

// Key is a bare key plus modifiers. Rune is only meaningful for KeyChar.
type Key struct {
	Bare BareKey
	Rune rune
	Mods Modifier
}

// Char returns an unmodified character key.
func Char(r rune) Key { return Key{Bare: KeyChar, Rune: r} }

// Named returns an unmodified non-character key.
func Named(b BareKey) Key { return Key{Bare: b} }

func (k Key) WithCtrl() Key  { k.Mods |= ModCtrl; return k }
func (k Key) WithAlt() Key   { k.Mods |= ModAlt; return k }
func (k Key) WithShift() Key { k.Mods |= ModShift; return k }
func (k Key) WithSuper() Key { k.Mods |= ModSuper; return k }

// HasNoModifiers reports whether the key was pressed bare.
func (k Key) HasNoModifiers() bool { return k.Mods == 0 }

func (b BareKey) name(r rune) string {
	if b != KeyChar {
		return bareKeyNames[b]
	}
	if r == ' ' {
		return "Space"
	}
	return string(r)
}

// String renders the descriptor in the host's syntax, e.g. "Alt o" or
// "Ctrl Down". ParseKey(k.String()) always yields k.
func (k Key) String() string {
	parts := make([]string, 0, 5)
	for _, m := range modifierNames {
		if k.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, k.Bare.name(k.Rune))
	return strings.Join(parts, " ")
}

// ParseKey parses a whitespace separated descriptor. The last token is the
// bare key, every token before it a modifier.
func ParseKey(s string) (Key, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Key{}, &ParseError{Descriptor: s, Err: ErrEmptyKey}
	}

	key, err := parseBareKey(fields[len(fields)-1])
	if err != nil {
		return Key{}, &ParseError{Descriptor: s, Err: err}
	}
	for _, f := range fields[:len(fields)-1] {
		mod, err := parseModifier(f)
		if err != nil {
			return Key{}, &ParseError{Descriptor: s, Err: err}
		}
		key.Mods |= mod
	}
	return key, nil
}

func parseBareKey(s string) (Key, error) {
	lower := strings.ToLower(s)
	if b, ok := bareKeyByName[lower]; ok {
		return Named(b), nil
	}
	if lower == "space" {
		return Char(' '), nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Char(r), nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

func parseModifier(s string) (Modifier, error) {
	for _, m := range modifierNames {
		if strings.EqualFold(m.name, s) {
			return m.mod, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModifier, s)
}
