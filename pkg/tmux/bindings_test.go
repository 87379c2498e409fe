package tmux

import (
	"errors"
	"reflect"
	"testing"

	"github.com/b/panejump/pkg/keybind"
)

func TestParseBindingsRoundTrip(t *testing.T) {
	key := keybind.Char('y').WithAlt()
	config := keybind.CreateKeybindConfig(keybind.ModeNormal, 7, key, keybind.ListPanes)

	got, err := ParseBindings(config)
	if err != nil {
		t.Fatalf("ParseBindings() error: %v", err)
	}
	want := []Binding{{Mode: keybind.ModeNormal, Key: key, PluginID: 7, Action: keybind.ListPanes}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseBindings() = %+v, want %+v", got, want)
	}
}

func TestParseBindingsEscapedKeys(t *testing.T) {
	for _, key := range []keybind.Key{keybind.Char('"').WithAlt(), keybind.Char('\\').WithCtrl()} {
		t.Run(key.String(), func(t *testing.T) {
			config := keybind.CreateKeybindConfig(keybind.ModeNormal, 1, key, keybind.NextStar)
			got, err := ParseBindings(config)
			if err != nil {
				t.Fatalf("ParseBindings() error: %v", err)
			}
			if len(got) != 1 || got[0].Key != key || got[0].Action != keybind.NextStar {
				t.Errorf("ParseBindings() = %+v, want key %v", got, key)
			}
		})
	}
}

func TestParseBindingsDefaults(t *testing.T) {
	var got []Binding
	keybind.Default().BindGlobalKeys(keybind.ModeLocked, 3, func(config string, _ bool) {
		b, err := ParseBindings(config)
		if err != nil {
			t.Fatalf("ParseBindings() error: %v", err)
		}
		got = append(got, b...)
	})

	if len(got) != len(keybind.GlobalActions) {
		t.Fatalf("expected %d bindings, got %d", len(keybind.GlobalActions), len(got))
	}
	for i, b := range got {
		if b.Action != keybind.GlobalActions[i] || b.Mode != keybind.ModeLocked || b.PluginID != 3 {
			t.Errorf("binding %d = %+v", i, b)
		}
	}
}

func TestParseBindingsErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"empty", ""},
		{"unknown mode", `keybinds { bogus { bind "Alt y" { MessagePluginId 1 { name "list_panes" } } } }`},
		{"bad key", `keybinds { normal { bind "Hyper y" { MessagePluginId 1 { name "list_panes" } } } }`},
		{"huge id", `keybinds { normal { bind "Alt y" { MessagePluginId 99999999999 { name "list_panes" } } } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBindings(tt.config); err == nil {
				t.Errorf("ParseBindings(%q) should fail", tt.config)
			}
		})
	}

	if _, err := ParseBindings("keybinds {}"); !errors.Is(err, ErrNoBindings) {
		t.Errorf("expected ErrNoBindings, got %v", err)
	}
}
