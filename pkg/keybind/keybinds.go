package keybind

import "errors"

// Global actions are bound in the host and arrive as pipe messages.
const (
	ListPanes    = "list_panes"
	NavigateBack = "navigate_back"
	ToggleStar   = "toggle_star"
	NextStar     = "next_star"
	PreviousStar = "previous_star"
)

// Plugin actions are matched against key presses while the list has focus.
const (
	PluginSelectDown = "plugin_select_down"
	PluginSelectUp   = "plugin_select_up"
	PluginNavigateTo = "plugin_navigate_to"
	PluginHide       = "plugin_hide"
	PluginToggleStar = "plugin_toggle_star"
)

// GlobalActions is the order in which global keys are bound.
var GlobalActions = []string{ListPanes, NavigateBack, ToggleStar, NextStar, PreviousStar}

// PluginActions lists the keys handled inside the plugin pane.
var PluginActions = []string{PluginSelectDown, PluginSelectUp, PluginNavigateTo, PluginHide, PluginToggleStar}

// Keybinds maps action names to keys. A nil entry means the action is
// deliberately left unbound.
type Keybinds struct {
	keys map[string]*Key
}

func keyPtr(k Key) *Key { return &k }

// Default returns the built-in key map.
func Default() *Keybinds {
	return &Keybinds{keys: map[string]*Key{
		ListPanes:    keyPtr(Char('y').WithAlt()),
		NavigateBack: keyPtr(Char('o').WithAlt()),
		ToggleStar:   keyPtr(Char('l').WithAlt()),
		NextStar:     keyPtr(Char('i').WithAlt()),
		PreviousStar: keyPtr(Char('u').WithAlt()),

		PluginSelectDown: keyPtr(Named(KeyDown)),
		PluginSelectUp:   keyPtr(Named(KeyUp)),
		PluginNavigateTo: keyPtr(Named(KeyEnter)),
		PluginHide:       keyPtr(Named(KeyEsc)),
		PluginToggleStar: keyPtr(Char(' ')),
	}}
}

// FromMap starts from Default and applies overrides for known action names.
// An empty value unbinds the action; unknown names are ignored. Any
// descriptor that fails to parse fails the whole map.
func FromMap(overrides map[string]string) (*Keybinds, error) {
	kb := Default()
	for _, action := range allActions() {
		desc, ok := overrides[action]
		if !ok {
			continue
		}
		if desc == "" {
			kb.keys[action] = nil
			continue
		}
		key, err := ParseKey(desc)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Action = action
			}
			return nil, err
		}
		kb.keys[action] = keyPtr(key)
	}
	return kb, nil
}

func allActions() []string {
	out := make([]string, 0, len(GlobalActions)+len(PluginActions))
	out = append(out, GlobalActions...)
	return append(out, PluginActions...)
}

// Get returns the key bound to action, if any.
func (kb *Keybinds) Get(action string) (Key, bool) {
	k := kb.keys[action]
	if k == nil {
		return Key{}, false
	}
	return *k, true
}

// Matches reports whether key is bound to action.
func (kb *Keybinds) Matches(action string, key Key) bool {
	bound, ok := kb.Get(action)
	return ok && bound == key
}

// Action returns the plugin action bound to key.
func (kb *Keybinds) Action(key Key) (string, bool) {
	for _, action := range PluginActions {
		if kb.Matches(action, key) {
			return action, true
		}
	}
	return "", false
}

// BindGlobalKeys renders one stanza per bound global action, in
// GlobalActions order, and hands each to configure.
func (kb *Keybinds) BindGlobalKeys(mode InputMode, pluginID uint32, configure func(config string, saveToDisk bool)) {
	for _, action := range GlobalActions {
		key, ok := kb.Get(action)
		if !ok {
			continue
		}
		configure(CreateKeybindConfig(mode, pluginID, key, action), false)
	}
}
