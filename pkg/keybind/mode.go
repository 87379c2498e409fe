package keybind

import (
	"fmt"
	"strings"
)

// InputMode is the host's input mode. Keybind stanzas are scoped to one.
type InputMode uint8

const (
	ModeNormal InputMode = iota
	ModeLocked
	ModeResize
	ModePane
	ModeTab
	ModeScroll
	ModeEnterSearch
	ModeSearch
	ModeRenameTab
	ModeRenamePane
	ModeSession
	ModeMove
	ModePrompt
	ModeTmux
)

var modeNames = [...]string{
	ModeNormal:      "Normal",
	ModeLocked:      "Locked",
	ModeResize:      "Resize",
	ModePane:        "Pane",
	ModeTab:         "Tab",
	ModeScroll:      "Scroll",
	ModeEnterSearch: "EnterSearch",
	ModeSearch:      "Search",
	ModeRenameTab:   "RenameTab",
	ModeRenamePane:  "RenamePane",
	ModeSession:     "Session",
	ModeMove:        "Move",
	ModePrompt:      "Prompt",
	ModeTmux:        "Tmux",
}

func (m InputMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("InputMode(%d)", uint8(m))
}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (InputMode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return InputMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown input mode %q", s)
}
