package plugin

import (
	"github.com/b/panejump/pkg/keybind"
	"github.com/b/panejump/pkg/pane"
)

// Host is what the controller can ask of the terminal multiplexer.
type Host interface {
	// FocusPane focuses id; activateTab also switches to its tab.
	FocusPane(id pane.ID, activateTab bool)
	// HideSelf hides the navigator's own pane.
	HideSelf()
	// ShowSelf brings the navigator's own pane up.
	ShowSelf()
	// Reconfigure applies a keybind configuration stanza.
	Reconfigure(config string, saveToDisk bool)
}

// Event is delivered to Controller.Update.
type Event interface {
	isEvent()
}

// TabUpdate carries a fresh tab snapshot.
type TabUpdate []pane.TabInfo

// PaneUpdate carries a fresh pane snapshot.
type PaneUpdate pane.Manifest

// LayoutUpdate carries tab and pane snapshots taken together. They are
// applied in one rebuild.
type LayoutUpdate struct {
	Tabs  []pane.TabInfo
	Panes pane.Manifest
}

// KeyPress is a key pressed while the navigator pane has focus.
type KeyPress keybind.Key

// ModeUpdate reports the host's input modes. BaseMode is nil until the
// host knows it.
type ModeUpdate struct {
	BaseMode *keybind.InputMode
}

func (TabUpdate) isEvent()    {}
func (PaneUpdate) isEvent()   {}
func (LayoutUpdate) isEvent() {}
func (KeyPress) isEvent()     {}
func (ModeUpdate) isEvent()   {}

// PipeSource tells where a pipe message came from.
type PipeSource uint8

const (
	PipeSourceCLI PipeSource = iota
	PipeSourcePlugin
	PipeSourceKeybind
)

var pipeSourceNames = map[PipeSource]string{
	PipeSourceCLI:     "cli",
	PipeSourcePlugin:  "plugin",
	PipeSourceKeybind: "keybind",
}

func (s PipeSource) String() string {
	if name, ok := pipeSourceNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParsePipeSource is the inverse of PipeSource.String. Unknown names map to
// PipeSourceCLI.
func ParsePipeSource(s string) PipeSource {
	for src, name := range pipeSourceNames {
		if name == s {
			return src
		}
	}
	return PipeSourceCLI
}

// PipeMessage is a named message addressed to the plugin.
type PipeMessage struct {
	Source    PipeSource
	IsPrivate bool
	Name      string
}
