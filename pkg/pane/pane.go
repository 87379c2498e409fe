// Package pane holds the identifiers and layout snapshots shared by the
// registry, the star ring and the plugin controller.
package pane

import "fmt"

// Kind separates terminal panes from plugin panes. Both share one numeric
// id space on the host, so an ID is only equal when Kind and N match.
type Kind uint8

const (
	Terminal Kind = iota
	Plugin
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Plugin:
		return "plugin"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ID identifies a pane on the host. It is comparable and used as a map key.
type ID struct {
	Kind Kind
	N    uint32
}

func TerminalID(n uint32) ID { return ID{Kind: Terminal, N: n} }

func PluginID(n uint32) ID { return ID{Kind: Plugin, N: n} }

func (id ID) String() string {
	return fmt.Sprintf("%s_%d", id.Kind, id.N)
}

// TabInfo describes one tab. Its position in the snapshot slice is what
// correlates it with a Manifest entry; Position is informational.
type TabInfo struct {
	Position int
	Name     string
	Active   bool
}

// PaneInfo describes one pane as reported by the host.
type PaneInfo struct {
	ID           uint32
	Title        string
	IsPlugin     bool
	IsSuppressed bool
	IsSelectable bool
	IsFocused    bool
}

// PaneID returns the tagged identifier for the pane.
func (p PaneInfo) PaneID() ID {
	if p.IsPlugin {
		return PluginID(p.ID)
	}
	return TerminalID(p.ID)
}

// Manifest maps a tab index to the panes it contains, in host order.
type Manifest map[int][]PaneInfo

// Pane is one selectable entry in the navigator list.
type Pane struct {
	TabName string
	Title   string
	ID      ID
}
