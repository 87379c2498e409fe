package pane

import "testing"

func TestIDKindsNeverCoalesce(t *testing.T) {
	if TerminalID(7) == PluginID(7) {
		t.Fatal("terminal and plugin ids with the same number must differ")
	}

	set := map[ID]struct{}{
		TerminalID(7): {},
		PluginID(7):   {},
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(set))
	}
}

func TestIDString(t *testing.T) {
	tests := []struct {
		id       ID
		expected string
	}{
		{TerminalID(3), "terminal_3"},
		{PluginID(12), "plugin_12"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.expected {
			t.Errorf("%#v.String() = %q, want %q", tt.id, got, tt.expected)
		}
	}
}

func TestPaneInfoPaneID(t *testing.T) {
	terminal := PaneInfo{ID: 4}
	if got := terminal.PaneID(); got != TerminalID(4) {
		t.Errorf("PaneID() = %v, want %v", got, TerminalID(4))
	}

	plugin := PaneInfo{ID: 4, IsPlugin: true}
	if got := plugin.PaneID(); got != PluginID(4) {
		t.Errorf("PaneID() = %v, want %v", got, PluginID(4))
	}
}
