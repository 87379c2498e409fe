package tmux

import (
	"strconv"
	"strings"

	"github.com/b/panejump/pkg/pane"
)

// SnapshotOptions controls how tmux panes map onto navigator panes.
type SnapshotOptions struct {
	// SkipCommands lists commands whose panes cannot be selected.
	SkipCommands []string
	// PluginCommands lists commands whose panes count as plugin panes.
	PluginCommands []string
}

// PaneNumber returns N for a tmux pane id "%N".
func PaneNumber(id string) (uint32, bool) {
	n, err := strconv.ParseUint(strings.TrimPrefix(id, "%"), 10, 32)
	if err != nil || !strings.HasPrefix(id, "%") {
		return 0, false
	}
	return uint32(n), true
}

// PaneTarget is the inverse of PaneNumber.
func PaneTarget(n uint32) string {
	return "%" + strconv.FormatUint(uint64(n), 10)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Snapshot converts windows into a tab snapshot and a pane manifest. Tab
// positions follow the order of windows, not tmux window indexes, since
// those may have gaps.
func Snapshot(windows []Window, opts SnapshotOptions) ([]pane.TabInfo, pane.Manifest) {
	tabs := make([]pane.TabInfo, 0, len(windows))
	manifest := make(pane.Manifest, len(windows))
	for pos, w := range windows {
		tabs = append(tabs, pane.TabInfo{Position: pos, Name: w.Name, Active: w.Active})

		infos := make([]pane.PaneInfo, 0, len(w.Panes))
		for _, p := range w.Panes {
			n, ok := PaneNumber(p.ID)
			if !ok {
				continue
			}
			title := p.Title
			if title == "" {
				title = p.Command
			}
			infos = append(infos, pane.PaneInfo{
				ID:           n,
				Title:        title,
				IsPlugin:     contains(opts.PluginCommands, p.Command),
				IsSelectable: !contains(opts.SkipCommands, p.Command),
				IsFocused:    p.Active,
			})
		}
		manifest[pos] = infos
	}
	return tabs, manifest
}
