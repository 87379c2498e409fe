// Package registry rebuilds the selectable pane list from the host's tab and
// pane snapshots and tracks the current and previous focus.
//
// The host sends tab and pane updates as separate events in no particular
// order, so each snapshot is stored on its own and the list is recomputed
// from whatever pair is held every time either side changes.
package registry

import "github.com/b/panejump/pkg/pane"

// Focus holds the current and previous focused panes. Either may refer to a
// pane that has since disappeared.
type Focus struct {
	current     pane.ID
	previous    pane.ID
	hasCurrent  bool
	hasPrevious bool
}

// NewFocus builds a Focus from optional ids.
func NewFocus(current, previous *pane.ID) Focus {
	var f Focus
	if current != nil {
		f.current, f.hasCurrent = *current, true
	}
	if previous != nil {
		f.previous, f.hasPrevious = *previous, true
	}
	return f
}

func (f Focus) Current() (pane.ID, bool)  { return f.current, f.hasCurrent }
func (f Focus) Previous() (pane.ID, bool) { return f.previous, f.hasPrevious }

// Snapshot is one tab snapshot paired with one pane snapshot.
type Snapshot struct {
	Tabs  []pane.TabInfo
	Panes pane.Manifest
}

// Result is the outcome of a reconciliation.
type Result struct {
	Panes []pane.Pane
	Focus Focus
	Live  map[pane.ID]struct{}
}

// Reconcile filters the snapshot into the visible pane list and derives the
// new focus from the previous one. self is the hosting plugin's own id, if
// known; that pane is never listed.
func Reconcile(snap Snapshot, self *uint32, focus Focus) Result {
	var panes []pane.Pane
	var candidate pane.ID
	hasCandidate := false

	for tabIdx, tab := range snap.Tabs {
		infos, ok := snap.Panes[tabIdx]
		if !ok {
			continue
		}
		for _, info := range infos {
			if info.IsPlugin && self != nil && info.ID == *self {
				continue
			}
			if info.IsSuppressed || !info.IsSelectable {
				continue
			}

			id := info.PaneID()
			panes = append(panes, pane.Pane{
				TabName: tab.Name,
				Title:   info.Title,
				ID:      id,
			})

			// Only terminal panes in the active tab count as focus; a stale
			// focused flag on an inactive tab is ignored.
			if info.IsFocused && tab.Active && !info.IsPlugin {
				candidate, hasCandidate = id, true
			}
		}
	}

	live := make(map[pane.ID]struct{}, len(panes))
	for _, p := range panes {
		live[p.ID] = struct{}{}
	}

	if hasCandidate && !(focus.hasCurrent && focus.current == candidate) {
		_, currentLive := live[focus.current]
		_, previousLive := live[focus.previous]
		switch {
		case focus.hasCurrent && currentLive:
			focus.previous, focus.hasPrevious = focus.current, true
		case focus.hasPrevious && previousLive:
			// The old current is gone but the old previous is still valid.
		default:
			focus.previous, focus.hasPrevious = pane.ID{}, false
		}
		focus.current, focus.hasCurrent = candidate, true
	}

	return Result{Panes: panes, Focus: focus, Live: live}
}

// StarSyncer drops stars that no longer point at a live pane.
type StarSyncer interface {
	Sync(live map[pane.ID]struct{})
}

// Registry holds the last snapshots received from the host and the derived
// pane list and focus.
type Registry struct {
	tabs     []pane.TabInfo
	manifest pane.Manifest
	self     *uint32

	panes []pane.Pane
	focus Focus
	stars StarSyncer
}

// New returns an empty registry. stars may be nil.
func New(stars StarSyncer) *Registry {
	return &Registry{stars: stars}
}

// SetPluginID records the hosting plugin's own pane id so it can be hidden
// from the list.
func (r *Registry) SetPluginID(id uint32) {
	r.self = &id
}

// SetFocus overrides the stored focus.
func (r *Registry) SetFocus(f Focus) {
	r.focus = f
}

// UpdateTabs stores a fresh tab snapshot and rebuilds.
func (r *Registry) UpdateTabs(tabs []pane.TabInfo) {
	r.tabs = tabs
	r.Rebuild()
}

// UpdatePanes stores a fresh pane snapshot and rebuilds.
func (r *Registry) UpdatePanes(manifest pane.Manifest) {
	r.manifest = manifest
	r.Rebuild()
}

// Update stores both snapshots and rebuilds once. Use it when the two were
// taken together: the manifest is keyed by tab position, so pairing new tabs
// with an old manifest misplaces panes and drops their stars.
func (r *Registry) Update(tabs []pane.TabInfo, manifest pane.Manifest) {
	r.tabs = tabs
	r.manifest = manifest
	r.Rebuild()
}

// Rebuild recomputes the pane list and focus from the stored snapshots and
// syncs the stars against the result.
func (r *Registry) Rebuild() {
	res := Reconcile(Snapshot{Tabs: r.tabs, Panes: r.manifest}, r.self, r.focus)
	r.focus = res.Focus
	if r.stars != nil {
		r.stars.Sync(res.Live)
	}
	r.panes = res.Panes
}

// Panes returns the visible panes in list order.
func (r *Registry) Panes() []pane.Pane { return r.panes }

// Focus returns the current focus state.
func (r *Registry) Focus() Focus { return r.focus }
