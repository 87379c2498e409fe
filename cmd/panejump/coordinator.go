package main

import (
	"context"
	"maps"
	"reflect"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"pkt.systems/pslog"

	"github.com/b/panejump/pkg/config"
	"github.com/b/panejump/pkg/daemon"
	"github.com/b/panejump/pkg/keybind"
	"github.com/b/panejump/pkg/pane"
	"github.com/b/panejump/pkg/perf"
	"github.com/b/panejump/pkg/plugin"
	"github.com/b/panejump/pkg/tmux"
)

// selfCommand is the command name of panes running panejump itself.
const selfCommand = "panejump"

// slowPoll is how long one tmux snapshot may take before it is logged as a
// warning.
const slowPoll = 200 * time.Millisecond

// windowLister is the part of the tmux client the coordinator polls.
type windowLister interface {
	ListWindows(ctx context.Context) ([]tmux.Window, error)
}

// Coordinator owns the Controller. Every event reaches it through one
// goroutine (Run); other goroutines hand work over with submit.
type Coordinator struct {
	log      pslog.Logger
	ctrl     *plugin.Controller
	windows  windowLister
	snapOpts tmux.SnapshotOptions
	keybinds map[string]string

	lastTabs     []pane.TabInfo
	lastManifest pane.Manifest

	work chan func()

	viewMu sync.Mutex
	view   plugin.View

	// OnChange is called on the loop goroutine after the view changed.
	OnChange func()
}

func styleFromConfig(s config.Style) plugin.Style {
	return plugin.Style{
		SelectedFg:  s.SelectedFg,
		SelectedBg:  s.SelectedBg,
		StarMarker:  s.StarMarker,
		FocusMarker: s.FocusMarker,
	}
}

// NewCoordinator builds the Controller from cfg. It fails when a keybind in
// cfg does not parse.
func NewCoordinator(ctx context.Context, cfg config.Config, windows windowLister, host plugin.Host) (*Coordinator, error) {
	ctrl, err := plugin.New(ctx, host, plugin.Options{
		PluginID: cfg.PluginID,
		Keybinds: cfg.Keybinds,
		Style:    styleFromConfig(cfg.Style),
	})
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		log:     pslog.Ctx(ctx),
		ctrl:    ctrl,
		windows: windows,
		snapOpts: tmux.SnapshotOptions{
			SkipCommands:   cfg.SkipCommands,
			PluginCommands: []string{selfCommand},
		},
		keybinds: maps.Clone(cfg.Keybinds),
		work:     make(chan func()),
		view:     ctrl.View(),
	}, nil
}

// Start binds the global keys. The tmux host has a single base mode.
func (c *Coordinator) Start() {
	mode := keybind.ModeNormal
	c.ctrl.Update(plugin.ModeUpdate{BaseMode: &mode})
}

// Poll snapshots tmux and, when anything changed, hands the Controller both
// sides in one LayoutUpdate.
func (c *Coordinator) Poll(ctx context.Context) {
	defer perf.Start(c.log, "poll", slowPoll).Stop()

	windows, err := c.windows.ListWindows(ctx)
	if err != nil {
		c.log.Warn("list windows failed", "error", err)
		return
	}
	tabs, manifest := tmux.Snapshot(windows, c.snapOpts)

	if reflect.DeepEqual(tabs, c.lastTabs) && reflect.DeepEqual(manifest, c.lastManifest) {
		return
	}
	c.lastTabs, c.lastManifest = tabs, manifest
	if c.ctrl.Update(plugin.LayoutUpdate{Tabs: tabs, Panes: manifest}) {
		c.publish()
	}
}

// Key delivers a key press from the list popup.
func (c *Coordinator) Key(desc string) {
	key, err := keybind.ParseKey(desc)
	if err != nil {
		c.log.Debug("key ignored", "key", desc, "error", err)
		return
	}
	if c.ctrl.Update(plugin.KeyPress(key)) {
		c.publish()
	}
}

// Pipe delivers a named action and reports whether it was consumed.
func (c *Coordinator) Pipe(p daemon.PipePayload) bool {
	consumed := c.ctrl.Pipe(plugin.PipeMessage{
		Source:    plugin.ParsePipeSource(p.Source),
		IsPrivate: p.Private,
		Name:      p.Name,
	})
	if consumed {
		// Starring changes the markers.
		c.publish()
	}
	return consumed
}

// Reload applies the live parts of cfg: style and skip list. Keybinds are
// bound once at start.
func (c *Coordinator) Reload(cfg config.Config) {
	c.ctrl.SetStyle(styleFromConfig(cfg.Style))
	c.snapOpts.SkipCommands = cfg.SkipCommands
	if !maps.Equal(cfg.Keybinds, c.keybinds) {
		c.log.Warn("keybind changes require a restart")
	}
	// Force the next poll to deliver a fresh manifest.
	c.lastManifest = nil
	c.publish()
	c.log.Info("config reloaded")
}

func (c *Coordinator) publish() {
	c.viewMu.Lock()
	c.view = c.ctrl.View()
	c.viewMu.Unlock()
	if c.OnChange != nil {
		c.OnChange()
	}
}

// View returns the latest published view. Safe from any goroutine.
func (c *Coordinator) View() plugin.View {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.view
}

// Frame renders the latest view for a client. Safe from any goroutine.
func (c *Coordinator) Frame(width, height int, colorProfile string) *daemon.RenderPayload {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	// The lipgloss profile is global; the view lock serialises renders.
	lipgloss.SetColorProfile(parseColorProfile(colorProfile))
	return &daemon.RenderPayload{
		Content:    c.view.Render(0, width),
		Width:      width,
		Height:     height,
		Selected:   c.view.Selected,
		TotalLines: len(c.view.Lines),
	}
}

func parseColorProfile(name string) termenv.Profile {
	switch name {
	case "TrueColor":
		return termenv.TrueColor
	case "ANSI":
		return termenv.ANSI
	case "Ascii":
		return termenv.Ascii
	default:
		return termenv.ANSI256
	}
}

// submit runs f on the loop goroutine and waits for it to finish. It
// returns false when ctx ends first.
func (c *Coordinator) submit(ctx context.Context, f func()) bool {
	done := make(chan struct{})
	select {
	case c.work <- func() { f(); close(done) }:
	case <-ctx.Done():
		return false
	}
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run is the loop goroutine. It polls on every tick, runs submitted work
// and reloads the config whenever reload fires.
func (c *Coordinator) Run(ctx context.Context, ticks <-chan time.Time, reload <-chan config.Config) {
	c.Start()
	c.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			c.Poll(ctx)
		case f := <-c.work:
			f()
		case cfg := <-reload:
			c.Reload(cfg)
		}
	}
}
