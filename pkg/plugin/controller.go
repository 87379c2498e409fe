// Package plugin routes host events and key presses to the pane registry,
// the star ring and the keybind emitter, and issues host actions in return.
package plugin

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"github.com/b/panejump/pkg/keybind"
	"github.com/b/panejump/pkg/pane"
	"github.com/b/panejump/pkg/registry"
	"github.com/b/panejump/pkg/star"
)

// Options configures a Controller at load time.
type Options struct {
	// PluginID is this plugin instance's id on the host. When nil no pane
	// is hidden as the navigator's own and bindings carry id 0.
	PluginID *uint32
	// Keybinds overrides the built-in key map; see keybind.FromMap.
	Keybinds map[string]string
	Style    Style
}

// Controller owns the navigator state. It is not safe for concurrent use;
// the host delivers one event at a time.
type Controller struct {
	host     Host
	log      pslog.Logger
	pluginID uint32

	registry *registry.Registry
	stars    *star.Star
	keybinds *keybind.Keybinds
	style    Style

	selected int
	// boundKeys makes global key binding one-shot for the controller's
	// lifetime; later mode reports do not rebind.
	boundKeys bool
}

// New builds a controller. It fails when a keybind override does not parse.
func New(ctx context.Context, host Host, opts Options) (*Controller, error) {
	kb, err := keybind.FromMap(opts.Keybinds)
	if err != nil {
		return nil, fmt.Errorf("load keybinds: %w", err)
	}

	stars := star.New()
	reg := registry.New(stars)
	var pluginID uint32
	if opts.PluginID != nil {
		pluginID = *opts.PluginID
		reg.SetPluginID(pluginID)
	}

	return &Controller{
		host:     host,
		log:      pslog.Ctx(ctx).With("plugin_id", pluginID),
		pluginID: pluginID,
		registry: reg,
		stars:    stars,
		keybinds: kb,
		style:    opts.Style.withDefaults(),
	}, nil
}

// Update handles a host event and reports whether the view should be
// rendered again.
func (c *Controller) Update(ev Event) bool {
	switch ev := ev.(type) {
	case ModeUpdate:
		if ev.BaseMode != nil {
			c.bindKeys(*ev.BaseMode)
		}
		return false
	case TabUpdate:
		c.rebuild(func() { c.registry.UpdateTabs(ev) })
		return true
	case PaneUpdate:
		c.rebuild(func() { c.registry.UpdatePanes(pane.Manifest(ev)) })
		return true
	case LayoutUpdate:
		c.rebuild(func() { c.registry.Update(ev.Tabs, ev.Panes) })
		return true
	case KeyPress:
		return c.handleKey(keybind.Key(ev))
	}
	return false
}

func (c *Controller) rebuild(update func()) {
	before := c.registry.Focus()
	update()
	after := c.registry.Focus()
	if after != before {
		current, _ := after.Current()
		previous, hasPrevious := after.Previous()
		if hasPrevious {
			c.log.Debug("focus changed", "current", current.String(), "previous", previous.String())
		} else {
			c.log.Debug("focus changed", "current", current.String())
		}
	}
	c.clampSelection()
}

func (c *Controller) clampSelection() {
	n := len(c.registry.Panes())
	if n == 0 {
		c.selected = 0
		return
	}
	if c.selected >= n {
		c.selected = n - 1
	}
}

func (c *Controller) bindKeys(mode keybind.InputMode) {
	if c.boundKeys {
		return
	}
	count := 0
	c.keybinds.BindGlobalKeys(mode, c.pluginID, func(config string, saveToDisk bool) {
		c.host.Reconfigure(config, saveToDisk)
		count++
	})
	c.boundKeys = true
	c.log.Info("keybinds bound", "mode", mode.String(), "count", count)
}

func (c *Controller) handleKey(key keybind.Key) bool {
	action, ok := c.keybinds.Action(key)
	if !ok {
		return false
	}

	switch action {
	case keybind.PluginSelectDown:
		c.selectDownward()
	case keybind.PluginSelectUp:
		c.selectUpward()
	case keybind.PluginNavigateTo:
		if p, ok := c.selectedPane(); ok {
			c.host.FocusPane(p.ID, true)
			c.host.HideSelf()
		}
	case keybind.PluginHide:
		c.host.HideSelf()
	case keybind.PluginToggleStar:
		if p, ok := c.selectedPane(); ok {
			c.stars.Toggle(p.ID)
		}
	}
	return true
}

func (c *Controller) selectedPane() (pane.Pane, bool) {
	panes := c.registry.Panes()
	if c.selected < 0 || c.selected >= len(panes) {
		return pane.Pane{}, false
	}
	return panes[c.selected], true
}

func (c *Controller) selectDownward() {
	if n := len(c.registry.Panes()); n > 0 {
		c.selected = (c.selected + 1) % n
	}
}

func (c *Controller) selectUpward() {
	if n := len(c.registry.Panes()); n > 0 {
		c.selected = (c.selected + n - 1) % n
	}
}

// Pipe handles a named message. Only private messages sent by a key binding
// are consumed; anything else is declined and false is returned.
func (c *Controller) Pipe(msg PipeMessage) bool {
	if msg.Source != PipeSourceKeybind || !msg.IsPrivate {
		c.log.Debug("pipe declined", "name", msg.Name, "source", msg.Source.String(), "private", msg.IsPrivate)
		return false
	}

	focus := c.registry.Focus()
	current, hasCurrent := focus.Current()

	switch msg.Name {
	case keybind.ListPanes:
		c.host.ShowSelf()
	case keybind.NavigateBack:
		if id, ok := focus.Previous(); ok {
			c.host.FocusPane(id, true)
		}
	case keybind.ToggleStar:
		if hasCurrent {
			c.stars.Toggle(current)
		}
	case keybind.NextStar:
		if hasCurrent {
			if id, ok := c.stars.Next(current); ok {
				c.host.FocusPane(id, true)
			}
		}
	case keybind.PreviousStar:
		if hasCurrent {
			if id, ok := c.stars.Previous(current); ok {
				c.host.FocusPane(id, true)
			}
		}
	default:
		c.log.Debug("pipe ignored", "name", msg.Name)
	}
	return true
}

// SetStyle replaces the render style.
func (c *Controller) SetStyle(s Style) {
	c.style = s.withDefaults()
}

// Panes returns the listed panes in order.
func (c *Controller) Panes() []pane.Pane { return c.registry.Panes() }

// Selected returns the selection index.
func (c *Controller) Selected() int { return c.selected }

// Focus returns the current focus state.
func (c *Controller) Focus() registry.Focus { return c.registry.Focus() }

// Starred reports whether id is starred.
func (c *Controller) Starred(id pane.ID) bool { return c.stars.Has(id) }
