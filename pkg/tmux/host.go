package tmux

import (
	"context"
	"strings"

	"pkt.systems/pslog"

	"github.com/b/panejump/pkg/keybind"
	"github.com/b/panejump/pkg/pane"
)

// Host carries out navigator requests against a tmux session. Failures are
// logged; the navigator has no way to act on them.
type Host struct {
	ctx    context.Context
	client *Client
	exe    string
	onHide func()
	log    pslog.Logger
	spawn  func(func())
}

// NewHost returns a host that runs exe for popups and key bindings. onHide
// is called when the navigator asks to be hidden.
func NewHost(ctx context.Context, client *Client, exe string, onHide func()) *Host {
	return &Host{
		ctx:    ctx,
		client: client,
		exe:    exe,
		onHide: onHide,
		log:    pslog.Ctx(ctx).With("session", client.Session()),
		spawn:  func(f func()) { go f() },
	}
}

func (h *Host) FocusPane(id pane.ID, activateTab bool) {
	if id.Kind != pane.Terminal {
		h.log.Debug("focus skipped", "pane", id.String())
		return
	}
	target := PaneTarget(id.N)
	if activateTab {
		if _, err := h.client.run(h.ctx, "select-window", "-t", target); err != nil {
			h.log.Warn("select window failed", "pane", id.String(), "error", err)
			return
		}
	}
	if _, err := h.client.run(h.ctx, "select-pane", "-t", target); err != nil {
		h.log.Warn("select pane failed", "pane", id.String(), "error", err)
	}
}

func (h *Host) HideSelf() {
	if h.onHide != nil {
		h.onHide()
	}
}

// ShowSelf opens the pane list in a popup on an attached client. The popup
// command blocks until it closes, so it runs in the background.
func (h *Host) ShowSelf() {
	h.spawn(func() {
		name, err := h.client.FirstClient(h.ctx)
		if err != nil {
			h.log.Warn("show popup failed", "error", err)
			return
		}
		args := []string{"display-popup", "-c", name, "-E", shellQuote(h.exe) + " list"}
		if session := h.client.Session(); session != "" {
			args[len(args)-1] += " --session " + shellQuote(session)
		}
		if _, err := h.client.run(h.ctx, args...); err != nil {
			h.log.Warn("show popup failed", "client", name, "error", err)
		}
	})
}

// Reconfigure installs the bindings found in config. Bindings are runtime
// only; saveToDisk is not honoured.
func (h *Host) Reconfigure(config string, saveToDisk bool) {
	bindings, err := ParseBindings(config)
	if err != nil {
		h.log.Warn("reconfigure failed", "error", err)
		return
	}
	for _, b := range bindings {
		key, err := TmuxKey(b.Key)
		if err != nil {
			h.log.Warn("key not bound", "action", b.Action, "key", b.Key.String(), "error", err)
			continue
		}
		// tmux expands #{session_id} when the key is pressed, so a binding
		// reaches the daemon of whichever session it was pressed in.
		command := shellQuote(h.exe) + " pipe --session '#{session_id}' " + shellQuote(b.Action)
		if _, err := h.client.run(h.ctx, "bind-key", "-T", keyTable(b.Mode), key, "run-shell", "-b", command); err != nil {
			h.log.Warn("bind-key failed", "action", b.Action, "key", key, "error", err)
			continue
		}
		h.log.Debug("key bound", "action", b.Action, "key", key, "save_to_disk", saveToDisk)
	}
}

func keyTable(mode keybind.InputMode) string {
	if mode == keybind.ModeNormal {
		return "root"
	}
	return "panejump-" + strings.ToLower(mode.String())
}

func shellQuote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-./%") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
