package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/b/panejump/pkg/config"
	"github.com/b/panejump/pkg/daemon"
	"github.com/b/panejump/pkg/pane"
	"github.com/b/panejump/pkg/tmux"
)

type fakeWindows struct {
	windows []tmux.Window
	err     error
	calls   int
}

func (f *fakeWindows) ListWindows(context.Context) ([]tmux.Window, error) {
	f.calls++
	return f.windows, f.err
}

type recordingHost struct {
	focused []pane.ID
	hidden  int
	shown   int
	configs []string
}

func (h *recordingHost) FocusPane(id pane.ID, _ bool)      { h.focused = append(h.focused, id) }
func (h *recordingHost) HideSelf()                         { h.hidden++ }
func (h *recordingHost) ShowSelf()                         { h.shown++ }
func (h *recordingHost) Reconfigure(config string, _ bool) { h.configs = append(h.configs, config) }

func twoWindows(activePane string) []tmux.Window {
	return []tmux.Window{
		{ID: "@1", Name: "code", Active: true, Panes: []tmux.Pane{
			{ID: "%1", Command: "nvim", Title: "editor", Active: activePane == "%1"},
			{ID: "%2", Command: "zsh", Title: "shell", Active: activePane == "%2"},
		}},
		{ID: "@2", Name: "ops", Panes: []tmux.Pane{
			{ID: "%5", Command: "htop", Title: "htop", Active: true},
			{ID: "%6", Command: "zsh", Title: "logs"},
		}},
	}
}

func newTestCoordinator(t *testing.T, cfg config.Config, windows *fakeWindows) (*Coordinator, *recordingHost, *int) {
	t.Helper()
	host := &recordingHost{}
	c, err := NewCoordinator(context.Background(), cfg, windows, host)
	if err != nil {
		t.Fatalf("NewCoordinator() error: %v", err)
	}
	changes := 0
	c.OnChange = func() { changes++ }
	return c, host, &changes
}

func TestNewCoordinatorRejectsBadKeybind(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keybinds = map[string]string{"list_panes": "Meta y"}
	if _, err := NewCoordinator(context.Background(), cfg, &fakeWindows{}, &recordingHost{}); err == nil {
		t.Fatal("expected keybind error")
	}
}

func TestPollPublishesOnlyOnChange(t *testing.T) {
	windows := &fakeWindows{windows: twoWindows("%1")}
	cfg := config.DefaultConfig()
	cfg.SkipCommands = []string{"htop"}
	c, _, changes := newTestCoordinator(t, cfg, windows)

	c.Poll(context.Background())
	if *changes != 1 {
		t.Fatalf("changes = %d, want 1", *changes)
	}
	want := []string{"code editor", "code shell", "ops logs"}
	if got := c.View().Lines; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}

	c.Poll(context.Background())
	if *changes != 1 {
		t.Errorf("unchanged poll published, changes = %d", *changes)
	}

	windows.windows = twoWindows("%2")
	c.Poll(context.Background())
	if *changes != 2 {
		t.Errorf("changes = %d, want 2", *changes)
	}
	if current, _ := c.ctrl.Focus().Current(); current != pane.TerminalID(2) {
		t.Errorf("current = %v, want terminal_2", current)
	}
}

func TestPollKeepsStarsWhenEarlierWindowCloses(t *testing.T) {
	windows := &fakeWindows{windows: []tmux.Window{
		{ID: "@1", Name: "a", Active: true, Panes: []tmux.Pane{{ID: "%1", Command: "zsh", Title: "zsh", Active: true}}},
		{ID: "@2", Name: "b", Panes: []tmux.Pane{{ID: "%2", Command: "zsh", Title: "zsh", Active: true}}},
	}}
	c, _, _ := newTestCoordinator(t, config.DefaultConfig(), windows)
	c.Poll(context.Background())

	c.Key("Down")
	c.Key("Space")
	if !c.ctrl.Starred(pane.TerminalID(2)) {
		t.Fatal("pane %2 should be starred")
	}

	// Window b moves from position 1 to 0 in the same snapshot.
	windows.windows = []tmux.Window{
		{ID: "@2", Name: "b", Active: true, Panes: []tmux.Pane{{ID: "%2", Command: "zsh", Title: "zsh", Active: true}}},
	}
	c.Poll(context.Background())

	if !c.ctrl.Starred(pane.TerminalID(2)) {
		t.Error("pane %2 still exists but lost its star")
	}
	want := []string{"b zsh *"}
	if got := c.View().Lines; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestPollErrorKeepsState(t *testing.T) {
	windows := &fakeWindows{windows: twoWindows("%1")}
	c, _, changes := newTestCoordinator(t, config.DefaultConfig(), windows)
	c.Poll(context.Background())

	windows.err = errors.New("server exited")
	c.Poll(context.Background())
	if *changes != 1 || len(c.View().Lines) != 4 {
		t.Errorf("failed poll changed state: changes=%d lines=%d", *changes, len(c.View().Lines))
	}
}

func TestStartBindsGlobalKeys(t *testing.T) {
	c, host, _ := newTestCoordinator(t, config.DefaultConfig(), &fakeWindows{})
	c.Start()
	c.Start()
	if len(host.configs) != 5 {
		t.Errorf("configs = %d, want 5", len(host.configs))
	}
}

func TestKeyAndPipe(t *testing.T) {
	windows := &fakeWindows{windows: twoWindows("%1")}
	c, host, changes := newTestCoordinator(t, config.DefaultConfig(), windows)
	c.Poll(context.Background())

	c.Key("Down")
	if c.View().Selected != 1 || *changes != 2 {
		t.Errorf("selected = %d changes = %d", c.View().Selected, *changes)
	}
	c.Key("Hyper Down")
	if *changes != 2 {
		t.Errorf("bad key published")
	}
	c.Key("Enter")
	if len(host.focused) != 1 || host.focused[0] != pane.TerminalID(2) || host.hidden != 1 {
		t.Errorf("focused = %v hidden = %d", host.focused, host.hidden)
	}

	if c.Pipe(daemon.PipePayload{Name: "list_panes", Source: "cli", Private: true}) {
		t.Error("cli pipe must be declined")
	}
	if !c.Pipe(daemon.PipePayload{Name: "list_panes", Source: "keybind", Private: true}) || host.shown != 1 {
		t.Errorf("keybind pipe not consumed, shown = %d", host.shown)
	}

	c.Pipe(daemon.PipePayload{Name: "toggle_star", Source: "keybind", Private: true})
	if got := c.View().Lines[0]; got != "code editor *" {
		t.Errorf("starred line = %q", got)
	}
}

func TestReloadAppliesSkipListAndStyle(t *testing.T) {
	windows := &fakeWindows{windows: twoWindows("%1")}
	c, _, _ := newTestCoordinator(t, config.DefaultConfig(), windows)
	c.Poll(context.Background())
	if len(c.View().Lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(c.View().Lines))
	}

	cfg := config.DefaultConfig()
	cfg.SkipCommands = []string{"nvim", "htop"}
	cfg.Style.StarMarker = " ★"
	c.Reload(cfg)
	c.Poll(context.Background())

	want := []string{"code shell", "ops logs"}
	if got := c.View().Lines; strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if c.View().Style.StarMarker != " ★" {
		t.Errorf("StarMarker = %q", c.View().Style.StarMarker)
	}
}

func TestFrame(t *testing.T) {
	windows := &fakeWindows{windows: twoWindows("%1")}
	c, _, _ := newTestCoordinator(t, config.DefaultConfig(), windows)
	c.Poll(context.Background())

	f := c.Frame(6, 3, "Ascii")
	if f.TotalLines != 4 || f.Width != 6 || f.Height != 3 {
		t.Errorf("frame = %+v", f)
	}
	for _, line := range strings.Split(f.Content, "\n") {
		if len([]rune(line)) > 6 {
			t.Errorf("line %q wider than 6 columns", line)
		}
	}
}

func TestRunLoop(t *testing.T) {
	windows := &fakeWindows{windows: twoWindows("%1")}
	c, host, _ := newTestCoordinator(t, config.DefaultConfig(), windows)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	reload := make(chan config.Config)
	done := make(chan struct{})
	go func() {
		c.Run(ctx, ticks, reload)
		close(done)
	}()

	var consumed bool
	if !c.submit(ctx, func() { consumed = c.Pipe(daemon.PipePayload{Name: "navigate_back", Source: "keybind", Private: true}) }) {
		t.Fatal("submit failed")
	}
	if !consumed {
		t.Error("pipe not consumed")
	}

	windows.windows = twoWindows("%2")
	ticks <- time.Now()
	c.submit(ctx, func() {})
	c.submit(ctx, func() { c.Pipe(daemon.PipePayload{Name: "navigate_back", Source: "keybind", Private: true}) })

	cancel()
	<-done

	if len(host.configs) != 5 {
		t.Errorf("configs = %d, want 5", len(host.configs))
	}
	if len(host.focused) != 1 || host.focused[0] != pane.TerminalID(1) {
		t.Errorf("focused = %v, want [terminal_1]", host.focused)
	}
	if c.submit(ctx, func() {}) {
		t.Error("submit after stop should fail")
	}
}
