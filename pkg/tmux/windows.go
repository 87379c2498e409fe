// Package tmux adapts a tmux server to the navigator: it snapshots windows
// and panes and carries out focus, popup and key binding requests.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ansiEscapeRegex matches ANSI escape sequences
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\].*?(?:\x07|\x1b\\)`)

// stripANSI removes ANSI escape sequences from a string
func stripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Client issues tmux commands scoped to one session.
type Client struct {
	runner  Runner
	session string
}

// NewClient returns a client for session. An empty session targets the
// session of the calling client.
func NewClient(session string) *Client {
	return NewClientWithRunner(session, OSRunner{})
}

func NewClientWithRunner(session string, runner Runner) *Client {
	return &Client{runner: runner, session: session}
}

// Session returns the session the client is scoped to.
func (c *Client) Session() string { return c.session }

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	out, err := c.runner.Run(ctx, "tmux", args...)
	if err != nil {
		return nil, fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return out, nil
}

func (c *Client) withTarget(args ...string) []string {
	if c.session == "" {
		return args
	}
	return append(args, "-t", c.session)
}

// CurrentSession asks tmux for the id of the session this process runs in.
func CurrentSession(ctx context.Context, runner Runner) (string, error) {
	out, err := runner.Run(ctx, "tmux", "display-message", "-p", "#{session_id}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message: %w", err)
	}
	session := strings.TrimSpace(string(out))
	if session == "" {
		return "", fmt.Errorf("tmux display-message: empty session id")
	}
	return session, nil
}

type Pane struct {
	ID       string // tmux pane id, e.g. "%3"
	WindowID string
	Index    int
	Active   bool
	Command  string // Current command running in pane
	Title    string // Pane title if set
}

type Window struct {
	ID     string
	Index  int
	Name   string
	Active bool
	Panes  []Pane
}

const (
	windowFormat = "#{window_id}\x1f#{window_index}\x1f#{window_name}\x1f#{window_active}"
	paneFormat   = "#{window_id}\x1f#{pane_id}\x1f#{pane_index}\x1f#{pane_active}\x1f#{pane_current_command}\x1f#{pane_title}"
)

// ParseWindows parses list-windows output produced with windowFormat.
// Malformed lines are skipped.
func ParseWindows(out string) []Window {
	var windows []Window
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 4 {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			ID:     parts[0],
			Index:  index,
			Name:   stripANSI(parts[2]),
			Active: parts[3] == "1",
		})
	}
	return windows
}

// ParsePanes parses list-panes output produced with paneFormat.
// Malformed lines are skipped.
func ParsePanes(out string) []Pane {
	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 6 {
			continue
		}
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		panes = append(panes, Pane{
			WindowID: parts[0],
			ID:       parts[1],
			Index:    index,
			Active:   parts[3] == "1",
			Command:  stripANSI(parts[4]),
			// Titles may contain the separator; keep the remainder intact.
			Title: stripANSI(strings.Join(parts[5:], "\x1f")),
		})
	}
	return panes
}

// ListWindows returns the session's windows in index order with their panes
// attached.
func (c *Client) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := c.run(ctx, c.withTarget("list-windows", "-F", windowFormat)...)
	if err != nil {
		return nil, err
	}
	windows := ParseWindows(string(out))

	out, err = c.run(ctx, c.withTarget("list-panes", "-s", "-F", paneFormat)...)
	if err != nil {
		return nil, err
	}
	byWindow := make(map[string]int, len(windows))
	for i, w := range windows {
		byWindow[w.ID] = i
	}
	for _, p := range ParsePanes(string(out)) {
		if i, ok := byWindow[p.WindowID]; ok {
			windows[i].Panes = append(windows[i].Panes, p)
		}
	}
	return windows, nil
}

// FirstClient returns the name of a client attached to the session.
func (c *Client) FirstClient(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.withTarget("list-clients", "-F", "#{client_name}")...)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("no client attached to session %q", c.session)
}
