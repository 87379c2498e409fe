package tmux

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type runnerCall struct {
	name string
	args []string
}

type fakeRunner struct {
	calls   []runnerCall
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, runnerCall{name: name, args: append([]string(nil), args...)})
	if err := f.errs[args[0]]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[args[0]]), nil
}

func (f *fakeRunner) commands() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, strings.Join(c.args, " "))
	}
	return out
}

func row(fields ...string) string { return strings.Join(fields, "\x1f") }

func TestParseWindows(t *testing.T) {
	out := strings.Join([]string{
		row("@1", "0", "editor", "1"),
		row("@2", "2", "\x1b[31mlogs\x1b[0m", "0"),
		row("@3", "x", "bad index", "0"),
		"too\x1ffew",
		"",
	}, "\n")

	want := []Window{
		{ID: "@1", Index: 0, Name: "editor", Active: true},
		{ID: "@2", Index: 2, Name: "logs"},
	}
	if got := ParseWindows(out); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseWindows() = %+v, want %+v", got, want)
	}
}

func TestParsePanes(t *testing.T) {
	out := strings.Join([]string{
		row("@1", "%0", "0", "1", "nvim", "main.go"),
		row("@1", "%4", "1", "0", "zsh", "a\x1fb"),
		row("@2", "%7", "z", "0", "zsh", ""),
	}, "\n")

	want := []Pane{
		{WindowID: "@1", ID: "%0", Index: 0, Active: true, Command: "nvim", Title: "main.go"},
		{WindowID: "@1", ID: "%4", Index: 1, Command: "zsh", Title: "a\x1fb"},
	}
	if got := ParsePanes(out); !reflect.DeepEqual(got, want) {
		t.Errorf("ParsePanes() = %+v, want %+v", got, want)
	}
}

func TestListWindowsAttachesPanes(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"list-windows": row("@1", "0", "one", "1") + "\n" + row("@5", "3", "two", "0") + "\n",
		"list-panes": strings.Join([]string{
			row("@5", "%9", "0", "1", "htop", "htop"),
			row("@1", "%1", "0", "0", "zsh", "shell"),
			row("@1", "%2", "1", "1", "nvim", "edit"),
			row("@8", "%3", "0", "1", "zsh", "orphan"),
		}, "\n"),
	}}
	c := NewClientWithRunner("$1", r)

	windows, err := c.ListWindows(context.Background())
	if err != nil {
		t.Fatalf("ListWindows() error: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if got := []string{windows[0].Panes[0].ID, windows[0].Panes[1].ID}; !reflect.DeepEqual(got, []string{"%1", "%2"}) {
		t.Errorf("window one panes = %v", got)
	}
	if len(windows[1].Panes) != 1 || windows[1].Panes[0].ID != "%9" {
		t.Errorf("window two panes = %+v", windows[1].Panes)
	}

	want := []string{
		"list-windows -F " + windowFormat + " -t $1",
		"list-panes -s -F " + paneFormat + " -t $1",
	}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if r.calls[0].name != "tmux" {
		t.Errorf("binary = %q, want tmux", r.calls[0].name)
	}
}

func TestListWindowsError(t *testing.T) {
	boom := errors.New("no server running")
	r := &fakeRunner{errs: map[string]error{"list-panes": boom}}
	_, err := NewClientWithRunner("", r).ListWindows(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("ListWindows() error = %v, want wrapped %v", err, boom)
	}
	if !strings.Contains(err.Error(), "tmux list-panes") {
		t.Errorf("error %q should name the command", err)
	}
}

func TestFirstClient(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"list-clients": "\n/dev/pts/3\n/dev/pts/4\n"}}
	name, err := NewClientWithRunner("$0", r).FirstClient(context.Background())
	if err != nil || name != "/dev/pts/3" {
		t.Errorf("FirstClient() = %q, %v, want /dev/pts/3", name, err)
	}

	r = &fakeRunner{outputs: map[string]string{"list-clients": ""}}
	if _, err := NewClientWithRunner("$0", r).FirstClient(context.Background()); err == nil {
		t.Error("FirstClient() should fail with no clients")
	}
}

func TestCurrentSession(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"display-message": "$4\n"}}
	session, err := CurrentSession(context.Background(), r)
	if err != nil || session != "$4" {
		t.Errorf("CurrentSession() = %q, %v, want $4", session, err)
	}

	r = &fakeRunner{outputs: map[string]string{"display-message": "\n"}}
	if _, err := CurrentSession(context.Background(), r); err == nil {
		t.Error("CurrentSession() should fail on empty output")
	}
}
