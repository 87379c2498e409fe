package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	// Unix socket paths are length limited; keep them short.
	dir, err := os.MkdirTemp("", "pj")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s := NewServer(filepath.Join(dir, "d.sock"), filepath.Join(dir, "d.pid"))
	return s
}

func run(t *testing.T, s *Server) {
	t.Helper()
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(s.Stop)
}

func dial(t *testing.T, s *Server) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, s.SocketPath())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return c
}

func receive(t *testing.T, c *Client, want MessageType) Message {
	t.Helper()
	msg, err := c.Receive()
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if msg.Type != want {
		t.Fatalf("message type = %q, want %q", msg.Type, want)
	}
	return msg
}

func TestSubscribeRendersWithClientSize(t *testing.T) {
	s := newTestServer(t)
	s.OnRenderNeeded = func(clientID string, width, height int) *RenderPayload {
		return &RenderPayload{Content: "frame " + strconv.Itoa(width) + "x" + strconv.Itoa(height), Width: width, Height: height}
	}
	run(t, s)

	c := dial(t, s)
	if err := c.Send(MsgSubscribe, ResizePayload{Width: 40, Height: 10, ColorProfile: "TrueColor"}); err != nil {
		t.Fatal(err)
	}

	msg := receive(t, c, MsgRender)
	if msg.ClientID != c.ID {
		t.Errorf("ClientID = %q, want %q", msg.ClientID, c.ID)
	}
	var render RenderPayload
	if _, err := msg.Decode(&render); err != nil {
		t.Fatal(err)
	}
	if render.Content != "frame 40x10" || render.SequenceNum != 1 {
		t.Errorf("render = %+v", render)
	}

	if err := c.Send(MsgResize, ResizePayload{Width: 20, Height: 5}); err != nil {
		t.Fatal(err)
	}
	msg = receive(t, c, MsgRender)
	msg.Decode(&render)
	if render.Content != "frame 20x5" || render.SequenceNum != 2 {
		t.Errorf("render after resize = %+v", render)
	}

	info := s.ClientInfo(c.ID)
	if info == nil || info.ColorProfile != "TrueColor" {
		t.Errorf("ClientInfo = %+v", info)
	}
}

func TestInputReachesCallback(t *testing.T) {
	s := newTestServer(t)
	got := make(chan string, 1)
	s.OnInput = func(clientID string, input *InputPayload) { got <- input.Key }
	run(t, s)

	c := dial(t, s)
	c.Send(MsgSubscribe, nil)
	c.Send(MsgInput, InputPayload{Key: "Down"})

	select {
	case key := <-got:
		if key != "Down" {
			t.Errorf("key = %q, want Down", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("input not delivered")
	}
}

func TestPipeReply(t *testing.T) {
	s := newTestServer(t)
	var mu sync.Mutex
	var seen []PipePayload
	s.OnPipe = func(p *PipePayload) bool {
		mu.Lock()
		seen = append(seen, *p)
		mu.Unlock()
		return p.Private
	}
	run(t, s)

	tests := []struct {
		payload  PipePayload
		consumed bool
	}{
		{PipePayload{Name: "next_star", Source: "keybind", Private: true}, true},
		{PipePayload{Name: "next_star", Source: "cli"}, false},
	}
	for _, tt := range tests {
		c := dial(t, s)
		consumed, err := c.Pipe(tt.payload)
		if err != nil {
			t.Fatalf("Pipe() error: %v", err)
		}
		if consumed != tt.consumed {
			t.Errorf("Pipe(%+v) = %v, want %v", tt.payload, consumed, tt.consumed)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0].Name != "next_star" || seen[1].Source != "cli" {
		t.Errorf("seen = %+v", seen)
	}
}

func TestHideBroadcast(t *testing.T) {
	s := newTestServer(t)
	s.OnRenderNeeded = func(string, int, int) *RenderPayload { return &RenderPayload{} }
	run(t, s)

	c := dial(t, s)
	c.Send(MsgSubscribe, nil)
	receive(t, c, MsgRender)

	s.Hide()
	receive(t, c, MsgHide)
}

func TestPingPong(t *testing.T) {
	s := newTestServer(t)
	run(t, s)

	c := dial(t, s)
	c.Send(MsgPing, nil)
	receive(t, c, MsgPong)
}

func TestUnsubscribeRemovesClient(t *testing.T) {
	s := newTestServer(t)
	s.OnRenderNeeded = func(string, int, int) *RenderPayload { return &RenderPayload{} }
	run(t, s)

	c := dial(t, s)
	c.Send(MsgSubscribe, nil)
	receive(t, c, MsgRender)
	if s.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", s.ClientCount())
	}

	c.Send(MsgUnsubscribe, nil)
	if _, err := c.Receive(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Receive() after unsubscribe = %v, want ErrClosed", err)
	}
	if s.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", s.ClientCount())
	}
}

func TestSecondDaemonRefused(t *testing.T) {
	s := newTestServer(t)
	run(t, s)

	// The pidfile holds this test process's pid, which is alive.
	other := NewServer(s.socketPath+"2", s.pidPath)
	if err := other.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStalePidfileReclaimed(t *testing.T) {
	s := newTestServer(t)
	// Pid 0 is never a live daemon.
	if err := os.WriteFile(s.pidPath, []byte("0"), 0644); err != nil {
		t.Fatal(err)
	}
	run(t, s)

	data, err := os.ReadFile(s.pidPath)
	if err != nil || string(data) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pidfile = %q, %v, want our pid", data, err)
	}
}

func TestMinColorProfile(t *testing.T) {
	s := NewServer("", "")
	if got := s.MinColorProfile(); got != "ANSI256" {
		t.Errorf("MinColorProfile() with no clients = %q", got)
	}
	s.subs["a"] = &subscriber{info: ClientInfo{ColorProfile: "TrueColor"}}
	s.subs["b"] = &subscriber{info: ClientInfo{ColorProfile: "ANSI"}}
	s.subs["c"] = &subscriber{info: ClientInfo{ColorProfile: "bogus"}}
	if got := s.MinColorProfile(); got != "ANSI" {
		t.Errorf("MinColorProfile() = %q, want ANSI", got)
	}
}
