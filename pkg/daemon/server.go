package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyRunning = errors.New("daemon already running")

const (
	defaultWidth        = 80
	defaultHeight       = 24
	defaultColorProfile = "ANSI256"
	writeTimeout        = time.Second
	maxLineSize         = 1024 * 1024
)

// ClientInfo is a snapshot of a subscribed list client.
type ClientInfo struct {
	Width        int
	Height       int
	ColorProfile string // "Ascii", "ANSI", "ANSI256", "TrueColor"
}

type subscriber struct {
	conn net.Conn
	info ClientInfo
}

// Server is the daemon end of the socket.
type Server struct {
	socketPath string
	pidPath    string
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup

	mu   sync.RWMutex
	subs map[string]*subscriber

	seqMu sync.Mutex
	seq   uint64

	writeMu sync.Mutex

	// OnRenderNeeded returns the frame for a client of the given size. It is
	// called from connection goroutines and from BroadcastRender.
	OnRenderNeeded func(clientID string, width, height int) *RenderPayload

	// OnInput receives key presses from list clients.
	OnInput func(clientID string, input *InputPayload)

	// OnResize is called after a client's size changed.
	OnResize func(clientID string, width, height int)

	// OnPipe handles a named action and reports whether it was consumed.
	OnPipe func(pipe *PipePayload) bool
}

// NewServer creates a server listening on socketPath and owning pidPath.
func NewServer(socketPath, pidPath string) *Server {
	return &Server{
		socketPath: socketPath,
		pidPath:    pidPath,
		subs:       make(map[string]*subscriber),
		done:       make(chan struct{}),
		seq:        1,
	}
}

// Start claims the pidfile and accepts connections in the background. It
// fails with ErrAlreadyRunning when a live daemon owns the pidfile.
func (s *Server) Start() error {
	if err := claimPidfile(s.pidPath); err != nil {
		return err
	}

	// The socket left behind by a dead daemon is ours now.
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		os.Remove(s.pidPath)
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.serve()
	return nil
}

// claimPidfile writes our pid to path unless the pid already recorded there
// belongs to a running process.
func claimPidfile(path string) error {
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid > 0 && alive(pid) {
			return fmt.Errorf("%w with pid %d", ErrAlreadyRunning, pid)
		}
		os.Remove(path)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write pidfile: %w", err)
	}
	return nil
}

// alive signals pid with 0; FindProcess alone always succeeds on unix.
func alive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}

// Stop closes the listener and every connection, then removes the socket
// and pidfile.
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for id, sub := range s.subs {
		sub.conn.Close()
		delete(s.subs, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
	os.Remove(s.socketPath)
	os.Remove(s.pidPath)
}

// ClientCount returns the number of subscribed clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// SocketPath returns the socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		go s.handleConn(conn)
	}
}

// handleConn reads one JSON message per line until the peer hangs up or
// unsubscribes. Pipe clients never subscribe, so id stays empty for them.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var id string
	defer func() { s.removeClient(id) }()

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MsgSubscribe:
			id = s.subscribe(conn, msg)
		case MsgUnsubscribe:
			return
		case MsgResize:
			s.resize(id, msg)
		case MsgInput:
			var input InputPayload
			if ok, _ := msg.Decode(&input); ok && s.OnInput != nil {
				s.OnInput(id, &input)
			}
		case MsgPipe:
			s.pipe(conn, msg)
		case MsgPing:
			s.sendMessage(conn, Message{Type: MsgPong})
		}
	}
}

func (s *Server) subscribe(conn net.Conn, msg Message) string {
	id := msg.ClientID
	if id == "" {
		id = uuid.NewString()
	}
	info := ClientInfo{Width: defaultWidth, Height: defaultHeight, ColorProfile: defaultColorProfile}
	var size ResizePayload
	if ok, _ := msg.Decode(&size); ok {
		if size.Width > 0 {
			info.Width = size.Width
		}
		if size.Height > 0 {
			info.Height = size.Height
		}
		if size.ColorProfile != "" {
			info.ColorProfile = size.ColorProfile
		}
	}

	s.mu.Lock()
	s.subs[id] = &subscriber{conn: conn, info: info}
	s.mu.Unlock()

	s.sendRender(id)
	return id
}

func (s *Server) resize(id string, msg Message) {
	var size ResizePayload
	if ok, _ := msg.Decode(&size); !ok {
		return
	}
	s.mu.Lock()
	if sub, ok := s.subs[id]; ok {
		sub.info.Width = size.Width
		sub.info.Height = size.Height
		if size.ColorProfile != "" {
			sub.info.ColorProfile = size.ColorProfile
		}
	}
	s.mu.Unlock()

	if s.OnResize != nil {
		s.OnResize(id, size.Width, size.Height)
	}
	s.sendRender(id)
}

// pipe always answers, declining when the payload is missing or nobody
// handles pipes.
func (s *Server) pipe(conn net.Conn, msg Message) {
	var p PipePayload
	consumed := false
	if ok, _ := msg.Decode(&p); ok && s.OnPipe != nil {
		consumed = s.OnPipe(&p)
	}
	reply, err := NewMessage(MsgPipe, msg.ClientID, PipeResultPayload{Consumed: consumed})
	if err != nil {
		return
	}
	s.sendMessage(conn, reply)
}

func (s *Server) removeClient(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// BroadcastRender sends a fresh frame to every subscribed client.
func (s *Server) BroadcastRender() {
	for _, id := range s.ClientIDs() {
		s.sendRender(id)
	}
}

// Hide tells every subscribed client to close.
func (s *Server) Hide() {
	for _, conn := range s.conns() {
		s.sendMessage(conn, Message{Type: MsgHide})
	}
}

func (s *Server) conns() []net.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]net.Conn, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.conn)
	}
	return out
}

func (s *Server) nextSeq() uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	n := s.seq
	s.seq++
	return n
}

// sendRender asks OnRenderNeeded for a frame sized for id and sends it.
func (s *Server) sendRender(id string) {
	s.mu.RLock()
	sub, ok := s.subs[id]
	var (
		conn net.Conn
		info ClientInfo
	)
	if ok {
		conn, info = sub.conn, sub.info
	}
	s.mu.RUnlock()

	if !ok || s.OnRenderNeeded == nil {
		return
	}
	frame := s.OnRenderNeeded(id, info.Width, info.Height)
	if frame == nil {
		return
	}
	frame.SequenceNum = s.nextSeq()

	msg, err := NewMessage(MsgRender, id, frame)
	if err != nil {
		return
	}
	s.sendMessage(conn, msg)
}

// ClientInfo returns a copy of a client's state, or nil.
func (s *Server) ClientInfo(id string) *ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil
	}
	info := sub.info
	return &info
}

// ClientIDs returns all subscribed client IDs.
func (s *Server) ClientIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	return ids
}

// profileRank orders color profiles from least to most capable.
var profileRank = map[string]int{
	"Ascii":     0,
	"ANSI":      1,
	"ANSI256":   2,
	"TrueColor": 3,
}

// MinColorProfile returns the least capable color profile among subscribed
// clients. Unknown names count as ANSI256.
func (s *Server) MinColorProfile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.subs) == 0 {
		return defaultColorProfile
	}
	best, bestRank := "TrueColor", profileRank["TrueColor"]
	for _, sub := range s.subs {
		name := sub.info.ColorProfile
		rank, ok := profileRank[name]
		if !ok {
			name, rank = defaultColorProfile, profileRank[defaultColorProfile]
		}
		if rank < bestRank {
			best, bestRank = name, rank
		}
	}
	return best
}

// sendMessage writes one JSON line. Writes are serialized so frames from
// different goroutines never interleave.
func (s *Server) sendMessage(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err = conn.Write(append(data, '\n'))
	return err
}
