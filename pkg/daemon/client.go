package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
)

var ErrClosed = errors.New("connection closed")

// Client is one connection to the daemon.
type Client struct {
	ID string

	conn    net.Conn
	scanner *bufio.Scanner
	writeMu sync.Mutex
}

// Dial connects to the daemon socket with a fresh client id.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w", socketPath, err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Client{ID: uuid.NewString(), conn: conn, scanner: scanner}, nil
}

// Send writes a message carrying payload, which may be nil.
func (c *Client) Send(t MessageType, payload any) error {
	msg, err := NewMessage(t, c.ID, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	return nil
}

// Receive blocks for the next message. It returns ErrClosed once the daemon
// hangs up.
func (c *Client) Receive() (Message, error) {
	for c.scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(c.scanner.Bytes(), &msg); err != nil {
			continue
		}
		return msg, nil
	}
	if err := c.scanner.Err(); err != nil {
		return Message{}, fmt.Errorf("receive: %w", err)
	}
	return Message{}, ErrClosed
}

// Pipe sends a named action and waits for the daemon's answer.
func (c *Client) Pipe(p PipePayload) (bool, error) {
	if err := c.Send(MsgPipe, p); err != nil {
		return false, err
	}
	for {
		msg, err := c.Receive()
		if err != nil {
			return false, err
		}
		if msg.Type != MsgPipe {
			continue
		}
		var result PipeResultPayload
		if _, err := msg.Decode(&result); err != nil {
			return false, err
		}
		return result.Consumed, nil
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
