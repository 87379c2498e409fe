// Package daemon carries navigator traffic between the long-running daemon
// and short-lived clients (the popup list and keybinding pipes) as JSON
// lines over a unix socket.
package daemon

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the type of message
type MessageType string

const (
	MsgSubscribe   MessageType = "subscribe"   // List -> Daemon: start receiving renders
	MsgUnsubscribe MessageType = "unsubscribe" // List -> Daemon: stop receiving renders
	MsgRender      MessageType = "render"      // Daemon -> List: new frame
	MsgInput       MessageType = "input"       // List -> Daemon: key press
	MsgResize      MessageType = "resize"      // List -> Daemon: terminal size changed
	MsgPipe        MessageType = "pipe"        // Pipe -> Daemon: named action; Daemon -> Pipe: result
	MsgHide        MessageType = "hide"        // Daemon -> List: close the popup
	MsgPing        MessageType = "ping"
	MsgPong        MessageType = "pong"
)

// Message is the base message structure for daemon<->client communication
type Message struct {
	Type     MessageType     `json:"type"`
	ClientID string          `json:"client_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a message with payload encoded. A nil payload is omitted.
func NewMessage(t MessageType, clientID string, payload any) (Message, error) {
	msg := Message{Type: t, ClientID: clientID}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	msg.Payload = data
	return msg, nil
}

// Decode unmarshals the payload into v. It reports false when the message
// carries no payload.
func (m Message) Decode(v any) (bool, error) {
	if len(m.Payload) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return false, fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return true, nil
}

// RenderPayload contains a pre-rendered frame for a list client
type RenderPayload struct {
	SequenceNum uint64 `json:"seq"`      // Monotonic sequence for race detection
	Content     string `json:"content"`  // Pre-rendered lines
	Width       int    `json:"width"`    // Rendered for this width
	Height      int    `json:"height"`   // Rendered for this height
	Selected    int    `json:"selected"` // Selected row, for scrolling
	TotalLines  int    `json:"total_lines"`
}

// InputPayload carries a key press from a list client
type InputPayload struct {
	SequenceNum uint64 `json:"seq"` // Render frame this input references
	Key         string `json:"key"` // Key descriptor, e.g. "Down" or "Alt y"
}

// ResizePayload contains terminal dimensions and capabilities
type ResizePayload struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ColorProfile string `json:"color_profile,omitempty"` // "Ascii", "ANSI", "ANSI256", "TrueColor"
}

// PipePayload is a named action sent by a key binding or the command line
type PipePayload struct {
	Name    string `json:"name"`
	Source  string `json:"source"`  // "keybind", "cli" or "plugin"
	Private bool   `json:"private"` // Addressed to this navigator only
}

// PipeResultPayload answers a PipePayload
type PipeResultPayload struct {
	Consumed bool `json:"consumed"`
}
